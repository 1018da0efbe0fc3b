package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/meliofog/iam-stock/internal/dto"
	"github.com/meliofog/iam-stock/internal/repository"
)

// DashboardService 首页统计
type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	records, err := s.repo.Record.Count(ctx)
	if err != nil {
		s.logger.Error("统计档案数量失败", zap.Error(err))
		return nil, err
	}
	equipments, err := s.repo.Equipment.Count(ctx)
	if err != nil {
		s.logger.Error("统计设备数量失败", zap.Error(err))
		return nil, err
	}
	return &dto.DashboardResponse{
		TotalRecords:    records,
		TotalEquipments: equipments,
	}, nil
}
