package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meliofog/iam-stock/internal/dto"
	"github.com/meliofog/iam-stock/internal/model"
	"github.com/meliofog/iam-stock/internal/repository"
	pkgerrors "github.com/meliofog/iam-stock/pkg/errors"
)

// ── 档案模块业务错误 ──

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrRecordNameTaken    = errors.New("record name already exists")
	ErrRecordNameRequired = errors.New("record name is required")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
)

const recordPageSize = 20

// RecordService 档案业务接口
type RecordService interface {
	Create(ctx context.Context, req *dto.RecordRequest) (*dto.RecordResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RecordResponse, error)
	List(ctx context.Context, req *dto.RecordListRequest) ([]dto.RecordResponse, int64, error)
	// Update 整表单更新；接收日期变化时在同一事务中级联到全部设备
	Update(ctx context.Context, id string, req *dto.RecordRequest) (*dto.RecordResponse, error)
	// Delete 删除档案及其全部设备
	Delete(ctx context.Context, id string) error
}

type recordService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewRecordService 创建 RecordService 实例
func NewRecordService(repo *repository.Repository, now func() time.Time, logger *zap.Logger) RecordService {
	if now == nil {
		now = time.Now
	}
	return &recordService{repo: repo, now: now, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *recordService) Create(ctx context.Context, req *dto.RecordRequest) (*dto.RecordResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrRecordNameRequired
	}
	receptionDate, err := parseRequestDate(req.ReceptionDate)
	if err != nil {
		return nil, err
	}

	rec := &model.Record{
		Name:          name,
		ReceptionDate: receptionDate,
	}
	applyRecordDerivations(rec)

	if err := s.repo.Record.Create(ctx, rec); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrRecordNameTaken
		}
		s.logger.Error("创建档案失败", zap.String("name", rec.Name), zap.Error(err))
		return nil, err
	}

	return s.toRecordResponse(rec, 0, 0), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *recordService) GetByID(ctx context.Context, id string) (*dto.RecordResponse, error) {
	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.Equipment.ListByRecord(ctx, id)
	if err != nil {
		s.logger.Error("查询档案设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := s.toRecordResponse(rec, int64(len(items)), 0)
	resp.Status = RecordStatus(items)
	return resp, nil
}

// ────────────────────── List ──────────────────────

func (s *recordService) List(ctx context.Context, req *dto.RecordListRequest) ([]dto.RecordResponse, int64, error) {
	stats, total, err := s.repo.Record.List(ctx,
		strings.TrimSpace(req.Name),
		req.GetOffset(recordPageSize),
		req.GetPageSize(recordPageSize),
	)
	if err != nil {
		s.logger.Error("列出档案失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.RecordResponse, 0, len(stats))
	for i := range stats {
		result = append(result, *s.toRecordResponse(&stats[i].Record, stats[i].ItemsCount, stats[i].InProgressCount))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *recordService) Update(ctx context.Context, id string, req *dto.RecordRequest) (*dto.RecordResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrRecordNameRequired
	}
	receptionDate, err := parseRequestDate(req.ReceptionDate)
	if err != nil {
		return nil, err
	}

	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	dateChanged := !sameDate(rec.ReceptionDate, receptionDate)
	rec.Name = name
	rec.ReceptionDate = receptionDate
	applyRecordDerivations(rec)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Record.Update(ctx, rec); err != nil {
			return err
		}
		if !dateChanged {
			return nil
		}
		year, quarter := DeriveYearQuarter(receptionDate)
		n, err := tx.Equipment.UpdateReceptionDateByRecord(ctx, id, receptionDate, year, quarter)
		if err != nil {
			return err
		}
		s.logger.Info("档案接收日期已级联到设备", zap.String("id", id), zap.Int64("equipment", n))
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrRecordNameTaken
		}
		s.logger.Error("更新档案失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *recordService) Delete(ctx context.Context, id string) error {
	if !isValidID(id) {
		return ErrRecordNotFound
	}
	if err := s.repo.Record.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		s.logger.Error("删除档案失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *recordService) getRecord(ctx context.Context, id string) (*model.Record, error) {
	if !isValidID(id) {
		return nil, ErrRecordNotFound
	}
	rec, err := s.repo.Record.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("查询档案失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return rec, nil
}

func (s *recordService) toRecordResponse(rec *model.Record, itemsCount, pending int64) *dto.RecordResponse {
	duration := RepairDuration(rec.ReceptionDate, s.now())
	return &dto.RecordResponse{
		ID:             rec.RecordID,
		Name:           rec.Name,
		ReceptionDate:  formatDate(rec.ReceptionDate),
		Quarter:        rec.Quarter,
		ItemsCount:     itemsCount,
		Status:         statusFromPending(pending),
		RepairDuration: duration,
		Message:        PenaltyMessage(duration),
		CreatedAt:      rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      rec.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// parseRequestDate 解析请求中的 YYYY-MM-DD，空字符串表示无日期
func parseRequestDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
