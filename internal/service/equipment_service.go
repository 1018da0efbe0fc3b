package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meliofog/iam-stock/internal/dto"
	"github.com/meliofog/iam-stock/internal/model"
	"github.com/meliofog/iam-stock/internal/repository"
	pkgerrors "github.com/meliofog/iam-stock/pkg/errors"
)

// ── 设备模块业务错误 ──

var (
	ErrEquipmentNotFound     = errors.New("equipment not found")
	ErrSerialTaken           = errors.New("serial number already used by another equipment")
	ErrEquipmentNameRequired = errors.New("equipment name is required")
	ErrInvalidRecordFilter   = errors.New("record_id filter is not a valid id")

	ErrInvalidDeliveryStatus = errors.New("delivery status must be Delivered or InProgress")
	ErrInvalidBL             = errors.New("bl must be yes or no")
)

const equipmentPageSize = 10

// EquipmentService 设备业务接口
type EquipmentService interface {
	Create(ctx context.Context, req *dto.EquipmentRequest) (*dto.EquipmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EquipmentResponse, error)
	List(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentResponse, int64, error)
	// Update 整表单替换可编辑字段，Year / Quarter 始终由接收日期重算
	Update(ctx context.Context, id string, req *dto.EquipmentRequest) (*dto.EquipmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type equipmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEquipmentService 创建 EquipmentService 实例
func NewEquipmentService(repo *repository.Repository, logger *zap.Logger) EquipmentService {
	return &equipmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *equipmentService) Create(ctx context.Context, req *dto.EquipmentRequest) (*dto.EquipmentResponse, error) {
	rec, err := s.getRecord(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}

	eq := &model.Equipment{RecordID: rec.RecordID}
	if err := applyEquipmentRequest(eq, req); err != nil {
		return nil, err
	}
	if err := s.ensureSerialFree(ctx, eq.SN, ""); err != nil {
		return nil, err
	}

	maxIdx, err := s.repo.Equipment.MaxOrderIndex(ctx, rec.RecordID)
	if err != nil {
		s.logger.Error("查询设备序号失败", zap.String("record_id", rec.RecordID), zap.Error(err))
		return nil, err
	}
	eq.OrderIndex = maxIdx + 1

	if err := s.repo.Equipment.Create(ctx, eq); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrSerialTaken
		}
		s.logger.Error("创建设备失败", zap.Error(err))
		return nil, err
	}

	eq.Record = rec
	return toEquipmentResponse(eq), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *equipmentService) GetByID(ctx context.Context, id string) (*dto.EquipmentResponse, error) {
	eq, err := s.getEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEquipmentResponse(eq), nil
}

// ────────────────────── List ──────────────────────

func (s *equipmentService) List(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentResponse, int64, error) {
	filter := repository.EquipmentFilter{
		RecordID: strings.TrimSpace(req.RecordID),
		SN:       strings.TrimSpace(req.SN),
	}
	if filter.RecordID != "" && !isValidID(filter.RecordID) {
		return nil, 0, ErrInvalidRecordFilter
	}
	items, total, err := s.repo.Equipment.List(ctx, filter,
		req.GetOffset(equipmentPageSize),
		req.GetPageSize(equipmentPageSize),
	)
	if err != nil {
		s.logger.Error("列出设备失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.EquipmentResponse, 0, len(items))
	for i := range items {
		result = append(result, *toEquipmentResponse(&items[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *equipmentService) Update(ctx context.Context, id string, req *dto.EquipmentRequest) (*dto.EquipmentResponse, error) {
	eq, err := s.getEquipment(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RecordID != eq.RecordID {
		rec, err := s.getRecord(ctx, req.RecordID)
		if err != nil {
			return nil, err
		}
		eq.RecordID = rec.RecordID
		eq.Record = rec
	}

	if err := applyEquipmentRequest(eq, req); err != nil {
		return nil, err
	}
	if err := s.ensureSerialFree(ctx, eq.SN, eq.EquipmentID); err != nil {
		return nil, err
	}

	if err := s.repo.Equipment.Update(ctx, eq); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrSerialTaken
		}
		s.logger.Error("更新设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toEquipmentResponse(eq), nil
}

// ────────────────────── Delete ──────────────────────

func (s *equipmentService) Delete(ctx context.Context, id string) error {
	if !isValidID(id) {
		return ErrEquipmentNotFound
	}
	if err := s.repo.Equipment.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEquipmentNotFound
		}
		s.logger.Error("删除设备失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *equipmentService) getEquipment(ctx context.Context, id string) (*model.Equipment, error) {
	if !isValidID(id) {
		return nil, ErrEquipmentNotFound
	}
	eq, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("查询设备失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return eq, nil
}

func (s *equipmentService) getRecord(ctx context.Context, id string) (*model.Record, error) {
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

// ensureSerialFree 序列号已被其他设备占用时返回 ErrSerialTaken
func (s *equipmentService) ensureSerialFree(ctx context.Context, sn *string, selfID string) error {
	if sn == nil {
		return nil
	}
	other, err := s.repo.Equipment.GetBySN(ctx, *sn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("按序列号查询设备失败", zap.String("sn", *sn), zap.Error(err))
		return err
	}
	if other.EquipmentID != selfID {
		return ErrSerialTaken
	}
	return nil
}

// applyEquipmentRequest 将表单写入设备并重算派生字段
func applyEquipmentRequest(eq *model.Equipment, req *dto.EquipmentRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ErrEquipmentNameRequired
	}
	receptionDate, err := parseRequestDate(req.ReceptionDate)
	if err != nil {
		return err
	}
	deliveryDate, err := parseRequestDate(req.DeliveryDate)
	if err != nil {
		return err
	}

	status := model.DeliveryStatus(req.DeliveryStatus)
	if status == "" {
		status = model.DeliveryStatusInProgress
	}
	if !status.Valid() {
		return ErrInvalidDeliveryStatus
	}
	bl := model.BL(req.BL)
	if bl == "" {
		bl = model.BLNo
	}
	if !bl.Valid() {
		return ErrInvalidBL
	}

	eq.Name = name
	eq.Ref = optionalString(strings.TrimSpace(req.Ref))
	eq.SN = optionalString(strings.TrimSpace(req.SN))
	eq.SNRempl = optionalString(strings.TrimSpace(req.SNRempl))
	eq.ReceptionDate = receptionDate
	eq.DeliveryStatus = status
	eq.DeliveryDate = deliveryDate
	eq.BL = bl
	applyEquipmentDerivations(eq)
	return nil
}

func toEquipmentResponse(eq *model.Equipment) *dto.EquipmentResponse {
	resp := &dto.EquipmentResponse{
		ID:             eq.EquipmentID,
		RecordID:       eq.RecordID,
		Name:           eq.Name,
		Ref:            deref(eq.Ref),
		SN:             deref(eq.SN),
		SNRempl:        deref(eq.SNRempl),
		ReceptionDate:  formatDate(eq.ReceptionDate),
		DeliveryStatus: string(eq.DeliveryStatus),
		DeliveryDate:   formatDate(eq.DeliveryDate),
		BL:             string(eq.BL),
		Year:           eq.Year,
		Quarter:        deref(eq.Quarter),
		OrderIndex:     eq.OrderIndex,
	}
	if eq.Record != nil {
		resp.RecordName = eq.Record.Name
	}
	return resp
}
