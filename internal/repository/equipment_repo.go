package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/meliofog/iam-stock/internal/model"
)

// EquipmentFilter 设备列表过滤条件
type EquipmentFilter struct {
	RecordID string // 精确匹配
	SN       string // 不区分大小写的子串匹配
}

// EquipmentRepository 设备数据访问接口
type EquipmentRepository interface {
	Create(ctx context.Context, eq *model.Equipment) error
	GetByID(ctx context.Context, id string) (*model.Equipment, error)
	// GetBySN 全库按序列号查找（序列号全局唯一）
	GetBySN(ctx context.Context, sn string) (*model.Equipment, error)
	List(ctx context.Context, filter EquipmentFilter, offset, limit int) ([]model.Equipment, int64, error)
	// ListByRecord 按 order_index 升序返回档案下全部设备
	ListByRecord(ctx context.Context, recordID string) ([]model.Equipment, error)
	Update(ctx context.Context, eq *model.Equipment) error
	// UpdateReceptionDateByRecord 批量级联档案接收日期及其派生字段
	UpdateReceptionDateByRecord(ctx context.Context, recordID string, date *time.Time, year *int, quarter *string) (int64, error)
	Delete(ctx context.Context, id string) error
	MaxOrderIndex(ctx context.Context, recordID string) (int, error)
	Count(ctx context.Context) (int64, error)
}

type equipmentRepo struct {
	db *gorm.DB
}

// NewEquipmentRepo 创建 EquipmentRepository 实例
func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Create(ctx context.Context, eq *model.Equipment) error {
	return translateError(r.db.WithContext(ctx).Omit("Record").Create(eq).Error)
}

func (r *equipmentRepo) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	var eq model.Equipment
	err := r.db.WithContext(ctx).
		Preload("Record").
		Where("equipment_id = ?", id).
		First(&eq).Error
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *equipmentRepo) GetBySN(ctx context.Context, sn string) (*model.Equipment, error) {
	var eq model.Equipment
	err := r.db.WithContext(ctx).
		Where("sn = ?", sn).
		First(&eq).Error
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *equipmentRepo) List(ctx context.Context, filter EquipmentFilter, offset, limit int) ([]model.Equipment, int64, error) {
	var items []model.Equipment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Equipment{})
	if filter.RecordID != "" {
		db = db.Where("record_id = ?", filter.RecordID)
	}
	if filter.SN != "" {
		db = db.Where("sn ILIKE ?", likePattern(filter.SN))
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("Record").Order("record_id ASC, order_index ASC, created_at ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *equipmentRepo) ListByRecord(ctx context.Context, recordID string) ([]model.Equipment, error) {
	var items []model.Equipment
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("order_index ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *equipmentRepo) Update(ctx context.Context, eq *model.Equipment) error {
	return translateError(r.db.WithContext(ctx).Omit("Record").Save(eq).Error)
}

func (r *equipmentRepo) UpdateReceptionDateByRecord(ctx context.Context, recordID string, date *time.Time, year *int, quarter *string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Equipment{}).
		Where("record_id = ?", recordID).
		Updates(map[string]interface{}{
			"reception_date": date,
			"year":           year,
			"quarter":        quarter,
			"updated_at":     gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}

func (r *equipmentRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("equipment_id = ?", id).
		Delete(&model.Equipment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *equipmentRepo) MaxOrderIndex(ctx context.Context, recordID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&model.Equipment{}).
		Where("record_id = ?", recordID).
		Select("COALESCE(MAX(order_index), 0)").
		Scan(&max).Error
	return max, err
}

func (r *equipmentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Equipment{}).Count(&n).Error
	return n, err
}
