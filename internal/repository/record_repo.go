package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meliofog/iam-stock/internal/model"
)

// RecordRepository 档案数据访问接口
type RecordRepository interface {
	Create(ctx context.Context, rec *model.Record) error
	GetByID(ctx context.Context, id string) (*model.Record, error)
	GetByName(ctx context.Context, name string) (*model.Record, error)
	// GetOrCreate 按名称精确匹配获取档案，不存在则创建；created 表示本次是否新建
	GetOrCreate(ctx context.Context, name string) (rec *model.Record, created bool, err error)
	// List 档案列表（含设备数量统计），limit <= 0 表示不分页
	List(ctx context.Context, name string, offset, limit int) ([]model.RecordStats, int64, error)
	Update(ctx context.Context, rec *model.Record) error
	// Delete 删除档案并级联删除其全部设备
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type recordRepo struct {
	db *gorm.DB
}

// NewRecordRepo 创建 RecordRepository 实例
func NewRecordRepo(db *gorm.DB) RecordRepository {
	return &recordRepo{db: db}
}

func (r *recordRepo) Create(ctx context.Context, rec *model.Record) error {
	return translateError(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *recordRepo) GetByID(ctx context.Context, id string) (*model.Record, error) {
	var rec model.Record
	err := r.db.WithContext(ctx).
		Where("record_id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepo) GetByName(ctx context.Context, name string) (*model.Record, error) {
	var rec model.Record
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetOrCreate 依赖 uq_records_name 唯一索引：并发插入时 ON CONFLICT DO NOTHING 后回读
func (r *recordRepo) GetOrCreate(ctx context.Context, name string) (*model.Record, bool, error) {
	rec := &model.Record{Name: name}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return nil, false, translateError(res.Error)
	}
	if res.RowsAffected == 1 {
		return rec, true, nil
	}

	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *recordRepo) List(ctx context.Context, name string, offset, limit int) ([]model.RecordStats, int64, error) {
	var stats []model.RecordStats
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Record{})
	if name != "" {
		db = db.Where("records.name ILIKE ?", likePattern(name))
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Select(
		"records.*, COUNT(e.equipment_id) AS items_count, "+
			"COUNT(e.equipment_id) FILTER (WHERE e.delivery_status = ?) AS in_progress_count",
		model.DeliveryStatusInProgress,
	).
		Joins("LEFT JOIN equipment e ON e.record_id = records.record_id").
		Group("records.record_id").
		Order("records.name ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}

	if err := q.Scan(&stats).Error; err != nil {
		return nil, 0, err
	}
	return stats, total, nil
}

func (r *recordRepo) Update(ctx context.Context, rec *model.Record) error {
	return translateError(r.db.WithContext(ctx).Save(rec).Error)
}

func (r *recordRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", id).Delete(&model.Equipment{}).Error; err != nil {
			return err
		}
		res := tx.Where("record_id = ?", id).Delete(&model.Record{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *recordRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Record{}).Count(&n).Error
	return n, err
}
