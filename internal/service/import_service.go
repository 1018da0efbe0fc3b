package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meliofog/iam-stock/config"
	"github.com/meliofog/iam-stock/internal/dto"
	"github.com/meliofog/iam-stock/internal/model"
	"github.com/meliofog/iam-stock/internal/repository"
	pkgerrors "github.com/meliofog/iam-stock/pkg/errors"
)

// ── 导入模块业务错误 ──

var (
	ErrImportInProgress = errors.New("another import is in progress")
)

const (
	importLockName       = "import"
	defaultImportLockTTL = 2 * time.Minute
)

// Locker 单写者互斥锁（由 Redis 实现，可为空）
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// ImportOptions 导入选项
type ImportOptions struct {
	// RecordName 表格缺少 Dossier 列时所有行归入该档案
	RecordName string
}

// ImportService 表格导入业务接口
//
// 设计说明：
//   - 逐行处理，单行失败不影响后续行（批次非原子）
//   - 每行在独立事务中完成：按名称获取或创建档案 → 全库按序列号去重 → 新建设备
//   - 序列号冲突（含并发写入触发的唯一索引冲突）记为 warning 并跳过该行
//   - 文件级错误（非表格文件）在逐行处理前直接返回 ErrInvalidSpreadsheet
type ImportService interface {
	Import(ctx context.Context, r io.Reader, opts ImportOptions) (*dto.ImportResult, error)
}

type importService struct {
	repo    *repository.Repository
	locker  Locker
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewImportService 创建 ImportService 实例，locker 为 nil 时不加锁
func NewImportService(repo *repository.Repository, locker Locker, cfg *config.ImportConfig, logger *zap.Logger) ImportService {
	ttl := defaultImportLockTTL
	if cfg != nil && cfg.LockTTL > 0 {
		ttl = cfg.LockTTL
	}
	return &importService{repo: repo, locker: locker, lockTTL: ttl, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Import
// ════════════════════════════════════════════════════════════

func (s *importService) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*dto.ImportResult, error) {
	sheet, err := ParseSheet(r)
	if err != nil {
		s.logger.Warn("解析导入文件失败", zap.Error(err))
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &dto.ImportResult{
		Errors:   []dto.ImportRowMessage{},
		Warnings: []dto.ImportRowMessage{},
	}
	fallbackName := strings.TrimSpace(opts.RecordName)

	for _, row := range sheet.Rows {
		recordName, eq, problems := buildImportEquipment(row, fallbackName)
		if len(problems) > 0 {
			result.Failed++
			for _, p := range problems {
				result.Errors = append(result.Errors, rowMessage(p))
			}
			continue
		}

		outcome, err := s.importRow(ctx, recordName, eq)
		switch {
		case err != nil:
			s.logger.Error("导入行失败", zap.Int("row", row.Row), zap.Error(err))
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowMessage{
				Row:     row.Row,
				SN:      *eq.SN,
				Message: "unexpected error while saving row",
			})
		case outcome.duplicate:
			s.logger.Warn("序列号已存在，跳过", zap.Int("row", row.Row), zap.String("sn", *eq.SN))
			result.Skipped++
			result.Warnings = append(result.Warnings, rowMessage(pkgerrors.NewDuplicateError(
				row.Row, columnLabels[colSN], *eq.SN,
				fmt.Sprintf("Equipment with SN %s already exists and was not added.", *eq.SN),
			)))
		default:
			result.Created++
		}
		if err == nil && outcome.recordCreated {
			result.RecordsCreated++
		}
	}

	s.logger.Info("导入完成",
		zap.String("sheet", sheet.Sheet),
		zap.Int("rows", len(sheet.Rows)),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("records_created", result.RecordsCreated),
	)

	return result, nil
}

// acquire 获取导入锁；Redis 异常时降级为不加锁
func (s *importService) acquire(ctx context.Context) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}

	token, ok, err := s.locker.AcquireLock(ctx, importLockName, s.lockTTL)
	if err != nil {
		s.logger.Warn("获取导入锁失败，降级为无锁导入", zap.Error(err))
		return noop, nil
	}
	if !ok {
		return nil, ErrImportInProgress
	}

	return func() {
		if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), importLockName, token); err != nil {
			s.logger.Warn("释放导入锁失败", zap.Error(err))
		}
	}, nil
}

type rowOutcome struct {
	duplicate     bool
	recordCreated bool
}

// importRow 在单个事务中处理一行
func (s *importService) importRow(ctx context.Context, recordName string, eq *model.Equipment) (rowOutcome, error) {
	var out rowOutcome

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		out = rowOutcome{}

		rec, created, err := tx.Record.GetOrCreate(ctx, recordName)
		if err != nil {
			return fmt.Errorf("获取或创建档案失败: %w", err)
		}
		out.recordCreated = created

		_, err = tx.Equipment.GetBySN(ctx, *eq.SN)
		if err == nil {
			out.duplicate = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("按序列号查询设备失败: %w", err)
		}

		eq.RecordID = rec.RecordID
		applyEquipmentDerivations(eq)
		return tx.Equipment.Create(ctx, eq)
	})

	// 并发导入时由唯一索引兜底，整行回滚后按重复处理
	if errors.Is(err, pkgerrors.ErrDuplicateKey) {
		return rowOutcome{duplicate: true}, nil
	}
	return out, err
}

// buildImportEquipment 校验必填列并转换可选列，返回档案名与待创建设备
func buildImportEquipment(row SheetRow, fallbackRecord string) (string, *model.Equipment, []*pkgerrors.RowError) {
	var problems []*pkgerrors.RowError
	reject := func(col sheetColumn, msg string) {
		problems = append(problems, pkgerrors.NewValidationError(row.Row, columnLabels[col], msg))
	}

	recordName := row.Get(colDossier)
	if recordName == "" {
		recordName = fallbackRecord
	}
	name := row.Get(colDesignation)
	sn := row.Get(colSN)

	for _, req := range []struct {
		col sheetColumn
		val string
	}{
		{colDossier, recordName},
		{colDesignation, name},
		{colSN, sn},
	} {
		if req.val == "" {
			reject(req.col, fmt.Sprintf("Row %d: missing required field %s", row.Row, columnLabels[req.col]))
		}
	}

	eq := &model.Equipment{
		Name:           name,
		Ref:            optionalString(row.Get(colRef)),
		SN:             optionalString(sn),
		SNRempl:        optionalString(row.Get(colSNRempl)),
		DeliveryStatus: model.DeliveryStatusInProgress,
		BL:             model.BLNo,
		OrderIndex:     row.Row,
	}

	var err error
	if eq.ReceptionDate, err = parseSheetDate(row.Get(colReceptionDate)); err != nil {
		reject(colReceptionDate, fmt.Sprintf("Row %d: %v", row.Row, err))
	}
	if eq.DeliveryDate, err = parseSheetDate(row.Get(colDeliveryDate)); err != nil {
		reject(colDeliveryDate, fmt.Sprintf("Row %d: %v", row.Row, err))
	}
	if v := row.Get(colDeliveryStatus); v != "" {
		status, ok := parseDeliveryStatus(v)
		if !ok {
			reject(colDeliveryStatus, fmt.Sprintf("Row %d: unknown delivery status %q", row.Row, v))
		}
		eq.DeliveryStatus = status
	}
	if v := row.Get(colBL); v != "" {
		bl, ok := parseBL(v)
		if !ok {
			reject(colBL, fmt.Sprintf("Row %d: unknown BL value %q", row.Row, v))
		}
		eq.BL = bl
	}

	return recordName, eq, problems
}

func rowMessage(e *pkgerrors.RowError) dto.ImportRowMessage {
	return dto.ImportRowMessage{Row: e.Row, Field: e.Field, SN: e.SN, Message: e.Msg}
}

func parseDeliveryStatus(v string) (model.DeliveryStatus, bool) {
	switch strings.ToLower(strings.ReplaceAll(v, " ", "")) {
	case "delivered":
		return model.DeliveryStatusDelivered, true
	case "inprogress":
		return model.DeliveryStatusInProgress, true
	}
	return "", false
}

func parseBL(v string) (model.BL, bool) {
	switch strings.ToLower(v) {
	case "yes", "oui":
		return model.BLYes, true
	case "no", "non":
		return model.BLNo, true
	}
	return "", false
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
