package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meliofog/iam-stock/config"
	"github.com/meliofog/iam-stock/internal/model"
	"github.com/meliofog/iam-stock/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("failed to generate spreadsheet")
)

// 导出表头，最后两列（Year / Quarter）使用强调色
var exportHeaders = []string{
	"Name", "Ref", "SN", "SN Rempl", "Reception Date",
	"Delivery Status", "Delivery Date", "BL", "Year", "Quarter",
}

const exportAccentFrom = 8 // Year 列下标

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 单 Sheet：一行表头 + 每台设备一行，按 order_index 顺序
type ExportService interface {
	// ExportRecord 导出档案设备为 Excel，返回内容与建议文件名
	ExportRecord(ctx context.Context, recordID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	cfg    config.ExportConfig
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, cfg config.ExportConfig, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, cfg: cfg, logger: logger}
}

func (s *exportService) ExportRecord(ctx context.Context, recordID string) (*bytes.Buffer, string, error) {
	if !isValidID(recordID) {
		return nil, "", ErrRecordNotFound
	}
	rec, err := s.repo.Record.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRecordNotFound
		}
		s.logger.Error("查询档案失败", zap.String("id", recordID), zap.Error(err))
		return nil, "", err
	}

	items, err := s.repo.Equipment.ListByRecord(ctx, recordID)
	if err != nil {
		s.logger.Error("查询档案设备失败", zap.String("id", recordID), zap.Error(err))
		return nil, "", err
	}

	buf, err := WriteEquipmentSheet(items, s.cfg)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("id", recordID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, ExportFilename(rec), nil
}

// ExportFilename 建议下载文件名
func ExportFilename(rec *model.Record) string {
	return fmt.Sprintf("%s_data.xlsx", rec.Name)
}

// WriteEquipmentSheet 将设备列表渲染为带格式的 xlsx
func WriteEquipmentSheet(items []model.Equipment, cfg config.ExportConfig) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, err
		}
	}

	headerColor := cfg.HeaderColor
	if headerColor == "" {
		headerColor = "#0000FF"
	}
	accentColor := cfg.AccentColor
	if accentColor == "" {
		accentColor = "#FFFF00"
	}
	width := cfg.ColumnWidth
	if width <= 0 {
		width = 20
	}

	headerStyle, err := f.NewStyle(headerStyleOf(headerColor, "#FFFFFF"))
	if err != nil {
		return nil, err
	}
	accentStyle, err := f.NewStyle(headerStyleOf(accentColor, "#000000"))
	if err != nil {
		return nil, err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Border: thinBorder(),
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return nil, err
	}

	// 表头
	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	lastCol := colName(len(exportHeaders) - 1)
	accentCol := colName(exportAccentFrom)
	beforeAccent := colName(exportAccentFrom - 1)
	if err := f.SetCellStyle(sheet, "A1", cell(beforeAccent, 1), headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, cell(accentCol, 1), cell(lastCol, 1), accentStyle); err != nil {
		return nil, err
	}

	// 数据行
	for i := range items {
		row := i + 2
		values := equipmentRowValues(&items[i])
		if err := f.SetSheetRow(sheet, cell("A", row), &values); err != nil {
			return nil, err
		}
	}
	if len(items) > 0 {
		if err := f.SetCellStyle(sheet, "A2", cell(lastCol, len(items)+1), cellStyle); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "A", lastCol, width); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// equipmentRowValues 一台设备对应的单元格值，空值输出空字符串
func equipmentRowValues(eq *model.Equipment) []interface{} {
	var year interface{} = ""
	if eq.Year != nil {
		year = *eq.Year
	}
	return []interface{}{
		eq.Name,
		deref(eq.Ref),
		deref(eq.SN),
		deref(eq.SNRempl),
		formatDate(eq.ReceptionDate),
		string(eq.DeliveryStatus),
		formatDate(eq.DeliveryDate),
		string(eq.BL),
		year,
		deref(eq.Quarter),
	}
}

func headerStyleOf(fill, font string) *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: font},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Border:    thinBorder(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
