package service

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ── 表格解析器 ──────────────────────────────────────────────
//
// 职责：将上传的 .xlsx 解析为按列名取值的行，不做业务校验。
//
//   - 只读取第一个工作表，第一行为表头
//   - 表头匹配不区分大小写、忽略多余空白，支持历史版本的别名
//   - 使用原始单元格值：日期单元格以 Excel 序列号返回，由 parseSheetDate 处理
//   - 全空行跳过，但仍占用行号（行号与 order_index 一致）
// ─────────────────────────────────────────────────────────────

// ErrInvalidSpreadsheet 文件不是可解析的表格
var ErrInvalidSpreadsheet = errors.New("invalid spreadsheet file")

type sheetColumn int

const (
	colDossier sheetColumn = iota
	colDesignation
	colRef
	colSN
	colSNRempl
	colReceptionDate
	colDeliveryStatus
	colDeliveryDate
	colBL
	colYear
	colQuarter
)

// 列显示名（用于错误消息）
var columnLabels = map[sheetColumn]string{
	colDossier:        "Dossier",
	colDesignation:    "Design.",
	colRef:            "Ref",
	colSN:             "SN",
	colSNRempl:        "SN Rempl",
	colReceptionDate:  "Reception date",
	colDeliveryStatus: "Delivery status",
	colDeliveryDate:   "Delivery date",
	colBL:             "BL",
	colYear:           "YEAR",
	colQuarter:        "QUARTER",
}

// 表头别名，键为 normalizeHeader 之后的形式
var headerAliases = map[string]sheetColumn{
	"dossier":         colDossier,
	"record":          colDossier,
	"design.":         colDesignation,
	"design":          colDesignation,
	"designation":     colDesignation,
	"name":            colDesignation,
	"ref":             colRef,
	"sn":              colSN,
	"sn rempl":        colSNRempl,
	"reception date":  colReceptionDate,
	"date de récept":  colReceptionDate,
	"date de recept":  colReceptionDate,
	"delivery status": colDeliveryStatus,
	"livraison":       colDeliveryStatus,
	"delivery date":   colDeliveryDate,
	"date livraison":  colDeliveryDate,
	"bl":              colBL,
	"year":            colYear,
	"quarter":         colQuarter,
}

// SheetRow 解析后的一行，值均已去除首尾空白
type SheetRow struct {
	Row   int // 数据行序号，从 1 开始（不含表头）
	cells map[sheetColumn]string
}

// Get 返回列值，列不存在时为空字符串
func (r SheetRow) Get(col sheetColumn) string {
	return r.cells[col]
}

// ParsedSheet 解析结果
type ParsedSheet struct {
	Sheet   string
	columns map[sheetColumn]int
	Rows    []SheetRow
}

// HasColumn 表头中是否出现该列
func (p *ParsedSheet) HasColumn(col sheetColumn) bool {
	_, ok := p.columns[col]
	return ok
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// ParseSheet 解析上传的表格
// 文件无法打开、没有工作表、没有可识别表头时返回 ErrInvalidSpreadsheet
func ParseSheet(r io.Reader) (*ParsedSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no worksheet", ErrInvalidSpreadsheet)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty worksheet", ErrInvalidSpreadsheet)
	}

	parsed := &ParsedSheet{Sheet: sheet, columns: make(map[sheetColumn]int)}
	for idx, h := range rows[0] {
		col, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		// 重复表头以第一次出现为准
		if _, dup := parsed.columns[col]; !dup {
			parsed.columns[col] = idx
		}
	}
	if len(parsed.columns) == 0 {
		return nil, fmt.Errorf("%w: no recognised column header", ErrInvalidSpreadsheet)
	}

	for i, raw := range rows[1:] {
		row := SheetRow{Row: i + 1, cells: make(map[sheetColumn]string, len(parsed.columns))}
		blank := true
		for col, idx := range parsed.columns {
			if idx >= len(raw) {
				continue
			}
			v := strings.TrimSpace(raw[idx])
			if v != "" {
				blank = false
			}
			row.cells[col] = v
		}
		if blank {
			continue
		}
		parsed.Rows = append(parsed.Rows, row)
	}

	return parsed, nil
}

// 可接受的文本日期格式
var sheetDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"2006/01/02",
}

// parseSheetDate 解析日期单元格：空字符串返回 nil；支持文本格式与 Excel 序列号
func parseSheetDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial <= 0 {
		return nil, fmt.Errorf("unrecognised date %q", v)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return nil, fmt.Errorf("unrecognised date %q: %w", v, err)
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, nil
}
