package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ── ExportRecord 测试 ──

func TestExportService_ExportRecord_NotFound(t *testing.T) {
	svc, _ := setupTestServices(nil)

	_, _, err := svc.Export.ExportRecord(context.Background(), "missing")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
}

func TestExportService_ExportRecord_RowsAndOrder(t *testing.T) {
	svc, store := setupTestServices(nil)
	ctx := context.Background()

	rows := [][]interface{}{
		{"Box", "Laptop", "REF-1", "SN-1", "", "2024-03-15", "Delivered", "2024-04-01", "yes", "", ""},
		{"Box", "Screen", "", "SN-2", "", "2024-07-01", "", "", "", "", ""},
		{"Box", "Mouse", "", "SN-3", "", "", "", "", "", "", ""},
	}
	if _, err := svc.Import.Import(ctx, buildWorkbook(t, importHeaders, rows), ImportOptions{}); err != nil {
		t.Fatalf("导入失败: %v", err)
	}

	buf, filename, err := svc.Export.ExportRecord(ctx, recordIDByName(t, store, "Box"))
	if err != nil {
		t.Fatalf("ExportRecord 应成功: %v", err)
	}
	if filename != "Box_data.xlsx" {
		t.Errorf("期望文件名 Box_data.xlsx，实际=%s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("导出文件应可打开: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("期望 1 行表头 + 3 行数据，实际=%d", len(got))
	}
	if strings.Join(got[0], "|") != strings.Join(exportHeaders, "|") {
		t.Errorf("表头不符: %v", got[0])
	}

	wantNames := []string{"Laptop", "Screen", "Mouse"}
	for i, name := range wantNames {
		if got[i+1][0] != name {
			t.Errorf("第 %d 行应为 %s，实际=%s", i+1, name, got[i+1][0])
		}
	}
	laptop := got[1]
	if laptop[2] != "SN-1" || laptop[4] != "2024-03-15" || laptop[5] != "Delivered" || laptop[7] != "yes" {
		t.Errorf("Laptop 行内容不符: %v", laptop)
	}
	if laptop[8] != "2024" || laptop[9] != "Q1" {
		t.Errorf("Year / Quarter 应为 2024 / Q1，实际=%s / %s", laptop[8], laptop[9])
	}
}

func TestExportService_ExportRecord_EmptyRecord(t *testing.T) {
	svc, store := setupTestServices(nil)
	ctx := context.Background()

	if _, err := svc.Record.Create(ctx, recordRequest("Empty", "")); err != nil {
		t.Fatalf("创建档案失败: %v", err)
	}

	buf, _, err := svc.Export.ExportRecord(ctx, recordIDByName(t, store, "Empty"))
	if err != nil {
		t.Fatalf("空档案也应可导出: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("导出文件应可打开: %v", err)
	}
	defer f.Close()

	got, _ := f.GetRows("Sheet1")
	if len(got) != 1 {
		t.Errorf("空档案只应有表头，实际=%d 行", len(got))
	}
}

// ── 样式 ──

func TestWriteEquipmentSheet_Styles(t *testing.T) {
	buf, err := WriteEquipmentSheet(nil, testExportConfig())
	if err != nil {
		t.Fatalf("WriteEquipmentSheet 应成功: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("导出文件应可打开: %v", err)
	}
	defer f.Close()

	tests := []struct {
		cell string
		fill string
		font string
	}{
		{"A1", "0000FF", "FFFFFF"},
		{"H1", "0000FF", "FFFFFF"},
		{"I1", "FFFF00", "000000"},
		{"J1", "FFFF00", "000000"},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			idx, err := f.GetCellStyle("Sheet1", tt.cell)
			if err != nil {
				t.Fatalf("读取样式失败: %v", err)
			}
			style, err := f.GetStyle(idx)
			if err != nil {
				t.Fatalf("解析样式失败: %v", err)
			}
			if len(style.Fill.Color) == 0 || !strings.HasSuffix(strings.ToUpper(style.Fill.Color[0]), tt.fill) {
				t.Errorf("期望填充色 %s，实际=%v", tt.fill, style.Fill.Color)
			}
			if style.Font == nil || !style.Font.Bold {
				t.Error("表头应加粗")
			}
			if style.Font != nil && !strings.HasSuffix(strings.ToUpper(style.Font.Color), tt.font) {
				t.Errorf("期望字体色 %s，实际=%s", tt.font, style.Font.Color)
			}
		})
	}

	for _, col := range []string{"A", "E", "J"} {
		w, err := f.GetColWidth("Sheet1", col)
		if err != nil {
			t.Fatalf("读取列宽失败: %v", err)
		}
		if w != 20 {
			t.Errorf("列 %s 宽度应为 20，实际=%v", col, w)
		}
	}
}

func TestWriteEquipmentSheet_CustomSheetName(t *testing.T) {
	cfg := testExportConfig()
	cfg.SheetName = "Equipment"

	buf, err := WriteEquipmentSheet(nil, cfg)
	if err != nil {
		t.Fatalf("WriteEquipmentSheet 应成功: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("导出文件应可打开: %v", err)
	}
	defer f.Close()

	if list := f.GetSheetList(); len(list) != 1 || list[0] != "Equipment" {
		t.Errorf("期望唯一工作表 Equipment，实际=%v", list)
	}
}
