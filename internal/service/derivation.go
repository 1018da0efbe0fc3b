package service

import (
	"fmt"
	"time"

	"github.com/meliofog/iam-stock/internal/model"
)

// ── 派生字段计算 ────────────────────────────────────────────
//
// 纯函数，无副作用。所有设置 reception_date 的写路径（导入、新建、编辑、
// 档案日期批量级联）都必须在落库前调用 applyEquipmentDerivations /
// applyRecordDerivations。
// ─────────────────────────────────────────────────────────────

const (
	statusClosed = "closed"

	// 维修时长达到 penaltyWarnFrom 天开始预警，超过 penaltyDeadline 天判罚
	penaltyWarnFrom = 75
	penaltyDeadline = 90

	penaltyIssuedMessage = "Penalty issued!"
)

var quarterNames = [4]string{"Q1", "Q2", "Q3", "Q4"}

// DeriveYearQuarter 由日期推导 (年份, 季度)；date 为空时返回 (nil, nil)
func DeriveYearQuarter(date *time.Time) (*int, *string) {
	if date == nil {
		return nil, nil
	}
	year := date.Year()
	quarter := quarterOf(date.Month())
	return &year, &quarter
}

func quarterOf(m time.Month) string {
	return quarterNames[(int(m)-1)/3]
}

// RecordQuarter 档案季度，date 为空时返回空字符串
func RecordQuarter(date *time.Time) string {
	if date == nil {
		return ""
	}
	return quarterOf(date.Month())
}

// RecordStatus 统计 InProgress 设备数：0 为 "closed"，否则 "<N> items left"
func RecordStatus(items []model.Equipment) string {
	var pending int64
	for i := range items {
		if items[i].DeliveryStatus == model.DeliveryStatusInProgress {
			pending++
		}
	}
	return statusFromPending(pending)
}

func statusFromPending(pending int64) string {
	if pending == 0 {
		return statusClosed
	}
	return fmt.Sprintf("%d items left", pending)
}

// RepairDuration 自接收日期起经过的自然日数；接收日期为空返回 0
// 未来日期按字面相减，结果为负数
func RepairDuration(receptionDate *time.Time, today time.Time) int {
	if receptionDate == nil {
		return 0
	}
	from := time.Date(receptionDate.Year(), receptionDate.Month(), receptionDate.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// PenaltyMessage [75,90] 天返回剩余天数提示，超过 90 天返回判罚提示，其余返回 nil
func PenaltyMessage(duration int) *string {
	var msg string
	switch {
	case duration > penaltyDeadline:
		msg = penaltyIssuedMessage
	case duration >= penaltyWarnFrom:
		msg = fmt.Sprintf("You have %d days before penalty.", penaltyDeadline+1-duration)
	default:
		return nil
	}
	return &msg
}

// applyEquipmentDerivations 按 ReceptionDate 重算 Year / Quarter
func applyEquipmentDerivations(eq *model.Equipment) {
	eq.Year, eq.Quarter = DeriveYearQuarter(eq.ReceptionDate)
}

// applyRecordDerivations 按 ReceptionDate 重算档案 Quarter
func applyRecordDerivations(rec *model.Record) {
	rec.Quarter = RecordQuarter(rec.ReceptionDate)
}
