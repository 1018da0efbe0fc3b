package dto

// ── 表格导入 DTO ──

// ImportRowMessage 导入逐行消息，Row 为数据行序号（从 1 开始，不含表头）
type ImportRowMessage struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	SN      string `json:"sn,omitempty"`
	Message string `json:"message"`
}

// ImportResult 导入批次结果
// Errors 非空时批次视为失败，但已处理成功的行不回滚
type ImportResult struct {
	Created        int                `json:"created"`
	Skipped        int                `json:"skipped"`
	Failed         int                `json:"failed"`
	RecordsCreated int                `json:"records_created"`
	Errors         []ImportRowMessage `json:"errors"`
	Warnings       []ImportRowMessage `json:"warnings"`
}

// HasErrors 是否存在被拒绝的行
func (r *ImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}
