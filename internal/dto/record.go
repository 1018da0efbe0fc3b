package dto

// ── 档案模块 DTO ──

// RecordRequest 创建 / 编辑档案请求（整表单替换）
// ReceptionDate 形如 2006-01-02，空字符串表示清空
type RecordRequest struct {
	Name          string `json:"name"           binding:"required,max=255"`
	ReceptionDate string `json:"reception_date" binding:"omitempty"`
}

// RecordListRequest 档案列表查询参数
type RecordListRequest struct {
	PaginationRequest
	Name string `form:"name" binding:"omitempty,max=255"`
}

// RecordResponse 档案信息响应（含按设备计算的派生字段）
type RecordResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ReceptionDate  string  `json:"reception_date,omitempty"`
	Quarter        string  `json:"quarter,omitempty"`
	ItemsCount     int64   `json:"items_count"`
	Status         string  `json:"status"`
	RepairDuration int     `json:"repair_duration"`
	Message        *string `json:"message,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}
