package dto

// ── 设备模块 DTO ──

// EquipmentRequest 创建 / 编辑设备请求（整表单替换）
// Year / Quarter 不接受输入，由 ReceptionDate 推导
type EquipmentRequest struct {
	RecordID       string `json:"record_id"       binding:"required"`
	Name           string `json:"name"            binding:"required,max=255"`
	Ref            string `json:"ref"             binding:"omitempty,max=255"`
	SN             string `json:"sn"              binding:"omitempty,max=255"`
	SNRempl        string `json:"sn_rempl"        binding:"omitempty,max=255"`
	ReceptionDate  string `json:"reception_date"  binding:"omitempty"`
	DeliveryStatus string `json:"delivery_status" binding:"omitempty,oneof=Delivered InProgress"`
	DeliveryDate   string `json:"delivery_date"   binding:"omitempty"`
	BL             string `json:"bl"              binding:"omitempty,oneof=yes no"`
}

// EquipmentListRequest 设备列表查询参数
type EquipmentListRequest struct {
	PaginationRequest
	RecordID string `form:"record_id"`
	SN       string `form:"sn" binding:"omitempty,max=255"`
}

// EquipmentResponse 设备信息响应
type EquipmentResponse struct {
	ID             string `json:"id"`
	RecordID       string `json:"record_id"`
	RecordName     string `json:"record_name,omitempty"`
	Name           string `json:"name"`
	Ref            string `json:"ref"`
	SN             string `json:"sn"`
	SNRempl        string `json:"sn_rempl"`
	ReceptionDate  string `json:"reception_date"`
	DeliveryStatus string `json:"delivery_status"`
	DeliveryDate   string `json:"delivery_date"`
	BL             string `json:"bl"`
	Year           *int   `json:"year"`
	Quarter        string `json:"quarter"`
	OrderIndex     int    `json:"order_index"`
}
