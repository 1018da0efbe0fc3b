package model

import "time"

// DeliveryStatus 交付状态
type DeliveryStatus string

const (
	DeliveryStatusDelivered  DeliveryStatus = "Delivered"
	DeliveryStatusInProgress DeliveryStatus = "InProgress"
)

// Valid 是否为合法交付状态
func (s DeliveryStatus) Valid() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusInProgress
}

// BL 交货单标记（bon de livraison）
type BL string

const (
	BLYes BL = "yes"
	BLNo  BL = "no"
)

// Valid 是否为合法 BL 取值
func (b BL) Valid() bool {
	return b == BLYes || b == BLNo
}

// Equipment 设备表，对应 equipment
// Year / Quarter 由 ReceptionDate 推导，每次保存前重新计算
type Equipment struct {
	EquipmentID    string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"equipment_id"`
	RecordID       string         `gorm:"type:uuid;not null;index:idx_equipment_record_order,priority:1" json:"record_id"`
	Record         *Record        `gorm:"foreignKey:RecordID"                            json:"record,omitempty"`
	Name           string         `gorm:"type:varchar(255);not null"                     json:"name"`
	Ref            *string        `gorm:"type:varchar(255)"                              json:"ref,omitempty"`
	SN             *string        `gorm:"column:sn;type:varchar(255);uniqueIndex:uq_equipment_sn" json:"sn,omitempty"`
	SNRempl        *string        `gorm:"column:sn_rempl;type:varchar(255)"              json:"sn_rempl,omitempty"`
	ReceptionDate  *time.Time     `gorm:"type:date"                                      json:"reception_date,omitempty"`
	DeliveryStatus DeliveryStatus `gorm:"type:varchar(50);not null;default:'InProgress'" json:"delivery_status"`
	DeliveryDate   *time.Time     `gorm:"type:date"                                      json:"delivery_date,omitempty"`
	BL             BL             `gorm:"column:bl;type:varchar(3);not null;default:'no'" json:"bl"`
	Year           *int           `gorm:"type:integer"                                   json:"year,omitempty"`
	Quarter        *string        `gorm:"type:varchar(2)"                                json:"quarter,omitempty"`
	OrderIndex     int            `gorm:"not null;index:idx_equipment_record_order,priority:2" json:"order_index"`
	BaseModel
}

// TableName 指定表名
func (Equipment) TableName() string { return "equipment" }

// [自证通过] internal/model/equipment.go
