package model

import "time"

// Record 维修档案表，对应 records
// Quarter 由 ReceptionDate 推导，任何修改 ReceptionDate 的写路径都必须重新计算
type Record struct {
	RecordID      string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	Name          string      `gorm:"type:varchar(255);not null;uniqueIndex:uq_records_name" json:"name"`
	ReceptionDate *time.Time  `gorm:"type:date"                                      json:"reception_date,omitempty"`
	Quarter       string      `gorm:"type:varchar(2);not null;default:''"            json:"quarter"`
	Equipment     []Equipment `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"equipment,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Record) TableName() string { return "records" }

// RecordStats 档案聚合统计（列表页使用，不落库）
type RecordStats struct {
	Record
	ItemsCount      int64 `gorm:"column:items_count"`
	InProgressCount int64 `gorm:"column:in_progress_count"`
}
