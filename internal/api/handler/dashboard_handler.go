package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/meliofog/iam-stock/internal/service"
	"github.com/meliofog/iam-stock/pkg/response"
)

// DashboardHandler 首页统计 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Summary 档案与设备总数
// GET /api/v1/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	sum, err := h.dashboardSvc.Summary(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, sum)
}
