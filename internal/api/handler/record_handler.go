package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/meliofog/iam-stock/internal/dto"
	"github.com/meliofog/iam-stock/internal/service"
	"github.com/meliofog/iam-stock/pkg/response"
)

// RecordHandler 档案模块 HTTP 处理器
type RecordHandler struct {
	recordSvc service.RecordService
}

// NewRecordHandler 创建 RecordHandler
func NewRecordHandler(recordSvc service.RecordService) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc}
}

// ListRecords 档案列表（含设备数、状态、维修时长）
// GET /api/v1/records?name=xxx&page=1&page_size=20
func (h *RecordHandler) ListRecords(c *gin.Context) {
	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.recordSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize(20))
}

// GetRecord 档案详情
// GET /api/v1/records/:id
func (h *RecordHandler) GetRecord(c *gin.Context) {
	rec, err := h.recordSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, rec)
}

// CreateRecord 新建档案
// POST /api/v1/records
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var req dto.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rec, err := h.recordSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.Created(c, rec)
}

// UpdateRecord 编辑档案；接收日期变化时级联到全部设备
// PUT /api/v1/records/:id
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	var req dto.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rec, err := h.recordSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, rec)
}

// DeleteRecord 删除档案及其设备
// DELETE /api/v1/records/:id
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	if err := h.recordSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleRecordError 统一处理档案模块业务错误
func (h *RecordHandler) handleRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, 20001, "档案不存在")
	case errors.Is(err, service.ErrRecordNameTaken):
		response.Conflict(c, 20002, "档案名称已存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 20003, "日期格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrRecordNameRequired):
		response.BadRequest(c, 20004, "档案名称不能为空")
	default:
		response.InternalError(c)
	}
}
