package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/meliofog/iam-stock/internal/dto"
	"github.com/meliofog/iam-stock/internal/service"
	"github.com/meliofog/iam-stock/pkg/response"
)

// EquipmentHandler 设备模块 HTTP 处理器
type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
}

// NewEquipmentHandler 创建 EquipmentHandler
func NewEquipmentHandler(equipmentSvc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentSvc: equipmentSvc}
}

// ListEquipment 设备列表
// GET /api/v1/equipment?record_id=xxx&sn=xxx&page=1
func (h *EquipmentHandler) ListEquipment(c *gin.Context) {
	var req dto.EquipmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.equipmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecordFilter) {
			response.BadRequest(c, 21007, "record_id 格式不正确")
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize(10))
}

// ListRecordEquipment 档案下的设备
// GET /api/v1/records/:id/equipment
func (h *EquipmentHandler) ListRecordEquipment(c *gin.Context) {
	var req dto.EquipmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	req.RecordID = c.Param("id")

	list, total, err := h.equipmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		// 路径中的档案 id 非法等同于档案不存在
		if errors.Is(err, service.ErrInvalidRecordFilter) {
			response.NotFound(c, 20001, "档案不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize(10))
}

// GetEquipment 设备详情
// GET /api/v1/equipment/:id
func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	eq, err := h.equipmentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, eq)
}

// CreateEquipment 手工新增设备
// POST /api/v1/equipment
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	var req dto.EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	eq, err := h.equipmentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.Created(c, eq)
}

// UpdateEquipment 编辑设备（整表单替换）
// PUT /api/v1/equipment/:id
func (h *EquipmentHandler) UpdateEquipment(c *gin.Context) {
	var req dto.EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	eq, err := h.equipmentSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, eq)
}

// DeleteEquipment 删除设备
// DELETE /api/v1/equipment/:id
func (h *EquipmentHandler) DeleteEquipment(c *gin.Context) {
	if err := h.equipmentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleEquipmentError 统一处理设备模块业务错误
func (h *EquipmentHandler) handleEquipmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEquipmentNotFound):
		response.NotFound(c, 21001, "设备不存在")
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, 20001, "档案不存在")
	case errors.Is(err, service.ErrSerialTaken):
		response.Conflict(c, 21002, "序列号已被其他设备使用")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 21003, "日期格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidDeliveryStatus):
		response.BadRequest(c, 21004, "交付状态只能为 Delivered 或 InProgress")
	case errors.Is(err, service.ErrInvalidBL):
		response.BadRequest(c, 21005, "BL 只能为 yes 或 no")
	case errors.Is(err, service.ErrEquipmentNameRequired):
		response.BadRequest(c, 21006, "设备名称不能为空")
	default:
		response.InternalError(c)
	}
}
