package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meliofog/iam-stock/internal/service"
	"github.com/meliofog/iam-stock/pkg/response"
)

// 可接受的上传扩展名
var importExtensions = map[string]bool{".xlsx": true, ".xlsm": true}

// ImportHandler 表格导入 HTTP 处理器
type ImportHandler struct {
	importSvc service.ImportService
	maxBytes  int64
}

// NewImportHandler 创建 ImportHandler，maxBytes <= 0 表示不限制文件大小
func NewImportHandler(importSvc service.ImportService, maxBytes int64) *ImportHandler {
	return &ImportHandler{importSvc: importSvc, maxBytes: maxBytes}
}

// Import 上传表格并逐行导入
// POST /api/v1/imports  (multipart: file, record?)
//
// 全部行成功返回 201；存在被拒绝的行返回 422，响应体同样包含批次结果
func (h *ImportHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return
		}
		response.BadRequest(c, 22001, "请上传表格文件（字段名 file）")
		return
	}
	if !importExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
		response.BadRequest(c, 22002, "仅支持 .xlsx 文件")
		return
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	result, err := h.importSvc.Import(c.Request.Context(), f, service.ImportOptions{
		RecordName: c.PostForm("record"),
	})
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	if result.HasErrors() {
		response.ErrorWithData(c, http.StatusUnprocessableEntity, 22004, "部分行未通过校验", result)
		return
	}
	response.Created(c, result)
}

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSpreadsheet):
		response.BadRequest(c, 22003, "无法解析的表格文件")
	case errors.Is(err, service.ErrImportInProgress):
		response.Conflict(c, 22005, "已有导入任务正在进行")
	default:
		response.InternalError(c)
	}
}
