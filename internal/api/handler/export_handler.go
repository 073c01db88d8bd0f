package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 管理员表格导出
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler 实例
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportPayments 以 xlsx 下载付款账本
// GET /api/admin/payments/export?from=2025-01-01&to=2025-01-31
func (h *ExportHandler) ExportPayments(c *gin.Context) {
	var query dto.PaymentExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportPayments(c.Request.Context(), &query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
