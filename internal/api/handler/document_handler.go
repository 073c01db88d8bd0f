package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/response"
)

// documentField 承载文件的 multipart 字段名
const documentField = "document"

// DocumentHandler 认证文档接口
type DocumentHandler struct {
	docSvc service.DocumentService
	logger *zap.Logger
}

// NewDocumentHandler 创建 DocumentHandler 实例
func NewDocumentHandler(docSvc service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc, logger: logger}
}

// List 调用者的文档, 最新在前
// GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	docs, err := h.docSvc.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, docs)
}

// Upload 上传指定类型的文档, 替换已有文档
// POST /api/documents/upload (multipart: type, document)
func (h *DocumentHandler) Upload(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	// 请求体超限时整个 multipart 解析失败, 此时类型未知,
	// 直接按文件过大处理
	var form dto.UploadDocumentRequest
	if err := c.ShouldBind(&form); err != nil {
		if isBodyTooLarge(err) {
			respondError(c, service.ErrFileTooLarge)
			return
		}
		respondBindError(c, err)
		return
	}

	// 缺少文件由服务层在类型校验之后报告
	var upload *service.UploadedFile
	fh, err := c.FormFile(documentField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()
		upload = &service.UploadedFile{Body: f, Filename: fh.Filename, Size: fh.Size}
	case errors.Is(err, http.ErrMissingFile):
	case isBodyTooLarge(err):
		respondError(c, service.ErrFileTooLarge)
		return
	default:
		respondBindError(c, err)
		return
	}

	doc, err := h.docSvc.Upload(c.Request.Context(), id, form.Type, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, doc)
}

// File 通过签名链接提供文档, 存储支持预签名时重定向, 否则流式输出
// GET /api/documents/file?token=...
func (h *DocumentHandler) File(c *gin.Context) {
	content, err := h.docSvc.OpenFile(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	if content.RedirectURL != "" {
		c.Redirect(http.StatusFound, content.RedirectURL)
		return
	}
	defer content.Body.Close()

	c.Header("Cache-Control", "private, no-store")
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": content.Name}))
	c.Header("Content-Length", fmt.Sprint(content.Size))
	c.Header("Content-Type", content.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, content.Body); err != nil {
		h.logger.Warn("stream document failed", zap.Error(err))
	}
}

// ListForReview 审核队列, 默认 pending
// GET /api/admin/documents?status=pending&page=1&page_size=20
func (h *DocumentHandler) ListForReview(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var query dto.DocumentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	docs, total, err := h.docSvc.ListForReview(c.Request.Context(), id, &query)
	if err != nil {
		respondError(c, err)
		return
	}

	page, size := query.Page, query.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	response.OKPage(c, docs, total, page, size)
}

// Review 通过或驳回待审核文档
// PUT /api/admin/documents/:id/review
func (h *DocumentHandler) Review(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.ReviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	doc, err := h.docSvc.Review(c.Request.Context(), id, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, doc)
}
