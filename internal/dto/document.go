package dto

import "time"

// ── 文档 ──

// UploadDocumentRequest 除文件外的 multipart 表单字段
type UploadDocumentRequest struct {
	Type string `form:"type"`
}

// DocumentResponse 文档信息, 附带文件签名链接
type DocumentResponse struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	URL         string     `json:"url"`
	Feedback    string     `json:"feedback"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
}

// ReviewDocumentRequest 审核结果
type ReviewDocumentRequest struct {
	Status   string `json:"status"   binding:"required,oneof=approved rejected"`
	Feedback string `json:"feedback" binding:"max=1000"`
}

// DocumentListQuery 审核队列筛选
type DocumentListQuery struct {
	Status   string `form:"status"    binding:"omitempty,oneof=pending approved rejected"`
	Page     int    `form:"page"      binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
