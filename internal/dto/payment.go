package dto

import "vr-school/backend/internal/model"

// ── 支付 ──

// CreatePaymentIntentRequest 发起支付, 必填与范围由账本校验,
// 以便每种失败给出独立提示
type CreatePaymentIntentRequest struct {
	BranchID          string `json:"branchId"`
	InstallmentNumber *int   `json:"installmentNumber"`
}

// CreatePaymentIntentResponse 前端收款所需信息
type CreatePaymentIntentResponse struct {
	ClientSecret      string `json:"clientSecret"`
	PaymentIntentID   string `json:"paymentIntentId"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	InstallmentNumber int    `json:"installmentNumber"`
	Provider          string `json:"provider"`
}

// PaymentSuccessRequest 支付完成
type PaymentSuccessRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// PaymentSuccessResponse 已记录的分期
type PaymentSuccessResponse struct {
	Payment   *model.Payment `json:"payment"`
	StudentID *string        `json:"studentId,omitempty"`
	// AlreadyRecorded 该 intent 此前已确认过时为 true
	AlreadyRecorded bool `json:"alreadyRecorded"`
}

// PaymentExportQuery 管理员导出账本的日期范围, 格式 YYYY-MM-DD
type PaymentExportQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}
