package handler

import (
	"github.com/gin-gonic/gin"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/response"
)

// PaymentHandler 分期支付接口
type PaymentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewPaymentHandler 创建 PaymentHandler 实例
func NewPaymentHandler(enrollmentSvc service.EnrollmentService) *PaymentHandler {
	return &PaymentHandler{enrollmentSvc: enrollmentSvc}
}

// CreateIntent 计算分期金额并在网关创建 intent
// POST /api/create-payment-intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	intent, err := h.enrollmentSvc.CreatePaymentIntent(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, intent)
}

// Success 记录已结算的 intent, 第一期时完成报名
// POST /api/payment-success
func (h *PaymentHandler) Success(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.PaymentSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.enrollmentSvc.ConfirmPayment(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}
