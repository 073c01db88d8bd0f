package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/response"
)

// UserHandler 当前用户相关接口
type UserHandler struct {
	enrollmentSvc service.EnrollmentService
	catalogSvc    service.CatalogService
	logger        *zap.Logger
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(enrollmentSvc service.EnrollmentService, catalogSvc service.CatalogService, logger *zap.Logger) *UserHandler {
	return &UserHandler{enrollmentSvc: enrollmentSvc, catalogSvc: catalogSvc, logger: logger}
}

// GetCurrentUser 当前用户身份
// GET /api/user
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	response.OK(c, dto.NewUserResponse(id))
}

// ListPayments 调用者的分期付款记录, 最新在前
// 读取失败时降级为空列表
// GET /api/user/payments
func (h *UserHandler) ListPayments(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	payments, err := h.enrollmentSvc.ListPayments(c.Request.Context(), id.UserID)
	if err != nil {
		h.logger.Warn("payment history unavailable, returning empty list",
			zap.String("user_id", id.UserID), zap.Error(err))
		payments = []model.Payment{}
	}
	response.OK(c, payments)
}

// ListBranches 调用者已报名的方向
// GET /api/user/branches
func (h *UserHandler) ListBranches(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	branches, err := h.catalogSvc.ListEnrolled(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, branches)
}
