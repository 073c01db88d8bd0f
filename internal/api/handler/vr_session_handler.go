package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/response"
)

// VRSessionHandler VR 实验练习接口
type VRSessionHandler struct {
	vrSvc service.VRSessionService
}

// NewVRSessionHandler 创建 VRSessionHandler 实例
func NewVRSessionHandler(vrSvc service.VRSessionService) *VRSessionHandler {
	return &VRSessionHandler{vrSvc: vrSvc}
}

// Start 开始练习
func (h *VRSessionHandler) Start(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.StartVRSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.vrSvc.Start(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, session)
}

// UpdateProgress 保存进度
func (h *VRSessionHandler) UpdateProgress(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateVRSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.vrSvc.UpdateProgress(c.Request.Context(), id, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, session)
}

// List 练习记录
func (h *VRSessionHandler) List(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	sessions, err := h.vrSvc.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, sessions)
}

// Calendar 导出练习日历
func (h *VRSessionHandler) Calendar(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	raw, err := h.vrSvc.Calendar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="vr-sessions.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", raw)
}
