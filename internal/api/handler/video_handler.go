package handler

import (
	"github.com/gin-gonic/gin"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/response"
)

// VideoHandler 课程视频接口
type VideoHandler struct {
	videoSvc service.VideoService
}

// NewVideoHandler 创建 VideoHandler 实例
func NewVideoHandler(videoSvc service.VideoService) *VideoHandler {
	return &VideoHandler{videoSvc: videoSvc}
}

// ListBranchVideos 调用者可观看的方向视频
// GET /api/branches/:id/videos
func (h *VideoHandler) ListBranchVideos(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	videos, err := h.videoSvc.ListBranchVideos(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, videos)
}

// Create 发布视频 (仅教师)
func (h *VideoHandler) Create(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	video, err := h.videoSvc.Create(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, video)
}

// ListOwn 教师自己的视频
func (h *VideoHandler) ListOwn(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	videos, err := h.videoSvc.ListOwn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, videos)
}
