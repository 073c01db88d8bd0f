package handler

import (
	"github.com/gin-gonic/gin"

	"vr-school/backend/internal/api/middleware"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/response"
)

// MustGetIdentity 获取 SessionAuth 注入的身份,
// 不存在时已写入 401, 调用方应直接返回
func MustGetIdentity(c *gin.Context) (model.Identity, bool) {
	v, exists := c.Get(middleware.IdentityKey)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "Not authenticated")
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	if !ok || id.UserID == "" {
		response.Unauthorized(c, response.CodeUnauthenticated, "Not authenticated")
		return model.Identity{}, false
	}
	return id, true
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}
