package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"vr-school/backend/internal/model"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/response"
)

// IdentityKey gin 上下文中存放 model.Identity 的键
const IdentityKey = "identity"

// SessionAuth 从 Cookie 或 Authorization: Bearer <token> 解析会话,
// 注入调用者身份
func SessionAuth(auth service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			response.Unauthorized(c, response.CodeUnauthenticated, "Not authenticated")
			c.Abort()
			return
		}

		id, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, response.CodeUnauthenticated, "Not authenticated")
			c.Abort()
			return
		}

		c.Set(IdentityKey, *id)
		c.Next()
	}
}

// SessionToken 返回请求的会话 token, Cookie 优先
func SessionToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RoleAuth 调用者具备任一角色时放行
func RoleAuth(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(IdentityKey)
		id, ok := v.(model.Identity)
		if !exists || !ok {
			response.Unauthorized(c, response.CodeUnauthenticated, "Not authenticated")
			c.Abort()
			return
		}

		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "Access denied")
		c.Abort()
	}
}
