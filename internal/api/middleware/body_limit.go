package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vr-school/backend/pkg/response"
)

// BodyLimit 限制请求体为 maxBytes, 读取超限时 handler 得到 *http.MaxBytesError;
// 若 handler 仅将其放入 c.Errors 而未响应, 此处写入 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, err := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(err.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "Request body too large")
				return
			}
		}
	}
}
