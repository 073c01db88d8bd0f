package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	pkgerrors "vr-school/backend/pkg/errors"
	"vr-school/backend/pkg/response"
)

// respondError 将 err 写为统一响应, 服务层哨兵错误自带状态码与业务码,
// 其余视为内部错误
func respondError(c *gin.Context, err error) {
	if appErr, ok := pkgerrors.As(err); ok {
		if appErr.Kind == pkgerrors.KindInternal {
			_ = c.Error(err)
			response.InternalError(c)
			return
		}
		response.Error(c, appErr.Kind.HTTPStatus(), appErr.Code, appErr.Message)
		return
	}

	_ = c.Error(err)
	response.InternalError(c)
}

// respondBindError 请求绑定或校验失败
func respondBindError(c *gin.Context, err error) {
	if isBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "Request body too large")
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldMessage(fe))
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeBadRequest, "Invalid request", strings.Join(fields, "; "))
		return
	}

	response.BadRequest(c, response.CodeBadRequest, "Invalid request body")
}

// isBodyTooLarge 判断读取请求体时是否触发 BodyLimit
func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "max", "oneof", "datetime":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	case "username":
		return fe.Field() + " may not contain @ or start with STU-"
	case "role":
		return fe.Field() + " is not a known role"
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
