package handler

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"vr-school/backend/internal/model"
)

// 自定义校验标签
const (
	usernameTag  = "username"
	roleTag      = "role"
	youtubeIDTag = "youtubeid"
)

var youtubeIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var registerOnce sync.Once

// RegisterValidators 在 gin 校验器上注册自定义标签,
// 字段错误使用 json 字段名而非 Go 字段名
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		_ = v.RegisterValidation(usernameTag, usernameValidation)
		_ = v.RegisterValidation(roleTag, roleValidation)
		_ = v.RegisterValidation(youtubeIDTag, youtubeIDValidation)
	})
}

// usernameValidation 拒绝会与邮箱或学号登录冲突的用户名
func usernameValidation(fl validator.FieldLevel) bool {
	return !model.IsReservedUsername(strings.TrimSpace(fl.Field().String()))
}

// roleValidation 接受任何已知角色, 能否自选由注册逻辑决定
func roleValidation(fl validator.FieldLevel) bool {
	_, err := model.ParseRole(fl.Field().String())
	return err == nil
}

func youtubeIDValidation(fl validator.FieldLevel) bool {
	return youtubeIDRegex.MatchString(fl.Field().String())
}
