package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vr-school/backend/config"
	"vr-school/backend/internal/api/middleware"
	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/response"
)

// AuthHandler 注册、登录与会话 Cookie
type AuthHandler struct {
	authSvc service.AuthService
	cookie  config.SessionConfig
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authSvc service.AuthService, cookie config.SessionConfig) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cookie: cookie}
}

// Register 注册账户并登录
// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, result.Session.Token, result.Session.ExpiresAt)
	response.Created(c, authResponse(result))
}

// Login 使用用户名、邮箱或学号登录
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, result.Session.Token, result.Session.ExpiresAt)
	response.OK(c, authResponse(result))
}

// Logout 销毁会话并清除 Cookie
// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c, h.cookie.CookieName)
	if token != "" {
		if err := h.authSvc.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}

	h.setSessionCookie(c, "", time.Unix(0, 0))
	response.OK(c, nil)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if token == "" || maxAge <= 0 {
		maxAge = -1
	}
	c.SetSameSite(parseSameSite(h.cookie.SameSite))
	c.SetCookie(h.cookie.CookieName, token, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		User:      dto.NewUserResponse(result.Identity),
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
	}
}
