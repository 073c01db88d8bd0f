package dto

import (
	"time"

	"vr-school/backend/internal/model"
)

// ── 认证 ──

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,username"`
	Email    string `json:"email"    binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Name     string `json:"name"     binding:"required,max=100"`
	Phone    string `json:"phone"    binding:"required,max=30"`
	Address  string `json:"address"  binding:"required,max=255"`
	// Role 必须为已知角色, 为空时默认 student
	Role string `json:"role" binding:"omitempty,role"`
}

// LoginRequest 登录请求, Username 可以是用户名、邮箱或学号
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse 当前用户信息 (不含敏感字段)
type UserResponse struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	StudentID        *string  `json:"studentId,omitempty"`
	EnrolledBranches []string `json:"enrolledBranches"`
}

// NewUserResponse 由身份构造响应
func NewUserResponse(id model.Identity) UserResponse {
	return UserResponse{
		ID:               id.UserID,
		Username:         id.Username,
		Email:            id.Email,
		Name:             id.Name,
		Role:             id.Role.String(),
		StudentID:        id.StudentID,
		EnrolledBranches: id.BranchIDs(),
	}
}

// AuthResponse 登录成功响应, Token 与会话 Cookie 相同,
// 供使用 Authorization: Bearer 的客户端
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}
