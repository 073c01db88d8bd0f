package model

import (
	"fmt"
	"strings"
	"time"
)

// Role 账户角色, 封闭集合
type Role string

const (
	RoleStudent  Role = "student"
	RoleTeacher  Role = "teacher"
	RoleLecturer Role = "lecturer"
	RoleAdmin    Role = "admin"
)

// ParseRole 校验存储或提交的角色字符串
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStudent, RoleTeacher, RoleLecturer, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// SelfAssignable 注册者能否自选该角色
func (r Role) SelfAssignable() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleLecturer
}

// StudentIDPrefix 学号前缀
const StudentIDPrefix = "STU-"

// IsReservedUsername 判断用户名是否会与邮箱或学号登录空间冲突
func IsReservedUsername(name string) bool {
	return strings.Contains(name, "@") || strings.HasPrefix(strings.ToUpper(name), StudentIDPrefix)
}

// User 用户表 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username     string  `gorm:"type:varchar(50);not null;uniqueIndex"           json:"username"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"          json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                      json:"-"`
	Name         string  `gorm:"type:varchar(100);not null"                      json:"name"`
	Phone        string  `gorm:"type:varchar(30);not null"                       json:"phone"`
	Address      string  `gorm:"type:varchar(255);not null"                      json:"address"`
	Role         Role    `gorm:"type:varchar(16);not null;default:'student'"     json:"role"`
	StudentID    *string `gorm:"type:varchar(32);uniqueIndex"                    json:"studentId,omitempty"`
	BaseModel

	// 已报名方向, 按需加载
	Enrollments []Enrollment `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}

// TableName 表名
func (User) TableName() string { return "users" }

// Enrollment 用户已报名方向集合中的一行: user_branches
// 复合主键保证集合不重复
type Enrollment struct {
	UserID     string    `gorm:"type:uuid;primaryKey"               json:"userId"`
	BranchID   string    `gorm:"type:uuid;primaryKey"               json:"branchId"`
	EnrolledAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"enrolledAt"`
}

// TableName 表名
func (Enrollment) TableName() string { return "user_branches" }

// Identity 通过会话校验后的调用者
type Identity struct {
	UserID           string
	Username         string
	Email            string
	Name             string
	Role             Role
	StudentID        *string
	EnrolledBranches map[string]struct{}
}

// NewIdentity 由用户及其报名记录构造身份
func NewIdentity(u *User, enrollments []Enrollment) Identity {
	set := make(map[string]struct{}, len(enrollments))
	for _, e := range enrollments {
		set[e.BranchID] = struct{}{}
	}
	return Identity{
		UserID:           u.UserID,
		Username:         u.Username,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		StudentID:        u.StudentID,
		EnrolledBranches: set,
	}
}

// IsEnrolled 判断 branchID 是否在已报名集合中
func (i Identity) IsEnrolled(branchID string) bool {
	_, ok := i.EnrolledBranches[branchID]
	return ok
}

// BranchIDs 以切片返回已报名集合, 无序
func (i Identity) BranchIDs() []string {
	ids := make([]string, 0, len(i.EnrolledBranches))
	for id := range i.EnrolledBranches {
		ids = append(ids, id)
	}
	return ids
}
