package model

import "time"

// LoginSession 服务端登录会话表 sessions
// 只存储不透明 token 的 SHA-256
type LoginSession struct {
	TokenHash  string    `gorm:"type:char(64);primaryKey"             json:"-"`
	UserID     string    `gorm:"type:uuid;not null;index"             json:"userId"`
	ExpiresAt  time.Time `gorm:"not null;index"                       json:"expiresAt"`
	LastSeenAt time.Time `gorm:"not null"                             json:"lastSeenAt"`
	UserAgent  string    `gorm:"type:varchar(255);not null;default:''" json:"userAgent"`
	ClientIP   string    `gorm:"type:varchar(64);not null;default:''"  json:"clientIp"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"   json:"createdAt"`
}

// TableName 表名
func (LoginSession) TableName() string { return "sessions" }
