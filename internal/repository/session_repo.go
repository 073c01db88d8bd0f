package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"vr-school/backend/internal/model"
)

// SessionRepository 持久化登录会话数据访问接口
type SessionRepository interface {
	Create(ctx context.Context, s *model.LoginSession) error
	// GetActive 返回 tokenHash 对应且未过期的会话
	GetActive(ctx context.Context, tokenHash string, now time.Time) (*model.LoginSession, error)
	Touch(ctx context.Context, tokenHash string, expiresAt, seenAt time.Time) error
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, s *model.LoginSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) GetActive(ctx context.Context, tokenHash string, now time.Time) (*model.LoginSession, error) {
	var s model.LoginSession
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Touch(ctx context.Context, tokenHash string, expiresAt, seenAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.LoginSession{}).
		Where("token_hash = ?", tokenHash).
		Updates(map[string]interface{}{
			"expires_at":   expiresAt,
			"last_seen_at": seenAt,
		}).Error
}

func (r *sessionRepo) Delete(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Delete(&model.LoginSession{}).Error
}

func (r *sessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.LoginSession{})
	return result.RowsAffected, result.Error
}
