package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "vr-school/backend/pkg/errors"

	"vr-school/backend/internal/model"
)

// VRSessionRepository 实验练习数据访问接口
type VRSessionRepository interface {
	Create(ctx context.Context, s *model.VRSession) error
	GetByID(ctx context.Context, id string) (*model.VRSession, error)
	// Update 保存进度, 以 version 列做乐观锁
	Update(ctx context.Context, s *model.VRSession) error
	ListByUser(ctx context.Context, userID string) ([]model.VRSession, error)
}

type vrSessionRepo struct {
	db *gorm.DB
}

// NewVRSessionRepo 创建 VRSessionRepository 实例
func NewVRSessionRepo(db *gorm.DB) VRSessionRepository {
	return &vrSessionRepo{db: db}
}

func (r *vrSessionRepo) Create(ctx context.Context, s *model.VRSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *vrSessionRepo) GetByID(ctx context.Context, id string) (*model.VRSession, error) {
	var s model.VRSession
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Where("session_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *vrSessionRepo) Update(ctx context.Context, s *model.VRSession) error {
	oldVersion := s.Version
	result := r.db.WithContext(ctx).
		Model(&model.VRSession{}).
		Where("session_id = ? AND version = ?", s.SessionID, oldVersion).
		Updates(map[string]interface{}{
			"progress":   s.Progress,
			"completed":  s.Completed,
			"end_time":   s.EndTime,
			"version":    oldVersion + 1,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version = oldVersion + 1
	return nil
}

func (r *vrSessionRepo) ListByUser(ctx context.Context, userID string) ([]model.VRSession, error) {
	var sessions []model.VRSession
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&sessions).Error
	return sessions, err
}
