package repository

import (
	"context"

	"gorm.io/gorm"

	"vr-school/backend/internal/model"
)

// VideoRepository 课程视频数据访问接口
type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	ListByBranch(ctx context.Context, branchID string) ([]model.Video, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Video, error)
}

type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepo 创建 VideoRepository 实例
func NewVideoRepo(db *gorm.DB) VideoRepository {
	return &videoRepo{db: db}
}

func (r *videoRepo) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepo) ListByBranch(ctx context.Context, branchID string) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("created_at DESC").
		Find(&videos).Error
	return videos, err
}

func (r *videoRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&videos).Error
	return videos, err
}
