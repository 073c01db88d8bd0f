package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/repository"
)

// VideoService 方向课程视频业务接口, 受访问策略约束
type VideoService interface {
	// ListBranchVideos 返回调用者可观看的方向视频
	ListBranchVideos(ctx context.Context, caller model.Identity, branchID string) ([]model.Video, error)
	Create(ctx context.Context, caller model.Identity, req *dto.CreateVideoRequest) (*model.Video, error)
	// ListOwn 返回调用者作为教师管理的视频
	ListOwn(ctx context.Context, caller model.Identity) ([]model.Video, error)
}

type videoService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewVideoService 创建 VideoService 实例
func NewVideoService(repo *repository.Repository, logger *zap.Logger) VideoService {
	return &videoService{repo: repo, logger: logger}
}

func (s *videoService) ListBranchVideos(ctx context.Context, caller model.Identity, branchID string) ([]model.Video, error) {
	if err := s.requireBranch(ctx, branchID); err != nil {
		return nil, err
	}
	videos, err := s.repo.Video.ListByBranch(ctx, branchID)
	if err != nil {
		s.logger.Error("list branch videos failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}
	return FilterVideos(caller, videos, CanViewVideo), nil
}

func (s *videoService) Create(ctx context.Context, caller model.Identity, req *dto.CreateVideoRequest) (*model.Video, error) {
	if caller.Role != model.RoleTeacher {
		return nil, ErrTeacherOnly
	}
	if err := s.requireBranch(ctx, req.BranchID); err != nil {
		return nil, err
	}

	restricted := true
	if req.RestrictedAccess != nil {
		restricted = *req.RestrictedAccess
	}
	tags := model.StringArray(req.Tags)
	if tags == nil {
		tags = model.StringArray{}
	}

	video := &model.Video{
		Title:            req.Title,
		Description:      req.Description,
		YoutubeID:        req.YoutubeID,
		TeacherID:        caller.UserID,
		BranchID:         req.BranchID,
		Tags:             tags,
		RestrictedAccess: restricted,
	}
	if err := s.repo.Video.Create(ctx, video); err != nil {
		s.logger.Error("create video failed", zap.String("teacher_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("video published",
		zap.String("video_id", video.VideoID),
		zap.String("branch_id", video.BranchID),
		zap.Bool("restricted", restricted),
	)
	return video, nil
}

func (s *videoService) ListOwn(ctx context.Context, caller model.Identity) ([]model.Video, error) {
	if caller.Role != model.RoleTeacher {
		return nil, ErrTeacherOnly
	}
	videos, err := s.repo.Video.ListByTeacher(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("list teacher videos failed", zap.String("teacher_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	return FilterVideos(caller, videos, CanManageVideo), nil
}

func (s *videoService) requireBranch(ctx context.Context, id string) error {
	if _, err := s.repo.Branch.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBranchNotFound
		}
		s.logger.Error("load branch failed", zap.String("branch_id", id), zap.Error(err))
		return err
	}
	return nil
}
