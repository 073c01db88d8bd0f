package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/repository"
)

// VRSessionService 实验练习记录业务接口
type VRSessionService interface {
	Start(ctx context.Context, caller model.Identity, req *dto.StartVRSessionRequest) (*model.VRSession, error)
	// UpdateProgress 保存调用者自己的练习进度, 进度不可减少,
	// 完成后记录冻结
	UpdateProgress(ctx context.Context, caller model.Identity, sessionID string, req *dto.UpdateVRSessionRequest) (*model.VRSession, error)
	List(ctx context.Context, caller model.Identity) ([]model.VRSession, error)
	// Calendar 将调用者的练习记录输出为 iCalendar
	Calendar(ctx context.Context, caller model.Identity) ([]byte, error)
}

type vrSessionService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewVRSessionService 创建 VRSessionService 实例
func NewVRSessionService(repo *repository.Repository, logger *zap.Logger) VRSessionService {
	return &vrSessionService{repo: repo, logger: logger, now: time.Now}
}

func (s *vrSessionService) Start(ctx context.Context, caller model.Identity, req *dto.StartVRSessionRequest) (*model.VRSession, error) {
	kit, err := s.repo.Equipment.GetByID(ctx, req.EquipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("load equipment failed", zap.String("equipment_id", req.EquipmentID), zap.Error(err))
		return nil, err
	}

	session := &model.VRSession{
		UserID:      caller.UserID,
		EquipmentID: kit.EquipmentID,
		StartTime:   s.now(),
		Progress:    0,
		Equipment:   kit,
	}
	if err := s.repo.VRSession.Create(ctx, session); err != nil {
		s.logger.Error("create vr session failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	return session, nil
}

func (s *vrSessionService) UpdateProgress(ctx context.Context, caller model.Identity, sessionID string, req *dto.UpdateVRSessionRequest) (*model.VRSession, error) {
	session, err := s.repo.VRSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVRSessionNotFound
		}
		s.logger.Error("load vr session failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	// 他人的记录与不存在的记录无法区分
	if session.UserID != caller.UserID {
		return nil, ErrVRSessionNotFound
	}
	if session.Completed {
		return nil, ErrVRSessionCompleted
	}

	progress := *req.Progress
	if progress < session.Progress {
		return nil, ErrVRProgressDecreasing
	}

	session.Progress = progress
	if req.Completed {
		end := s.now()
		session.Completed = true
		session.EndTime = &end
	}

	// 并发保存返回 ErrOptimisticLock (409)
	if err := s.repo.VRSession.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *vrSessionService) List(ctx context.Context, caller model.Identity) ([]model.VRSession, error) {
	sessions, err := s.repo.VRSession.ListByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("list vr sessions failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	if sessions == nil {
		sessions = []model.VRSession{}
	}
	return sessions, nil
}

func (s *vrSessionService) Calendar(ctx context.Context, caller model.Identity) ([]byte, error) {
	sessions, err := s.List(ctx, caller)
	if err != nil {
		return nil, err
	}
	return []byte(RenderSessionCalendar(sessions, s.now())), nil
}
