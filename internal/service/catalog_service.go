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

// CatalogService 方向、实验设备与细分方向业务接口
type CatalogService interface {
	ListBranches(ctx context.Context) ([]model.Branch, error)
	GetBranch(ctx context.Context, id string) (*dto.BranchDetailResponse, error)
	ListEquipment(ctx context.Context, branchID string) ([]model.EquipmentKit, error)
	ListSpecializations(ctx context.Context, branchID string) ([]model.Specialization, error)
	// ListEnrolled 返回调用者已报名的方向
	ListEnrolled(ctx context.Context, caller model.Identity) ([]model.Branch, error)

	CreateBranch(ctx context.Context, req *dto.CreateBranchRequest) (*model.Branch, error)
	AddEquipment(ctx context.Context, branchID string, req *dto.CreateEquipmentRequest) (*model.EquipmentKit, error)
	AddSpecialization(ctx context.Context, branchID string, req *dto.CreateSpecializationRequest) (*model.Specialization, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

func (s *catalogService) ListBranches(ctx context.Context) ([]model.Branch, error) {
	branches, err := s.repo.Branch.List(ctx)
	if err != nil {
		s.logger.Error("list branches failed", zap.Error(err))
		return nil, err
	}
	if branches == nil {
		branches = []model.Branch{}
	}
	return branches, nil
}

func (s *catalogService) GetBranch(ctx context.Context, id string) (*dto.BranchDetailResponse, error) {
	branch, err := s.branch(ctx, id)
	if err != nil {
		return nil, err
	}
	kits, err := s.ListEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	specs, err := s.ListSpecializations(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BranchDetailResponse{
		Branch:          branch,
		Equipment:       kits,
		Specializations: specs,
	}, nil
}

func (s *catalogService) ListEquipment(ctx context.Context, branchID string) ([]model.EquipmentKit, error) {
	if _, err := s.branch(ctx, branchID); err != nil {
		return nil, err
	}
	kits, err := s.repo.Equipment.ListByBranch(ctx, branchID)
	if err != nil {
		s.logger.Error("list equipment failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}
	if kits == nil {
		kits = []model.EquipmentKit{}
	}
	return kits, nil
}

func (s *catalogService) ListSpecializations(ctx context.Context, branchID string) ([]model.Specialization, error) {
	if _, err := s.branch(ctx, branchID); err != nil {
		return nil, err
	}
	specs, err := s.repo.Specialization.ListByBranch(ctx, branchID)
	if err != nil {
		s.logger.Error("list specializations failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}
	if specs == nil {
		specs = []model.Specialization{}
	}
	return specs, nil
}

func (s *catalogService) ListEnrolled(ctx context.Context, caller model.Identity) ([]model.Branch, error) {
	branches, err := s.repo.Branch.ListByIDs(ctx, caller.BranchIDs())
	if err != nil {
		s.logger.Error("list enrolled branches failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	if branches == nil {
		branches = []model.Branch{}
	}
	return branches, nil
}

// ── 管理员初始化数据 ──

func (s *catalogService) CreateBranch(ctx context.Context, req *dto.CreateBranchRequest) (*model.Branch, error) {
	branch := &model.Branch{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
	}
	if err := s.repo.Branch.Create(ctx, branch); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrBranchNameTaken
		}
		s.logger.Error("create branch failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("branch created", zap.String("branch_id", branch.BranchID), zap.String("name", branch.Name))
	return branch, nil
}

func (s *catalogService) AddEquipment(ctx context.Context, branchID string, req *dto.CreateEquipmentRequest) (*model.EquipmentKit, error) {
	if _, err := s.branch(ctx, branchID); err != nil {
		return nil, err
	}
	kit := &model.EquipmentKit{
		BranchID:    branchID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	}
	if err := s.repo.Equipment.Create(ctx, kit); err != nil {
		s.logger.Error("create equipment failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}
	return kit, nil
}

func (s *catalogService) AddSpecialization(ctx context.Context, branchID string, req *dto.CreateSpecializationRequest) (*model.Specialization, error) {
	if _, err := s.branch(ctx, branchID); err != nil {
		return nil, err
	}
	spec := &model.Specialization{
		BranchID:      branchID,
		Name:          req.Name,
		Description:   req.Description,
		TeachersCount: req.TeachersCount,
		ModulesCount:  req.ModulesCount,
	}
	if err := s.repo.Specialization.Create(ctx, spec); err != nil {
		s.logger.Error("create specialization failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}
	return spec, nil
}

func (s *catalogService) branch(ctx context.Context, id string) (*model.Branch, error) {
	branch, err := s.repo.Branch.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		s.logger.Error("load branch failed", zap.String("branch_id", id), zap.Error(err))
		return nil, err
	}
	return branch, nil
}
