package repository

import (
	"context"

	"gorm.io/gorm"

	"vr-school/backend/internal/model"
)

// ── Branch ──

// BranchRepository 课程方向数据访问接口
type BranchRepository interface {
	Create(ctx context.Context, branch *model.Branch) error
	GetByID(ctx context.Context, id string) (*model.Branch, error)
	List(ctx context.Context) ([]model.Branch, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Branch, error)
}

type branchRepo struct {
	db *gorm.DB
}

// NewBranchRepo 创建 BranchRepository 实例
func NewBranchRepo(db *gorm.DB) BranchRepository {
	return &branchRepo{db: db}
}

func (r *branchRepo) Create(ctx context.Context, branch *model.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *branchRepo) GetByID(ctx context.Context, id string) (*model.Branch, error) {
	var branch model.Branch
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", id).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepo) List(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&branches).Error
	return branches, err
}

func (r *branchRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Branch, error) {
	var branches []model.Branch
	if len(ids) == 0 {
		return branches, nil
	}
	err := r.db.WithContext(ctx).
		Where("branch_id IN ?", ids).
		Find(&branches).Error
	return branches, err
}

// ── EquipmentKit ──

// EquipmentRepository 实验设备数据访问接口
type EquipmentRepository interface {
	Create(ctx context.Context, kit *model.EquipmentKit) error
	GetByID(ctx context.Context, id string) (*model.EquipmentKit, error)
	ListByBranch(ctx context.Context, branchID string) ([]model.EquipmentKit, error)
}

type equipmentRepo struct {
	db *gorm.DB
}

// NewEquipmentRepo 创建 EquipmentRepository 实例
func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Create(ctx context.Context, kit *model.EquipmentKit) error {
	return r.db.WithContext(ctx).Create(kit).Error
}

func (r *equipmentRepo) GetByID(ctx context.Context, id string) (*model.EquipmentKit, error) {
	var kit model.EquipmentKit
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", id).
		First(&kit).Error
	if err != nil {
		return nil, err
	}
	return &kit, nil
}

func (r *equipmentRepo) ListByBranch(ctx context.Context, branchID string) ([]model.EquipmentKit, error) {
	var kits []model.EquipmentKit
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("name ASC").
		Find(&kits).Error
	return kits, err
}

// ── Specialization ──

// SpecializationRepository 细分方向数据访问接口
type SpecializationRepository interface {
	Create(ctx context.Context, spec *model.Specialization) error
	ListByBranch(ctx context.Context, branchID string) ([]model.Specialization, error)
}

type specializationRepo struct {
	db *gorm.DB
}

// NewSpecializationRepo 创建 SpecializationRepository 实例
func NewSpecializationRepo(db *gorm.DB) SpecializationRepository {
	return &specializationRepo{db: db}
}

func (r *specializationRepo) Create(ctx context.Context, spec *model.Specialization) error {
	return r.db.WithContext(ctx).Create(spec).Error
}

func (r *specializationRepo) ListByBranch(ctx context.Context, branchID string) ([]model.Specialization, error) {
	var specs []model.Specialization
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("name ASC").
		Find(&specs).Error
	return specs, err
}
