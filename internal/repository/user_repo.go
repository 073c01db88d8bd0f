package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vr-school/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*model.User, error)
	// FindConflict 一次查询返回持有 username 或 email 的用户
	FindConflict(ctx context.Context, username, email string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	// AssignStudentID 仅在 student_id 为 NULL 时设置, 返回本次是否设置成功
	AssignStudentID(ctx context.Context, userID, studentID string) (bool, error)
	ListEnrollments(ctx context.Context, userID string) ([]model.Enrollment, error)
	// AddEnrollment 集合语义: 重复报名只保留一行
	AddEnrollment(ctx context.Context, userID, branchID string) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "user_id = ?", id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepo) GetByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return r.first(ctx, "student_id = ?", studentID)
}

func (r *userRepo) FindConflict(ctx context.Context, username, email string) (*model.User, error) {
	return r.first(ctx, "username = ? OR email = ?", username, email)
}

func (r *userRepo) first(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where(query, args...).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&users).Error
	return users, err
}

func (r *userRepo) AssignStudentID(ctx context.Context, userID, studentID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND student_id IS NULL", userID).
		Updates(map[string]interface{}{
			"student_id": studentID,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *userRepo) ListEnrollments(ctx context.Context, userID string) ([]model.Enrollment, error) {
	var rows []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *userRepo) AddEnrollment(ctx context.Context, userID, branchID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Enrollment{UserID: userID, BranchID: branchID}).Error
}
