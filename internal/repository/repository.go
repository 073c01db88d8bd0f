package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository 聚合所有数据访问接口
type Repository struct {
	db *gorm.DB

	User           UserRepository
	Session        SessionRepository
	Document       DocumentRepository
	Branch         BranchRepository
	Equipment      EquipmentRepository
	Specialization SpecializationRepository
	Payment        PaymentRepository
	Video          VideoRepository
	VRSession      VRSessionRepository
}

// NewRepository 基于 db 创建所有 Repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		User:           NewUserRepo(db),
		Session:        NewSessionRepo(db),
		Document:       NewDocumentRepo(db),
		Branch:         NewBranchRepo(db),
		Equipment:      NewEquipmentRepo(db),
		Specialization: NewSpecializationRepo(db),
		Payment:        NewPaymentRepo(db),
		Video:          NewVideoRepo(db),
		VRSession:      NewVRSessionRepo(db),
	}
}

// BeginTx 开启事务。未连接数据库的 Repository (单元测试使用 mock)
// 返回 nil tx 且无错误, 调用方直接在原 Repository 上执行
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回所有成员都在 tx 中执行的 Repository
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// IsUniqueViolation 判断是否为 PostgreSQL 唯一约束冲突
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ViolatedConstraint 返回 PostgreSQL 错误中的约束名
func ViolatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
