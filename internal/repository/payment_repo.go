package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"vr-school/backend/internal/model"
)

// PaymentRepository 分期付款数据访问接口, 记录只插入不修改
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByExternalID(ctx context.Context, externalID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Payment, error)
	// ListCreatedBetween 返回 from <= created_at < to 的付款, 按时间正序
	// 零值边界表示不限
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Payment, error)
}

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo 创建 PaymentRepository 实例
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepo) GetByExternalID(ctx context.Context, externalID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("external_payment_id = ?", externalID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	db := r.db.WithContext(ctx)
	if !from.IsZero() {
		db = db.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		db = db.Where("created_at < ?", to)
	}
	err := db.Order("created_at ASC").Find(&payments).Error
	return payments, err
}
