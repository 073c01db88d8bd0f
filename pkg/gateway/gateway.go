// Package gateway 将外部支付服务适配为报名账本所需的两个调用:
// 创建 intent 与回查 intent
package gateway

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vr-school/backend/config"
	"vr-school/backend/pkg/redis"
)

// 每个 intent 附带的元数据键
const (
	MetaUserID      = "userId"
	MetaBranchID    = "branchId"
	MetaInstallment = "installmentNumber"
)

// StatusSucceeded 账本认可的唯一成功终态
const StatusSucceeded = "succeeded"

// ErrIntentNotFound 支付服务不认识该 ID
var ErrIntentNotFound = errors.New("gateway: payment intent not found")

// Intent 支付服务的临时支付对象
type Intent struct {
	ID           string
	ClientSecret string
	// Amount 金额, 最小货币单位
	Amount   int64
	Currency string
	Status   string
	Metadata map[string]string
}

// Succeeded 支付服务是否已完成扣款
func (i *Intent) Succeeded() bool { return i.Status == StatusSucceeded }

// Gateway 各支付服务适配器实现的接口
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	Name() string
}

// Error 可重试的支付服务或网络错误
type Error struct {
	Provider   string
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("gateway %s %s failed", e.Provider, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New 按配置创建适配器, midtrans 需要 rdb
func New(cfg *config.PaymentConfig, rdb *redis.Client, logger *zap.Logger) (Gateway, error) {
	switch cfg.Provider {
	case "stripe":
		return NewStripe(&cfg.Stripe, logger), nil
	case "midtrans":
		if rdb == nil {
			return nil, errors.New("gateway: midtrans needs redis for intent metadata")
		}
		return NewMidtrans(&cfg.Midtrans, rdb, logger), nil
	default:
		return nil, fmt.Errorf("gateway: unknown provider %q", cfg.Provider)
	}
}
