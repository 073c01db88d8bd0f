package gateway

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"go.uber.org/zap"

	"vr-school/backend/config"
	"vr-school/backend/pkg/redis"
)

const midtransIntentPrefix = "payment:intent:"

// midtransIntent Midtrans 无法携带的订单元数据与币种
type midtransIntent struct {
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// Midtrans 通过 Snap 创建交易, 通过 Core API 查询状态
// 订单号即 intent ID
type Midtrans struct {
	snap        snap.Client
	core        coreapi.Client
	rdb         *redis.Client
	metadataTTL time.Duration
	logger      *zap.Logger
}

// NewMidtrans 配置沙箱或生产环境客户端
func NewMidtrans(cfg *config.MidtransConfig, rdb *redis.Client, logger *zap.Logger) *Midtrans {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}

	m := &Midtrans{rdb: rdb, metadataTTL: cfg.MetadataTTL, logger: logger}
	m.snap.New(cfg.ServerKey, env)
	m.core.New(cfg.ServerKey, env)
	if m.metadataTTL <= 0 {
		m.metadataTTL = 72 * time.Hour
	}
	return m
}

// Name 支付服务名称
func (m *Midtrans) Name() string { return "midtrans" }

// CreateIntent 创建 Snap 交易, snap token 作为 client secret
func (m *Midtrans) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	orderID := "VRS-" + uuid.NewString()

	// 先写元数据: 不允许存在无法对账的交易
	stored := midtransIntent{Currency: currency, Metadata: metadata}
	if err := m.rdb.SetJSON(ctx, midtransIntentPrefix+orderID, stored, m.metadataTTL); err != nil {
		return nil, &Error{Provider: "midtrans", Op: "create", Message: "store intent metadata", Err: err}
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amountMinor / 100,
		},
		CustomField1: metadata[MetaUserID],
		CustomField2: metadata[MetaBranchID],
		CustomField3: metadata[MetaInstallment],
	}

	resp, mErr := m.snap.CreateTransaction(req)
	if mErr != nil {
		return nil, m.wrap("create", mErr)
	}

	return &Intent{
		ID:           orderID,
		ClientSecret: resp.Token,
		Amount:       amountMinor,
		Currency:     currency,
		Status:       "requires_payment_method",
		Metadata:     metadata,
	}, nil
}

// RetrieveIntent 查询订单状态并合并已存元数据
func (m *Midtrans) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	var stored midtransIntent
	if err := m.rdb.GetJSON(ctx, midtransIntentPrefix+id, &stored); err != nil {
		if errors.Is(err, redis.ErrMiss) {
			return nil, ErrIntentNotFound
		}
		return nil, &Error{Provider: "midtrans", Op: "retrieve", Message: "load intent metadata", Err: err}
	}

	res, mErr := m.core.CheckTransaction(id)
	if mErr != nil {
		if mErr.StatusCode == http.StatusNotFound {
			return nil, ErrIntentNotFound
		}
		return nil, m.wrap("retrieve", mErr)
	}

	gross, err := strconv.ParseFloat(res.GrossAmount, 64)
	if err != nil {
		return nil, &Error{Provider: "midtrans", Op: "retrieve", Message: "bad gross_amount " + res.GrossAmount, Err: err}
	}

	return &Intent{
		ID:       id,
		Amount:   int64(math.Round(gross * 100)),
		Currency: stored.Currency,
		Status:   midtransStatus(res.TransactionStatus, res.FraudStatus),
		Metadata: stored.Metadata,
	}, nil
}

// midtransStatus 将 Midtrans 交易状态映射为 intent 状态
func midtransStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "settlement":
		return StatusSucceeded
	case "capture":
		if fraudStatus == "" || fraudStatus == "accept" {
			return StatusSucceeded
		}
		return "requires_review"
	case "pending":
		return "processing"
	case "deny", "cancel", "expire", "failure":
		return "canceled"
	default:
		return transactionStatus
	}
}

func (m *Midtrans) wrap(op string, mErr *midtrans.Error) error {
	m.logger.Warn("midtrans call failed",
		zap.String("op", op),
		zap.Int("status", mErr.StatusCode),
		zap.String("message", mErr.Message),
	)
	return &Error{
		Provider:   "midtrans",
		Op:         op,
		StatusCode: mErr.StatusCode,
		Message:    mErr.Message,
	}
}
