package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"vr-school/backend/config"
)

// Stripe 对接 Stripe PaymentIntents API
type Stripe struct {
	client paymentintent.Client
	logger *zap.Logger
}

// NewStripe 使用独立 backend 创建客户端, 不修改 stripe 包级全局变量
func NewStripe(cfg *config.StripeConfig, logger *zap.Logger) *Stripe {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.MaxRetries),
		LeveledLogger:     logger.Sugar(),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}

	return &Stripe{
		client: paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		logger: logger,
	}
}

// Name 支付服务名称
func (s *Stripe) Name() string { return "stripe" }

// CreateIntent 创建启用自动支付方式的 PaymentIntent
func (s *Stripe) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.client.New(params)
	if err != nil {
		return nil, s.wrap("create", err)
	}
	return fromStripe(pi), nil
}

// RetrieveIntent 回查 PaymentIntent
func (s *Stripe) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.client.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrIntentNotFound
		}
		return nil, s.wrap("retrieve", err)
	}
	return fromStripe(pi), nil
}

func (s *Stripe) wrap(op string, err error) error {
	gwErr := &Error{Provider: "stripe", Op: op, Message: err.Error(), Err: err}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		gwErr.StatusCode = stripeErr.HTTPStatusCode
		gwErr.Message = stripeErr.Msg
	}
	s.logger.Warn("stripe call failed",
		zap.String("op", op),
		zap.Int("status", gwErr.StatusCode),
		zap.Error(err),
	)
	return gwErr
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}
