package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"vr-school/backend/config"
)

// ── stripe 测试桩 ──

type stubIntent struct {
	ID           string            `json:"id"`
	Object       string            `json:"object"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	Metadata     map[string]string `json:"metadata"`
}

func newStripeStub(t *testing.T, handler http.HandlerFunc) *Stripe {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStripe(&config.StripeConfig{
		SecretKey:  "sk_test_123",
		BaseURL:    srv.URL,
		MaxRetries: 0,
	}, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestStripe_CreateIntent(t *testing.T) {
	gw := newStripeStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payment_intents" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if r.PostForm.Get("amount") != "1800000" || r.PostForm.Get("currency") != "inr" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		if r.PostForm.Get("metadata[userId]") != "u-1" || r.PostForm.Get("metadata[installmentNumber]") != "1" {
			t.Errorf("metadata missing from %v", r.PostForm)
		}
		writeJSON(w, http.StatusOK, stubIntent{
			ID: "pi_1", Object: "payment_intent", Amount: 1800000, Currency: "inr",
			Status: "requires_payment_method", ClientSecret: "pi_1_secret_abc",
			Metadata: map[string]string{"userId": "u-1", "installmentNumber": "1"},
		})
	})

	intent, err := gw.CreateIntent(context.Background(), 1800000, "inr", map[string]string{
		MetaUserID:      "u-1",
		MetaInstallment: "1",
	})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if intent.ID != "pi_1" || intent.ClientSecret != "pi_1_secret_abc" || intent.Amount != 1800000 {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if intent.Succeeded() {
		t.Error("a fresh intent is not succeeded")
	}
}

func TestStripe_RetrieveIntent(t *testing.T) {
	gw := newStripeStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/payment_intents/pi_ok" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, stubIntent{
			ID: "pi_ok", Object: "payment_intent", Amount: 1800000, Currency: "inr",
			Status: "succeeded", Metadata: map[string]string{"branchId": "b-1"},
		})
	})

	intent, err := gw.RetrieveIntent(context.Background(), "pi_ok")
	if err != nil {
		t.Fatalf("RetrieveIntent: %v", err)
	}
	if !intent.Succeeded() || intent.Metadata[MetaBranchID] != "b-1" {
		t.Fatalf("unexpected intent %+v", intent)
	}
}

func TestStripe_RetrieveIntent_NotFound(t *testing.T) {
	gw := newStripeStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]string{
				"type":    "invalid_request_error",
				"code":    "resource_missing",
				"message": "No such payment_intent",
			},
		})
	})

	if _, err := gw.RetrieveIntent(context.Background(), "pi_missing"); !errors.Is(err, ErrIntentNotFound) {
		t.Fatalf("want ErrIntentNotFound, got %v", err)
	}
}

func TestStripe_ProcessorErrorIsGatewayError(t *testing.T) {
	gw := newStripeStub(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error": map[string]string{
				"type":    "card_error",
				"message": "Your card was declined.",
			},
		})
	})

	_, err := gw.CreateIntent(context.Background(), 100, "inr", nil)
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("want *gateway.Error, got %T %v", err, err)
	}
	if gwErr.StatusCode != http.StatusPaymentRequired || !strings.Contains(gwErr.Message, "declined") {
		t.Fatalf("unexpected gateway error %+v", gwErr)
	}
}

func TestStripe_TransportErrorIsGatewayError(t *testing.T) {
	gw := NewStripe(&config.StripeConfig{
		SecretKey: "sk_test_123",
		BaseURL:   "http://127.0.0.1:1",
	}, zap.NewNop())

	_, err := gw.RetrieveIntent(context.Background(), "pi_x")
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("want *gateway.Error, got %T %v", err, err)
	}
}

// ── midtrans ──

func TestMidtransStatus(t *testing.T) {
	cases := []struct {
		tx, fraud, want string
	}{
		{"settlement", "", StatusSucceeded},
		{"capture", "accept", StatusSucceeded},
		{"capture", "challenge", "requires_review"},
		{"pending", "", "processing"},
		{"expire", "", "canceled"},
		{"deny", "", "canceled"},
	}
	for _, tc := range cases {
		if got := midtransStatus(tc.tx, tc.fraud); got != tc.want {
			t.Errorf("%s/%s: want %s, got %s", tc.tx, tc.fraud, tc.want, got)
		}
	}
}

func TestNew_Providers(t *testing.T) {
	gw, err := New(&config.PaymentConfig{Provider: "stripe", Stripe: config.StripeConfig{SecretKey: "sk"}}, nil, zap.NewNop())
	if err != nil || gw.Name() != "stripe" {
		t.Fatalf("stripe: %v %v", gw, err)
	}
	if _, err := New(&config.PaymentConfig{Provider: "midtrans"}, nil, zap.NewNop()); err == nil {
		t.Error("midtrans without redis should fail")
	}
	if _, err := New(&config.PaymentConfig{Provider: "paypal"}, nil, zap.NewNop()); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestError_Message(t *testing.T) {
	e := &Error{Provider: "stripe", Op: "create", StatusCode: 500, Message: "boom"}
	if e.Error() != "gateway stripe create failed (status 500): boom" {
		t.Errorf("unexpected %q", e.Error())
	}
}
