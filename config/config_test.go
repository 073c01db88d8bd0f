package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
file_link:
  secret: 0123456789abcdef0123
payment:
  stripe:
    secret_key: sk_test_123
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 5000 || cfg.Session.CookieName != "sid" {
		t.Errorf("unexpected defaults: port=%d cookie=%s", cfg.Server.Port, cfg.Session.CookieName)
	}
	if cfg.Session.TTL != 24*time.Hour || cfg.Session.TouchInterval != time.Minute {
		t.Errorf("unexpected session durations %v / %v", cfg.Session.TTL, cfg.Session.TouchInterval)
	}
	if cfg.Storage.MaxFileBytes != 5<<20 || cfg.Housekeeping.OrphanFileAge != time.Hour {
		t.Errorf("unexpected storage defaults %+v / %+v", cfg.Storage, cfg.Housekeeping)
	}
	if cfg.Payment.Provider != "stripe" || cfg.Payment.Currency != "inr" {
		t.Errorf("unexpected payment defaults %+v", cfg.Payment)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("VRS_SERVER_PORT", "8081")
	t.Setenv("VRS_SESSION_TTL", "2h")
	t.Setenv("VRS_PAYMENT_CURRENCY", "idr")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8081 || cfg.Session.TTL != 2*time.Hour || cfg.Payment.Currency != "idr" {
		t.Errorf("environment not applied: port=%d ttl=%v currency=%s", cfg.Server.Port, cfg.Session.TTL, cfg.Payment.Currency)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 5000, Mode: "debug"},
			Session:  SessionConfig{TTL: time.Hour},
			FileLink: FileLinkConfig{Secret: "0123456789abcdef"},
			Storage:  StorageConfig{Driver: "local", LocalRoot: "uploads", MaxFileBytes: 1},
			Payment:  PaymentConfig{Provider: "stripe", Currency: "inr", Stripe: StripeConfig{SecretKey: "sk"}},
			Redis:    RedisConfig{Addr: "localhost:6379"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"release without db password", func(c *Config) { c.Server.Mode = "release" }, "db.password"},
		{"short link secret", func(c *Config) { c.FileLink.Secret = "short" }, "file_link.secret"},
		{"oss without bucket", func(c *Config) { c.Storage.Driver = "oss" }, "storage.oss"},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "s3" }, "storage.driver"},
		{"stripe without key", func(c *Config) { c.Payment.Stripe.SecretKey = "" }, "secret_key"},
		{"midtrans without redis", func(c *Config) {
			c.Payment.Provider = "midtrans"
			c.Payment.Midtrans.ServerKey = "key"
			c.Redis.Addr = ""
		}, "redis.addr"},
		{"unknown provider", func(c *Config) { c.Payment.Provider = "paypal" }, "payment.provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
