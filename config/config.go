package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"db"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Session      SessionConfig      `mapstructure:"session"`
	FileLink     FileLinkConfig     `mapstructure:"file_link"`
	Security     SecurityConfig     `mapstructure:"security"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Payment      PaymentConfig      `mapstructure:"payment"`
	Housekeeping HousekeepingConfig `mapstructure:"housekeeping"`
	Log          LogConfig          `mapstructure:"log"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	Mode    string     `mapstructure:"mode"` // debug | release | test
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
	LogSQL          bool   `mapstructure:"log_sql"`
}

// DSN 构造 PostgreSQL 连接串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置, Addr 为空表示禁用
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig 登录会话配置
type SessionConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
	Secure     bool          `mapstructure:"secure"`
	SameSite   string        `mapstructure:"same_site"`
	Domain     string        `mapstructure:"domain"`
	// TouchInterval 同一会话两次续期写入的最小间隔
	TouchInterval time.Duration `mapstructure:"touch_interval"`
}

// FileLinkConfig 文档签名链接配置
type FileLinkConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// SecurityConfig 请求安全配置
type SecurityConfig struct {
	BodyLimitBytes  int64         `mapstructure:"body_limit_bytes"`
	LoginRateLimit  int           `mapstructure:"login_rate_limit"`
	LoginRateWindow time.Duration `mapstructure:"login_rate_window"`
}

// StorageConfig 上传文件存储配置
type StorageConfig struct {
	Driver       string    `mapstructure:"driver"` // local | oss
	LocalRoot    string    `mapstructure:"local_root"`
	MaxFileBytes int64     `mapstructure:"max_file_bytes"`
	OSS          OSSConfig `mapstructure:"oss"`
}

// OSSConfig 阿里云 OSS 配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

// PaymentConfig 支付网关配置
type PaymentConfig struct {
	Provider string         `mapstructure:"provider"` // stripe | midtrans
	Currency string         `mapstructure:"currency"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Midtrans MidtransConfig `mapstructure:"midtrans"`
}

// StripeConfig Stripe 配置, BaseURL 仅用于指向测试桩
type StripeConfig struct {
	SecretKey  string `mapstructure:"secret_key"`
	BaseURL    string `mapstructure:"base_url"`
	MaxRetries int64  `mapstructure:"max_retries"`
}

// MidtransConfig Midtrans 配置
type MidtransConfig struct {
	ServerKey   string        `mapstructure:"server_key"`
	Production  bool          `mapstructure:"production"`
	MetadataTTL time.Duration `mapstructure:"metadata_ttl"`
}

// HousekeepingConfig 后台清理任务配置
type HousekeepingConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Schedule      string        `mapstructure:"schedule"`
	OrphanFileAge time.Duration `mapstructure:"orphan_file_age"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load 从配置文件和环境变量加载配置
// 优先级: 环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("VRS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// 无配置文件时仅使用默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:5000")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "vr_school")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Kolkata")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)
	v.SetDefault("db.log_sql", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie_name", "sid")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.same_site", "Lax")
	v.SetDefault("session.touch_interval", "1m")

	v.SetDefault("file_link.secret", "")
	v.SetDefault("file_link.ttl", "15m")

	v.SetDefault("security.body_limit_bytes", 6<<20)
	v.SetDefault("security.login_rate_limit", 10)
	v.SetDefault("security.login_rate_window", "1m")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_root", "uploads")
	v.SetDefault("storage.max_file_bytes", 5<<20)

	v.SetDefault("payment.provider", "stripe")
	v.SetDefault("payment.currency", "inr")
	v.SetDefault("payment.stripe.max_retries", 2)
	v.SetDefault("payment.midtrans.metadata_ttl", "72h")

	v.SetDefault("housekeeping.enabled", true)
	v.SetDefault("housekeeping.schedule", "@every 30m")
	v.SetDefault("housekeeping.orphan_file_age", "1h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
}

// Validate 校验配置的合法性与一致性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	if c.Server.Mode == "release" && c.Database.Password == "" {
		return fmt.Errorf("config: db.password is required in release mode")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session.ttl must be positive")
	}
	if len(c.FileLink.Secret) < 16 {
		return fmt.Errorf("config: file_link.secret must be at least 16 characters")
	}
	if c.Storage.MaxFileBytes <= 0 {
		return fmt.Errorf("config: storage.max_file_bytes must be positive")
	}

	switch c.Storage.Driver {
	case "local":
		if c.Storage.LocalRoot == "" {
			return fmt.Errorf("config: storage.local_root is required for the local driver")
		}
	case "oss":
		if c.Storage.OSS.Endpoint == "" || c.Storage.OSS.Bucket == "" {
			return fmt.Errorf("config: storage.oss.endpoint and storage.oss.bucket are required for the oss driver")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}

	if c.Payment.Currency == "" {
		return fmt.Errorf("config: payment.currency is required")
	}
	switch c.Payment.Provider {
	case "stripe":
		if c.Payment.Stripe.SecretKey == "" {
			return fmt.Errorf("config: payment.stripe.secret_key is required")
		}
	case "midtrans":
		if c.Payment.Midtrans.ServerKey == "" {
			return fmt.Errorf("config: payment.midtrans.server_key is required")
		}
		// midtrans 的 intent 元数据存放在 redis
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required for the midtrans provider")
		}
	default:
		return fmt.Errorf("config: unknown payment.provider %q", c.Payment.Provider)
	}
	return nil
}
