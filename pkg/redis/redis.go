package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vr-school/backend/config"
)

// ErrMiss 键不存在
var ErrMiss = errors.New("redis: key not found")

// Client 封装 go-redis, 用于会话缓存、限流和网关 intent 元数据
// 调用方以 nil *Client 表示禁用 Redis
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 建立连接并 Ping
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 登录会话缓存 ──

const sessionPrefix = "session:"

// CacheSession 缓存 tokenHash -> userID, 有效期 ttl
func (c *Client) CacheSession(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, sessionPrefix+tokenHash, userID, ttl).Err()
}

// SessionUser 返回缓存的用户 ID, 不存在时返回 ErrMiss
func (c *Client) SessionUser(ctx context.Context, tokenHash string) (string, error) {
	userID, err := c.rdb.Get(ctx, sessionPrefix+tokenHash).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrMiss
	}
	return userID, err
}

// TouchSession 将缓存有效期重置为 ttl
func (c *Client) TouchSession(ctx context.Context, tokenHash string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, sessionPrefix+tokenHash, ttl).Err()
}

// SessionTTL 返回缓存剩余有效期, 不存在时返回 ErrMiss
func (c *Client) SessionTTL(ctx context.Context, tokenHash string) (time.Duration, error) {
	ttl, err := c.rdb.TTL(ctx, sessionPrefix+tokenHash).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, ErrMiss
	}
	return ttl, nil
}

// DropSession 删除缓存
func (c *Client) DropSession(ctx context.Context, tokenHash string) error {
	return c.rdb.Del(ctx, sessionPrefix+tokenHash).Err()
}

// ── 限流 ──

// CheckRateLimit 固定窗口计数, 返回本次请求是否在限额内
// 窗口从第一次请求开始
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// ── JSON 值 ──

// SetJSON 以 JSON 存储 v
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// GetJSON 读取并解码到 v, 不存在时返回 ErrMiss
func (c *Client) GetJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Ping 检查连接, 供健康检查使用
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭连接池
func (c *Client) Close() error {
	return c.rdb.Close()
}
