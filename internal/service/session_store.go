package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vr-school/backend/config"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/repository"
	"vr-school/backend/pkg/redis"
)

// ClientInfo 登录来源信息
type ClientInfo struct {
	UserAgent string
	IP        string
}

// IssuedSession 新创建的登录会话
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}

// SessionStore 服务端不透明登录会话存储
//
// sessions 表为权威数据, 配置 Redis 时缓存 token -> user 查询,
// Redis 任何故障都回落到数据表
// 滑动过期: 每次使用将过期时间推后 TTL, 每个 touch 间隔内至多写一次
type SessionStore interface {
	Create(ctx context.Context, userID string, client ClientInfo) (*IssuedSession, error)
	// Resolve 返回 token 所属用户, token 未知或已过期时返回 ErrNotAuthenticated
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type sessionStore struct {
	repo          *repository.Repository
	rdb           *redis.Client
	ttl           time.Duration
	touchInterval time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewSessionStore 创建 SessionStore 实例, rdb 可为 nil
func NewSessionStore(cfg *config.SessionConfig, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) SessionStore {
	return &sessionStore{
		repo:          repo,
		rdb:           rdb,
		ttl:           cfg.TTL,
		touchInterval: cfg.TouchInterval,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *sessionStore) Create(ctx context.Context, userID string, client ClientInfo) (*IssuedSession, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := &model.LoginSession{
		TokenHash:  hashToken(token),
		UserID:     userID,
		ExpiresAt:  now.Add(s.ttl),
		LastSeenAt: now,
		UserAgent:  truncate(client.UserAgent, 255),
		ClientIP:   truncate(client.IP, 64),
		CreatedAt:  now,
	}
	if err := s.repo.Session.Create(ctx, sess); err != nil {
		s.logger.Error("create session failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.cache(ctx, sess.TokenHash, userID, s.ttl)

	return &IssuedSession{Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *sessionStore) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}
	hash := hashToken(token)

	// ── 缓存 ──
	if s.rdb != nil {
		userID, err := s.rdb.SessionUser(ctx, hash)
		switch {
		case err == nil:
			s.touchCached(ctx, hash, userID)
			return userID, nil
		case !errors.Is(err, redis.ErrMiss):
			s.logger.Warn("session cache read failed, using database", zap.Error(err))
		}
	}

	// ── 数据表 ──
	now := s.now()
	sess, err := s.repo.Session.GetActive(ctx, hash, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotAuthenticated
		}
		s.logger.Error("load session failed", zap.Error(err))
		return "", err
	}
	expiresAt := sess.ExpiresAt
	if now.Sub(sess.LastSeenAt) >= s.touchInterval {
		if err := s.repo.Session.Touch(ctx, hash, now.Add(s.ttl), now); err != nil {
			s.logger.Warn("extend session failed", zap.Error(err))
		} else {
			expiresAt = now.Add(s.ttl)
		}
	}
	// 缓存有效期不超过数据表记录
	s.cache(ctx, hash, sess.UserID, expiresAt.Sub(now))

	return sess.UserID, nil
}

// touchCached 续期缓存中的会话, 由缓存剩余有效期推断上次续期时间
func (s *sessionStore) touchCached(ctx context.Context, hash, userID string) {
	remaining, err := s.rdb.SessionTTL(ctx, hash)
	if err != nil {
		return
	}
	if s.ttl-remaining < s.touchInterval {
		return
	}
	now := s.now()
	if err := s.repo.Session.Touch(ctx, hash, now.Add(s.ttl), now); err != nil {
		s.logger.Warn("extend session failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if err := s.rdb.TouchSession(ctx, hash, s.ttl); err != nil {
		s.logger.Warn("extend cached session failed", zap.Error(err))
	}
}

func (s *sessionStore) cache(ctx context.Context, hash, userID string, ttl time.Duration) {
	if s.rdb == nil || ttl <= 0 {
		return
	}
	if err := s.rdb.CacheSession(ctx, hash, userID, ttl); err != nil {
		s.logger.Warn("cache session failed", zap.Error(err))
	}
}

func (s *sessionStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	hash := hashToken(token)
	if s.rdb != nil {
		if err := s.rdb.DropSession(ctx, hash); err != nil {
			s.logger.Warn("drop cached session failed", zap.Error(err))
		}
	}
	if err := s.repo.Session.Delete(ctx, hash); err != nil {
		s.logger.Error("delete session failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *sessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.Session.DeleteExpired(ctx, s.now())
}

// ── 内部辅助方法 ──

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
