package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vr-school/backend/config"
)

var (
	ErrTokenExpired = errors.New("file link has expired")
	ErrTokenInvalid = errors.New("file link is invalid")
)

const (
	issuer        = "vr-school"
	audienceFiles = "document-file"
)

// FileClaims 授权某个查看者读取某个文档
type FileClaims struct {
	DocumentID string `json:"doc"`
	ViewerID   string `json:"sub_user"`
	jwtv5.RegisteredClaims
}

// Manager 文档短期链接的签发与校验
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager 创建链接签名器
func NewManager(cfg *config.FileLinkConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
	}
}

// GenerateFileToken 为 viewerID 签发读取 documentID 的链接
func (m *Manager) GenerateFileToken(documentID, viewerID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := FileClaims{
		DocumentID: documentID,
		ViewerID:   viewerID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
			Issuer:    issuer,
			Audience:  jwtv5.ClaimStrings{audienceFiles},
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseFileToken 校验 tokenString 并返回 claims
func (m *Manager) ParseFileToken(tokenString string) (*FileClaims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &FileClaims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer), jwtv5.WithAudience(audienceFiles))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*FileClaims)
	if !ok || !token.Valid || claims.DocumentID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
