// Package storage 上传文档文件的存储
//
// 键为以斜杠分隔的相对路径, 如 "student/<uuid>.pdf"。本地驱动存放在根目录下,
// OSS 驱动存放在可选的 bucket 前缀下
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"vr-school/backend/config"
)

var (
	ErrNotFound     = errors.New("storage: object not found")
	ErrInvalidKey   = errors.New("storage: invalid object key")
	ErrNotSupported = errors.New("storage: operation not supported by driver")
)

// Object 已存储文件的描述
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage 各存储驱动实现的接口
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	// SignedURL 返回有时效的直链, 只能经 API 流式读取的驱动返回 ErrNotSupported
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Driver() string
}

// New 按配置创建存储驱动
func New(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "local":
		return NewLocal(cfg.LocalRoot, logger)
	case "oss":
		return NewOSS(&cfg.OSS, logger)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// CleanKey 校验相对键并返回规范形式
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
