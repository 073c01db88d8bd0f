package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"

	"vr-school/backend/config"
)

// OSS 阿里云 OSS bucket 存储
type OSS struct {
	bucket *oss.Bucket
	prefix string
	logger *zap.Logger
}

// NewOSS 连接配置的 bucket
func NewOSS(cfg *config.OSSConfig, logger *zap.Logger) (*OSS, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("storage: oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: oss bucket %s: %w", cfg.Bucket, err)
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	logger.Info("oss storage ready",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.String("prefix", prefix),
	)
	return &OSS{bucket: bucket, prefix: prefix, logger: logger}, nil
}

func (o *OSS) objectKey(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return o.prefix + cleaned, nil
}

// Put 上传 r 到 key
func (o *OSS) Put(_ context.Context, key string, r io.Reader, contentType string) error {
	objectKey, err := o.objectKey(key)
	if err != nil {
		return err
	}
	if err := o.bucket.PutObject(objectKey, r, oss.ContentType(contentType)); err != nil {
		return fmt.Errorf("storage: oss put %s: %w", key, err)
	}
	return nil
}

// Open 下载 key
func (o *OSS) Open(_ context.Context, key string) (io.ReadCloser, error) {
	objectKey, err := o.objectKey(key)
	if err != nil {
		return nil, err
	}
	body, err := o.bucket.GetObject(objectKey)
	if err != nil {
		if isOSSNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: oss get %s: %w", key, err)
	}
	return body, nil
}

// Delete 删除 key, OSS 对不存在的 key 返回成功
func (o *OSS) Delete(_ context.Context, key string) error {
	objectKey, err := o.objectKey(key)
	if err != nil {
		return err
	}
	if err := o.bucket.DeleteObject(objectKey); err != nil {
		return fmt.Errorf("storage: oss delete %s: %w", key, err)
	}
	return nil
}

// List 分页列出 prefix 下的所有对象
func (o *OSS) List(_ context.Context, prefix string) ([]Object, error) {
	var (
		objects []Object
		marker  string
	)
	for {
		res, err := o.bucket.ListObjects(oss.Prefix(o.prefix+prefix), oss.Marker(marker), oss.MaxKeys(1000))
		if err != nil {
			return nil, fmt.Errorf("storage: oss list: %w", err)
		}
		for _, obj := range res.Objects {
			objects = append(objects, Object{
				Key:          strings.TrimPrefix(obj.Key, o.prefix),
				Size:         obj.Size,
				LastModified: obj.LastModified,
			})
		}
		if !res.IsTruncated {
			return objects, nil
		}
		marker = res.NextMarker
	}
}

// SignedURL 预签名有效期为 ttl 的 GET 链接
func (o *OSS) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	objectKey, err := o.objectKey(key)
	if err != nil {
		return "", err
	}
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return o.bucket.SignURL(objectKey, oss.HTTPGet, secs)
}

// Driver 驱动名称
func (o *OSS) Driver() string { return "oss" }

func isOSSNotFound(err error) bool {
	var svcErr oss.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode == http.StatusNotFound || svcErr.Code == "NoSuchKey"
	}
	return false
}
