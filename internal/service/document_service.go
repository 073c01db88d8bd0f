package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vr-school/backend/config"
	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/repository"
	pkgerrors "vr-school/backend/pkg/errors"
	"vr-school/backend/pkg/jwt"
	"vr-school/backend/pkg/storage"
)

// acceptedMIME 允许上传的内容类型 (按内容嗅探)
var acceptedMIME = []string{"application/pdf", "image/jpeg", "image/png"}

// UploadedFile 上传的文件部分, nil 表示请求未携带文件
type UploadedFile struct {
	Body     io.Reader
	Filename string
	// Size 客户端声明的大小, 仍会实际测量
	Size int64
}

// FileContent 文件接口的输出: 重定向到预签名地址, 或直接流式输出
type FileContent struct {
	RedirectURL string
	Body        io.ReadCloser
	ContentType string
	Size        int64
	Name        string
}

// DocumentService 认证文档业务接口
type DocumentService interface {
	List(ctx context.Context, caller model.Identity) ([]dto.DocumentResponse, error)
	Upload(ctx context.Context, caller model.Identity, docType string, file *UploadedFile) (*dto.DocumentResponse, error)
	// OpenFile 解析文件签名链接
	OpenFile(ctx context.Context, token string) (*FileContent, error)
	ListForReview(ctx context.Context, caller model.Identity, query *dto.DocumentListQuery) ([]dto.DocumentResponse, int64, error)
	Review(ctx context.Context, reviewer model.Identity, documentID string, req *dto.ReviewDocumentRequest) (*dto.DocumentResponse, error)
}

type documentService struct {
	repo     *repository.Repository
	store    storage.Storage
	links    *jwt.Manager
	baseURL  string
	maxBytes int64
	linkTTL  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDocumentService 创建 DocumentService 实例
func NewDocumentService(
	cfg *config.Config,
	repo *repository.Repository,
	store storage.Storage,
	links *jwt.Manager,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		repo:     repo,
		store:    store,
		links:    links,
		baseURL:  cfg.Server.BaseURL,
		maxBytes: cfg.Storage.MaxFileBytes,
		linkTTL:  cfg.FileLink.TTL,
		logger:   logger,
		now:      time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// List
// ═══════════════════════════════════════════════════════════

func (s *documentService) List(ctx context.Context, caller model.Identity) ([]dto.DocumentResponse, error) {
	docs, err := s.repo.Document.ListByUser(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("list documents failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	return s.toResponses(docs, caller.UserID)
}

// ═══════════════════════════════════════════════════════════
// Upload
// ═══════════════════════════════════════════════════════════
//
// 校验顺序固定: 角色允许的类型、文件是否存在、大小、内容
// 先写文件后写元数据; 元数据写入失败时删除新文件, 替换成功后删除旧文件

func (s *documentService) Upload(ctx context.Context, caller model.Identity, docType string, file *UploadedFile) (*dto.DocumentResponse, error) {
	t := model.DocumentType(docType)
	if !model.IsDocumentTypeAllowed(caller.Role, t) {
		return nil, ErrInvalidDocumentType
	}
	if file == nil || file.Body == nil {
		return nil, ErrMissingFile
	}
	if file.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	// 以实际测量的大小为准
	data, err := io.ReadAll(io.LimitReader(file.Body, s.maxBytes+1))
	if err != nil {
		s.logger.Warn("read upload failed", zap.Error(err))
		return nil, ErrMissingFile.Wrap(err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrMissingFile
	}

	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), acceptedMIME...) {
		return nil, ErrUnsupportedFile
	}

	// 1. 写文件
	key := path.Join(caller.Role.String(), uuid.NewString()+mime.Extension())
	if err := s.store.Put(ctx, key, bytes.NewReader(data), mime.String()); err != nil {
		s.logger.Error("store document file failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	// 2. 写元数据
	previous, err := s.repo.Document.GetByUserAndType(ctx, caller.UserID, t)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.removeFile(ctx, key)
		s.logger.Error("load previous document failed", zap.Error(err))
		return nil, err
	}

	doc := &model.Document{
		UserID:      caller.UserID,
		Type:        t,
		Role:        caller.Role,
		StorageKey:  key,
		ContentType: mime.String(),
		SizeBytes:   int64(len(data)),
		Status:      model.DocumentPending,
		Feedback:    "",
		UploadedAt:  s.now(),
	}
	if err := s.repo.Document.Upsert(ctx, doc); err != nil {
		s.removeFile(ctx, key)
		s.logger.Error("save document failed",
			zap.String("user_id", caller.UserID),
			zap.String("type", docType),
			zap.Error(err),
		)
		return nil, err
	}

	// 3. 删除被替换的旧文件
	if previous != nil && previous.StorageKey != key {
		s.removeFile(ctx, previous.StorageKey)
	}

	s.logger.Info("document uploaded",
		zap.String("user_id", caller.UserID),
		zap.String("type", docType),
		zap.Int("size", len(data)),
	)

	resp, err := s.toResponse(doc, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// removeFile 尽力删除已存储文件, 残留由孤儿文件清理任务处理
func (s *documentService) removeFile(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("delete document file failed", zap.String("key", key), zap.Error(err))
	}
}

// ═══════════════════════════════════════════════════════════
// OpenFile
// ═══════════════════════════════════════════════════════════

func (s *documentService) OpenFile(ctx context.Context, token string) (*FileContent, error) {
	claims, err := s.links.ParseFileToken(token)
	if err != nil {
		return nil, ErrFileLinkInvalid
	}

	doc, err := s.repo.Document.GetByID(ctx, claims.DocumentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	// 链接只签发给本人和审核人, 此处复查以防查看者已失去角色
	if doc.UserID != claims.ViewerID {
		viewer, err := s.repo.User.GetByID(ctx, claims.ViewerID)
		if err != nil || viewer.Role != model.RoleAdmin {
			return nil, ErrFileLinkInvalid
		}
	}

	name := string(doc.Type) + path.Ext(doc.StorageKey)

	signed, err := s.store.SignedURL(ctx, doc.StorageKey, s.linkTTL)
	if err == nil {
		return &FileContent{RedirectURL: signed, ContentType: doc.ContentType, Name: name}, nil
	}
	if !errors.Is(err, storage.ErrNotSupported) {
		s.logger.Warn("sign storage url failed, streaming instead", zap.Error(err))
	}

	body, err := s.store.Open(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("document file missing", zap.String("key", doc.StorageKey))
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &FileContent{
		Body:        body,
		ContentType: doc.ContentType,
		Size:        doc.SizeBytes,
		Name:        name,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// Review queue
// ═══════════════════════════════════════════════════════════

func (s *documentService) ListForReview(ctx context.Context, caller model.Identity, query *dto.DocumentListQuery) ([]dto.DocumentResponse, int64, error) {
	status := model.DocumentPending
	page, size := 1, 20
	if query != nil {
		if query.Status != "" {
			status = model.DocumentStatus(query.Status)
		}
		if query.Page > 0 {
			page = query.Page
		}
		if query.PageSize > 0 {
			size = query.PageSize
		}
	}

	docs, total, err := s.repo.Document.ListByStatus(ctx, status, (page-1)*size, size)
	if err != nil {
		s.logger.Error("list review queue failed", zap.Error(err))
		return nil, 0, err
	}

	items, err := s.toResponses(docs, caller.UserID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *documentService) Review(ctx context.Context, reviewer model.Identity, documentID string, req *dto.ReviewDocumentRequest) (*dto.DocumentResponse, error) {
	doc, err := s.repo.Document.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	next := model.DocumentStatus(req.Status)
	if !doc.Status.CanReviewTo(next) {
		return nil, ErrDocumentAlreadyReviewed
	}

	at := s.now()
	if err := s.repo.Document.Review(ctx, doc.DocumentID, next, req.Feedback, reviewer.UserID, at); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrDocumentAlreadyReviewed
		}
		s.logger.Error("review document failed", zap.String("document_id", documentID), zap.Error(err))
		return nil, err
	}

	doc.Status = next
	doc.Feedback = req.Feedback
	doc.ReviewedAt = &at
	doc.ReviewedBy = &reviewer.UserID

	s.logger.Info("document reviewed",
		zap.String("document_id", documentID),
		zap.String("status", string(next)),
		zap.String("reviewer_id", reviewer.UserID),
	)

	resp, err := s.toResponse(doc, reviewer.UserID)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ── 内部辅助方法 ──

func (s *documentService) toResponses(docs []model.Document, viewerID string) ([]dto.DocumentResponse, error) {
	items := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp, err := s.toResponse(&docs[i], viewerID)
		if err != nil {
			return nil, err
		}
		items = append(items, resp)
	}
	return items, nil
}

func (s *documentService) toResponse(doc *model.Document, viewerID string) (dto.DocumentResponse, error) {
	link, err := s.fileURL(doc.DocumentID, viewerID)
	if err != nil {
		s.logger.Error("sign document link failed", zap.String("document_id", doc.DocumentID), zap.Error(err))
		return dto.DocumentResponse{}, err
	}
	return dto.DocumentResponse{
		ID:          doc.DocumentID,
		Type:        string(doc.Type),
		Status:      string(doc.Status),
		URL:         link,
		Feedback:    doc.Feedback,
		ContentType: doc.ContentType,
		Size:        doc.SizeBytes,
		UploadedAt:  doc.UploadedAt,
		ReviewedAt:  doc.ReviewedAt,
	}, nil
}

func (s *documentService) fileURL(documentID, viewerID string) (string, error) {
	token, _, err := s.links.GenerateFileToken(documentID, viewerID)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/api/documents/file?token=" + url.QueryEscape(token), nil
}
