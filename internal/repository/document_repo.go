package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "vr-school/backend/pkg/errors"

	"vr-school/backend/internal/model"
)

// DocumentRepository 认证文档数据访问接口
type DocumentRepository interface {
	// Upsert 插入 doc, 或替换同 (user, type) 的已有记录
	// doc.DocumentID 被设置为最终保留记录的 ID
	Upsert(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	GetByUserAndType(ctx context.Context, userID string, docType model.DocumentType) (*model.Document, error)
	ListByUser(ctx context.Context, userID string) ([]model.Document, error)
	ListByStatus(ctx context.Context, status model.DocumentStatus, offset, limit int) ([]model.Document, int64, error)
	// Review 将文档移出 pending, 记录已非 pending 时返回 ErrOptimisticLock
	Review(ctx context.Context, id string, status model.DocumentStatus, feedback, reviewerID string, at time.Time) error
	// ExistingStorageKeys 返回 keys 中仍被记录引用的子集
	ExistingStorageKeys(ctx context.Context, keys []string) (map[string]bool, error)
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo 创建 DocumentRepository 实例
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Upsert(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "doc_type"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"role":         doc.Role,
				"storage_key":  doc.StorageKey,
				"content_type": doc.ContentType,
				"size_bytes":   doc.SizeBytes,
				"status":       doc.Status,
				"feedback":     doc.Feedback,
				"uploaded_at":  doc.UploadedAt,
				"reviewed_at":  nil,
				"reviewed_by":  nil,
				"updated_at":   gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(doc).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where("document_id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) GetByUserAndType(ctx context.Context, userID string, docType model.DocumentType) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND doc_type = ?", userID, docType).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListByUser(ctx context.Context, userID string) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) ListByStatus(ctx context.Context, status model.DocumentStatus, offset, limit int) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Document{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("uploaded_at ASC").
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (r *documentRepo) Review(ctx context.Context, id string, status model.DocumentStatus, feedback, reviewerID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("document_id = ? AND status = ?", id, model.DocumentPending).
		Updates(map[string]interface{}{
			"status":      status,
			"feedback":    feedback,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *documentRepo) ExistingStorageKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	found := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return found, nil
	}
	var rows []string
	err := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("storage_key IN ?", keys).
		Pluck("storage_key", &rows).Error
	if err != nil {
		return nil, err
	}
	for _, k := range rows {
		found[k] = true
	}
	return found, nil
}
