package service

import (
	"go.uber.org/zap"

	"vr-school/backend/config"
	"vr-school/backend/internal/repository"
	"vr-school/backend/pkg/gateway"
	"vr-school/backend/pkg/jwt"
	"vr-school/backend/pkg/redis"
	"vr-school/backend/pkg/storage"
)

// Service 聚合所有业务服务
type Service struct {
	Sessions    SessionStore
	Auth        AuthService
	Document    DocumentService
	Enrollment  EnrollmentService
	Catalog     CatalogService
	Video       VideoService
	VRSession   VRSessionService
	Export      ExportService
	Housekeeper Housekeeper
}

// NewService 创建聚合服务, 禁用 Redis 时 rdb 为 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	store storage.Storage,
	gw gateway.Gateway,
	links *jwt.Manager,
	logger *zap.Logger,
) *Service {
	sessions := NewSessionStore(&cfg.Session, repo, rdb, logger)
	return &Service{
		Sessions:    sessions,
		Auth:        NewAuthService(repo, sessions, logger),
		Document:    NewDocumentService(cfg, repo, store, links, logger),
		Enrollment:  NewEnrollmentService(repo, gw, cfg.Payment.Currency, logger),
		Catalog:     NewCatalogService(repo, logger),
		Video:       NewVideoService(repo, logger),
		VRSession:   NewVRSessionService(repo, logger),
		Export:      NewExportService(repo, logger),
		Housekeeper: NewHousekeeper(&cfg.Housekeeping, repo, sessions, store, logger),
	}
}
