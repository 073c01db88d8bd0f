package handler

import (
	"go.uber.org/zap"

	"vr-school/backend/config"
	"vr-school/backend/internal/service"
)

// Handler 聚合所有 HTTP 处理器
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Document  *DocumentHandler
	Payment   *PaymentHandler
	Catalog   *CatalogHandler
	Video     *VideoHandler
	VRSession *VRSessionHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth, cfg.Session),
		User:      NewUserHandler(svc.Enrollment, svc.Catalog, logger),
		Document:  NewDocumentHandler(svc.Document, logger),
		Payment:   NewPaymentHandler(svc.Enrollment),
		Catalog:   NewCatalogHandler(svc.Catalog),
		Video:     NewVideoHandler(svc.Video),
		VRSession: NewVRSessionHandler(svc.VRSession),
		Export:    NewExportHandler(svc.Export),
	}
}
