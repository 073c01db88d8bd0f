package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vr-school/backend/config"
	"vr-school/backend/internal/api/handler"
	"vr-school/backend/internal/api/middleware"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/redis"
)

// PingFunc 检查后端依赖是否可达
type PingFunc func(ctx context.Context) error

// Setup 构建 gin 引擎, rdb 可为 nil, 测试中 dbPing 可为 nil
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	authSvc service.AuthService,
	rdb *redis.Client,
	dbPing PingFunc,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	handler.RegisterValidators()

	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.MaxMultipartMemory = cfg.Storage.MaxFileBytes

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Security.BodyLimitBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
		code := http.StatusOK
		if dbPing != nil {
			if err := dbPing(ctx); err != nil {
				status["status"], status["database"] = "degraded", "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				status["redis"] = "unreachable"
			}
		}
		c.JSON(code, status)
	})

	loginLimit := middleware.RateLimit(rdb, cfg.Security.LoginRateLimit, cfg.Security.LoginRateWindow, logger)
	session := middleware.SessionAuth(authSvc, cfg.Session.CookieName)

	api := r.Group("/api")
	{
		// ── 公开接口 ──
		api.POST("/register", loginLimit, h.Auth.Register)
		api.POST("/login", loginLimit, h.Auth.Login)
		api.POST("/logout", h.Auth.Logout)

		api.GET("/branches", h.Catalog.ListBranches)
		api.GET("/branches/:id", h.Catalog.GetBranch)
		api.GET("/branches/:id/equipment", h.Catalog.ListEquipment)
		api.GET("/branches/:id/specializations", h.Catalog.ListSpecializations)

		// 签名链接, token 即凭证
		api.GET("/documents/file", h.Document.File)

		// ── 需登录 ──
		authorized := api.Group("")
		authorized.Use(session)
		{
			authorized.GET("/user", h.User.GetCurrentUser)
			authorized.GET("/user/payments", h.User.ListPayments)
			authorized.GET("/user/branches", h.User.ListBranches)

			authorized.GET("/documents", h.Document.List)
			authorized.POST("/documents/upload", h.Document.Upload)

			authorized.POST("/create-payment-intent", h.Payment.CreateIntent)
			authorized.POST("/payment-success", h.Payment.Success)

			authorized.GET("/branches/:id/videos", h.Video.ListBranchVideos)
			authorized.POST("/videos", h.Video.Create)
			authorized.GET("/teacher/videos", h.Video.ListOwn)

			vr := authorized.Group("/vr-sessions")
			{
				vr.POST("", h.VRSession.Start)
				vr.GET("", h.VRSession.List)
				vr.GET("/calendar.ics", h.VRSession.Calendar)
				vr.PUT("/:id", h.VRSession.UpdateProgress)
			}

			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth(model.RoleAdmin))
			{
				admin.GET("/documents", h.Document.ListForReview)
				admin.PUT("/documents/:id/review", h.Document.Review)

				admin.POST("/branches", h.Catalog.CreateBranch)
				admin.POST("/branches/:id/equipment", h.Catalog.AddEquipment)
				admin.POST("/branches/:id/specializations", h.Catalog.AddSpecialization)

				admin.GET("/payments/export", h.Export.ExportPayments)
			}
		}
	}

	return r
}
