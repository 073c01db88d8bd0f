package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vr-school/backend/config"
	"vr-school/backend/internal/api/handler"
	"vr-school/backend/internal/api/router"
	"vr-school/backend/internal/repository"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/database"
	"vr-school/backend/pkg/gateway"
	"vr-school/backend/pkg/jwt"
	applogger "vr-school/backend/pkg/logger"
	"vr-school/backend/pkg/redis"
	"vr-school/backend/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config/config.yaml)")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("payment_provider", cfg.Payment.Provider),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations failed", zap.Error(err))
	}

	// 4. Redis (可选): 不可用时会话回落到数据库, 跳过限流
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
			rdb = nil
		}
	}

	// 5. 文件存储、支付网关、文件签名链接
	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		logger.Fatal("init storage failed", zap.Error(err))
	}
	gw, err := gateway.New(&cfg.Payment, rdb, logger)
	if err != nil {
		logger.Fatal("init payment gateway failed", zap.Error(err))
	}
	links := jwt.NewManager(&cfg.FileLink)

	// 6. Repository -> Service -> Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, rdb, store, gw, links, logger)
	h := handler.NewHandler(cfg, svc, logger)

	// 7. 路由
	engine := router.Setup(cfg, h, svc.Auth, rdb, sqlDB.PingContext, logger)

	// 8. 后台任务
	if err := svc.Housekeeper.Start(); err != nil {
		logger.Fatal("start housekeeping failed", zap.Error(err))
	}

	// 9. HTTP 服务 + 优雅关闭
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	svc.Housekeeper.Stop()

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}
