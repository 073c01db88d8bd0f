package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"vr-school/backend/config"
	"vr-school/backend/internal/repository"
	"vr-school/backend/pkg/storage"
)

// keyBatch 单次 ExistingStorageKeys 查询的键数量上限
const keyBatch = 500

// HousekeepingReport 单次清理结果
type HousekeepingReport struct {
	ExpiredSessions int64
	OrphanFiles     int
}

// Housekeeper 请求路径之外的定时清理:
//   - 删除过期登录会话
//   - 删除没有文档记录引用且超过宽限期的存储文件
//     (上传崩溃或清理失败遗留)
type Housekeeper interface {
	RunOnce(ctx context.Context) (*HousekeepingReport, error)
	Start() error
	Stop()
}

type housekeeper struct {
	cfg      *config.HousekeepingConfig
	repo     *repository.Repository
	sessions SessionStore
	store    storage.Storage
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// NewHousekeeper 创建 Housekeeper 实例
func NewHousekeeper(
	cfg *config.HousekeepingConfig,
	repo *repository.Repository,
	sessions SessionStore,
	store storage.Storage,
	logger *zap.Logger,
) Housekeeper {
	cl := cronLogger{logger.Sugar()}
	return &housekeeper{
		cfg:      cfg,
		repo:     repo,
		sessions: sessions,
		store:    store,
		logger:   logger,
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		now:      time.Now,
	}
}

// Start 定时执行 RunOnce, 配置禁用时不做任何调度
func (h *housekeeper) Start() error {
	if !h.cfg.Enabled {
		h.logger.Info("housekeeping disabled")
		return nil
	}
	_, err := h.cron.AddFunc(h.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		report, err := h.RunOnce(ctx)
		if err != nil {
			h.logger.Error("housekeeping failed", zap.Error(err))
			return
		}
		h.logger.Info("housekeeping done",
			zap.Int64("expired_sessions", report.ExpiredSessions),
			zap.Int("orphan_files", report.OrphanFiles),
		)
	})
	if err != nil {
		return err
	}
	h.cron.Start()
	h.logger.Info("housekeeping scheduled", zap.String("schedule", h.cfg.Schedule))
	return nil
}

// Stop 等待正在执行的清理结束
func (h *housekeeper) Stop() {
	<-h.cron.Stop().Done()
}

func (h *housekeeper) RunOnce(ctx context.Context) (*HousekeepingReport, error) {
	report := &HousekeepingReport{}

	purged, err := h.sessions.PurgeExpired(ctx)
	if err != nil {
		return report, err
	}
	report.ExpiredSessions = purged

	removed, err := h.reapOrphanFiles(ctx)
	report.OrphanFiles = removed
	return report, err
}

func (h *housekeeper) reapOrphanFiles(ctx context.Context) (int, error) {
	objects, err := h.store.List(ctx, "")
	if err != nil {
		return 0, err
	}

	cutoff := h.now().Add(-h.cfg.OrphanFileAge)
	var candidates []string
	for _, obj := range objects {
		// 较新的文件可能属于记录尚未写入的上传
		if obj.LastModified.After(cutoff) {
			continue
		}
		candidates = append(candidates, obj.Key)
	}

	removed := 0
	for start := 0; start < len(candidates); start += keyBatch {
		end := start + keyBatch
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		referenced, err := h.repo.Document.ExistingStorageKeys(ctx, batch)
		if err != nil {
			return removed, err
		}
		for _, key := range batch {
			if referenced[key] {
				continue
			}
			if err := h.store.Delete(ctx, key); err != nil {
				h.logger.Warn("delete orphan file failed", zap.String("key", key), zap.Error(err))
				continue
			}
			h.logger.Info("orphan file deleted", zap.String("key", key))
			removed++
		}
	}
	return removed, nil
}

// cronLogger 将 cron 自身日志转发到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
