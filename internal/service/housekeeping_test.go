package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"vr-school/backend/config"
	"vr-school/backend/internal/model"
)

func setupTestHousekeeper() (*housekeeper, *mockRepos, *memStorage) {
	repo, mocks := newMockRepository()
	store := newMemStorage()
	logger := zap.NewNop()
	sessions := NewSessionStore(testSessionConfig(), repo, nil, logger)
	cfg := &config.HousekeepingConfig{Enabled: true, Schedule: "@every 30m", OrphanFileAge: time.Hour}
	h := NewHousekeeper(cfg, repo, sessions, store, logger).(*housekeeper)
	return h, mocks, store
}

func TestHousekeeping_ReapsOldOrphansOnly(t *testing.T) {
	h, mocks, store := setupTestHousekeeper()
	now := time.Now()
	old := now.Add(-2 * time.Hour)

	store.objects["student/referenced.pdf"] = &memObject{lastModified: old}
	store.objects["student/orphan.pdf"] = &memObject{lastModified: old}
	store.objects["student/in-flight.pdf"] = &memObject{lastModified: now}
	mocks.document.docs["doc-1"] = &model.Document{DocumentID: "doc-1", StorageKey: "student/referenced.pdf"}

	mocks.session.sessions["expired"] = &model.LoginSession{TokenHash: "expired", ExpiresAt: now.Add(-time.Minute)}
	mocks.session.sessions["live"] = &model.LoginSession{TokenHash: "live", ExpiresAt: now.Add(time.Hour)}

	report, err := h.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if report.OrphanFiles != 1 || report.ExpiredSessions != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if _, ok := store.objects["student/orphan.pdf"]; ok {
		t.Error("orphan should be deleted")
	}
	for _, key := range []string{"student/referenced.pdf", "student/in-flight.pdf"} {
		if _, ok := store.objects[key]; !ok {
			t.Errorf("%s must be kept", key)
		}
	}
	if _, ok := mocks.session.sessions["live"]; !ok {
		t.Error("live session must be kept")
	}
}

func TestHousekeeping_StartStop(t *testing.T) {
	h, _, _ := setupTestHousekeeper()
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.Stop()

	h2, _, _ := setupTestHousekeeper()
	h2.cfg.Schedule = "not a schedule"
	if err := h2.Start(); err == nil {
		t.Error("invalid schedule should fail to start")
	}
}
