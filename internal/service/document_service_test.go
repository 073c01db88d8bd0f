package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"vr-school/backend/config"
	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/model"
	"vr-school/backend/pkg/jwt"
)

var (
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< >>\n%%EOF\n")
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 32)...)
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{BaseURL: "http://localhost:5000"},
		Session:  *testSessionConfig(),
		FileLink: config.FileLinkConfig{Secret: "test-file-link-secret-0123456789", TTL: 15 * time.Minute},
		Storage:  config.StorageConfig{Driver: "local", MaxFileBytes: 5 << 20},
		Payment:  config.PaymentConfig{Provider: "stripe", Currency: "inr"},
		Housekeeping: config.HousekeepingConfig{
			Enabled:       true,
			Schedule:      "@every 30m",
			OrphanFileAge: time.Hour,
		},
	}
}

func setupTestDocumentService() (DocumentService, *mockRepos, *memStorage, *jwt.Manager) {
	cfg := testConfig()
	repo, mocks := newMockRepository()
	store := newMemStorage()
	links := jwt.NewManager(&cfg.FileLink)
	return NewDocumentService(cfg, repo, store, links, zap.NewNop()), mocks, store, links
}

func student(id string) model.Identity {
	return model.Identity{UserID: id, Username: id, Role: model.RoleStudent, EnrolledBranches: map[string]struct{}{}}
}

func upload(data []byte) *UploadedFile {
	return &UploadedFile{Body: bytes.NewReader(data), Filename: "scan", Size: int64(len(data))}
}

func tokenFromURL(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse url %q: %v", link, err)
	}
	return u.Query().Get("token")
}

// ── Upload ──

func TestUpload_StoresFileThenMetadata(t *testing.T) {
	svc, mocks, store, _ := setupTestDocumentService()

	resp, err := svc.Upload(context.Background(), student("u1"), "national_id", upload(pdfBytes))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.Status != "pending" || resp.Type != "national_id" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.ContentType != "application/pdf" {
		t.Errorf("want application/pdf, got %s", resp.ContentType)
	}
	if !strings.Contains(resp.URL, "/api/documents/file?token=") {
		t.Errorf("want signed file url, got %s", resp.URL)
	}

	if len(store.objects) != 1 {
		t.Fatalf("want 1 stored file, got %d", len(store.objects))
	}
	doc := mocks.document.docs[resp.ID]
	if !strings.HasPrefix(doc.StorageKey, "student/") || !strings.HasSuffix(doc.StorageKey, ".pdf") {
		t.Errorf("unexpected storage key %s", doc.StorageKey)
	}
	if _, ok := store.objects[doc.StorageKey]; !ok {
		t.Error("row must point at the stored file")
	}
}

func TestUpload_RejectsTypeNotAllowedForRole(t *testing.T) {
	// 每个角色下, 其类型表之外的所有类型
	candidates := append([]model.DocumentType{"bogus", ""}, model.AllDocumentTypes...)
	for _, role := range []model.Role{model.RoleStudent, model.RoleTeacher, model.RoleLecturer, model.RoleAdmin} {
		for _, docType := range candidates {
			if model.IsDocumentTypeAllowed(role, docType) {
				continue
			}
			svc, mocks, store, _ := setupTestDocumentService()
			caller := model.Identity{UserID: "u1", Role: role}

			_, err := svc.Upload(context.Background(), caller, string(docType), upload(pdfBytes))
			if !errors.Is(err, ErrInvalidDocumentType) {
				t.Errorf("%s/%s: want ErrInvalidDocumentType, got %v", role, docType, err)
			}
			if len(store.objects) != 0 || len(mocks.document.docs) != 0 {
				t.Errorf("%s/%s: rejected upload must not write", role, docType)
			}
		}
	}
}

func TestUpload_TypeCheckedBeforeFile(t *testing.T) {
	svc, _, _, _ := setupTestDocumentService()

	_, err := svc.Upload(context.Background(), student("u1"), "ugc_net", nil)
	if !errors.Is(err, ErrInvalidDocumentType) {
		t.Fatalf("want ErrInvalidDocumentType first, got %v", err)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	svc, _, _, _ := setupTestDocumentService()

	for _, file := range []*UploadedFile{nil, upload(nil)} {
		if _, err := svc.Upload(context.Background(), student("u1"), "passport", file); !errors.Is(err, ErrMissingFile) {
			t.Errorf("want ErrMissingFile, got %v", err)
		}
	}
}

func TestUpload_UnsupportedFile(t *testing.T) {
	svc, _, store, _ := setupTestDocumentService()

	tests := []struct {
		name string
		file *UploadedFile
	}{
		{"plain text", upload([]byte("just some words, not a scan"))},
		{"declared too large", &UploadedFile{Body: bytes.NewReader(pdfBytes), Size: 6 << 20}},
		{"measured too large", &UploadedFile{Body: io.MultiReader(bytes.NewReader(pdfBytes), bytes.NewReader(make([]byte, 5<<20))), Size: 10}},
		{"renamed text", &UploadedFile{Body: strings.NewReader("<html></html>"), Filename: "fake.pdf", Size: 13}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), student("u1"), "passport", tt.file)
			if !errors.Is(err, ErrUnsupportedFile) {
				t.Errorf("want ErrUnsupportedFile, got %v", err)
			}
		})
	}
	if len(store.objects) != 0 {
		t.Error("rejected files must not be stored")
	}
}

func TestUpload_AcceptsImages(t *testing.T) {
	svc, _, _, _ := setupTestDocumentService()

	for docType, data := range map[string][]byte{"profile_photo": pngBytes, "marksheet": jpegBytes} {
		if _, err := svc.Upload(context.Background(), student("u1"), docType, upload(data)); err != nil {
			t.Errorf("%s: %v", docType, err)
		}
	}
}

func TestUpload_ReplacesPreviousDocument(t *testing.T) {
	svc, mocks, store, _ := setupTestDocumentService()
	ctx := context.Background()

	first, err := svc.Upload(ctx, student("u1"), "passport", upload(pdfBytes))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	firstKey := mocks.document.docs[first.ID].StorageKey

	// 审核人已驳回
	if err := mocks.document.Review(ctx, first.ID, model.DocumentRejected, "blurry", "admin-1", time.Now()); err != nil {
		t.Fatalf("review: %v", err)
	}

	second, err := svc.Upload(ctx, student("u1"), "passport", upload(pngBytes))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-upload must keep one row per (user, type)")
	}
	if len(mocks.document.docs) != 1 {
		t.Fatalf("want 1 row, got %d", len(mocks.document.docs))
	}
	doc := mocks.document.docs[second.ID]
	if doc.Status != model.DocumentPending || doc.Feedback != "" {
		t.Errorf("re-upload must reset review, got %s %q", doc.Status, doc.Feedback)
	}
	if _, ok := store.objects[firstKey]; ok {
		t.Error("superseded file should be deleted")
	}
	if len(store.objects) != 1 {
		t.Errorf("want 1 stored file, got %d", len(store.objects))
	}
}

func TestUpload_MetadataFailureRemovesNewFile(t *testing.T) {
	svc, mocks, store, _ := setupTestDocumentService()
	mocks.document.upsertErr = errors.New("db down")

	if _, err := svc.Upload(context.Background(), student("u1"), "passport", upload(pdfBytes)); err == nil {
		t.Fatal("want error")
	}
	if len(store.objects) != 0 {
		t.Error("orphaned file left behind")
	}
}

func TestUpload_StorageFailureWritesNoRow(t *testing.T) {
	svc, mocks, store, _ := setupTestDocumentService()
	store.putErr = errors.New("disk full")

	if _, err := svc.Upload(context.Background(), student("u1"), "passport", upload(pdfBytes)); err == nil {
		t.Fatal("want error")
	}
	if len(mocks.document.docs) != 0 {
		t.Error("metadata must not be written without a file")
	}
}

// ── List / OpenFile ──

func TestList_NewestFirst(t *testing.T) {
	svc, mocks, _, _ := setupTestDocumentService()
	ds := svc.(*documentService)
	clock := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ds.now = func() time.Time { return clock }

	for _, docType := range []string{"passport", "marksheet", "national_id"} {
		if _, err := svc.Upload(context.Background(), student("u1"), docType, upload(pdfBytes)); err != nil {
			t.Fatalf("upload %s: %v", docType, err)
		}
		clock = clock.Add(time.Minute)
	}
	_, _ = svc.Upload(context.Background(), student("u2"), "passport", upload(pdfBytes))

	items, err := svc.List(context.Background(), student("u1"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("want 3 documents, got %d", len(items))
	}
	if items[0].Type != "national_id" || items[2].Type != "passport" {
		t.Errorf("want newest first, got %s..%s", items[0].Type, items[2].Type)
	}
	if len(mocks.document.docs) != 4 {
		t.Errorf("want 4 rows overall, got %d", len(mocks.document.docs))
	}
}

func TestOpenFile_StreamsOwnerFile(t *testing.T) {
	svc, _, _, _ := setupTestDocumentService()
	resp, _ := svc.Upload(context.Background(), student("u1"), "passport", upload(pdfBytes))

	content, err := svc.OpenFile(context.Background(), tokenFromURL(t, resp.URL))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer content.Body.Close()
	got, _ := io.ReadAll(content.Body)
	if !bytes.Equal(got, pdfBytes) {
		t.Error("streamed bytes differ from upload")
	}
	if content.ContentType != "application/pdf" || content.Name != "passport.pdf" {
		t.Errorf("unexpected content meta %+v", content)
	}
}

func TestOpenFile_RejectsForeignViewer(t *testing.T) {
	svc, mocks, _, links := setupTestDocumentService()
	resp, _ := svc.Upload(context.Background(), student("u1"), "passport", upload(pdfBytes))

	_ = mocks.user.Create(context.Background(), &model.User{UserID: "u2", Username: "u2", Email: "u2@x", Role: model.RoleStudent})
	token, _, _ := links.GenerateFileToken(resp.ID, "u2")
	if _, err := svc.OpenFile(context.Background(), token); !errors.Is(err, ErrFileLinkInvalid) {
		t.Errorf("want ErrFileLinkInvalid, got %v", err)
	}

	_ = mocks.user.Create(context.Background(), &model.User{UserID: "adm", Username: "adm", Email: "adm@x", Role: model.RoleAdmin})
	token, _, _ = links.GenerateFileToken(resp.ID, "adm")
	content, err := svc.OpenFile(context.Background(), token)
	if err != nil {
		t.Fatalf("admin should open: %v", err)
	}
	content.Body.Close()

	if _, err := svc.OpenFile(context.Background(), "not-a-token"); !errors.Is(err, ErrFileLinkInvalid) {
		t.Errorf("want ErrFileLinkInvalid, got %v", err)
	}
}

// ── Review ──

func TestReview_Transitions(t *testing.T) {
	svc, _, _, _ := setupTestDocumentService()
	ctx := context.Background()
	admin := model.Identity{UserID: "adm", Role: model.RoleAdmin}

	resp, _ := svc.Upload(ctx, student("u1"), "passport", upload(pdfBytes))

	queue, total, err := svc.ListForReview(ctx, admin, &dto.DocumentListQuery{})
	if err != nil || total != 1 || len(queue) != 1 {
		t.Fatalf("want 1 pending, got %d (%v)", total, err)
	}

	reviewed, err := svc.Review(ctx, admin, resp.ID, &dto.ReviewDocumentRequest{Status: "approved", Feedback: "ok"})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.Status != "approved" || reviewed.ReviewedAt == nil {
		t.Errorf("unexpected review result %+v", reviewed)
	}

	if _, err := svc.Review(ctx, admin, resp.ID, &dto.ReviewDocumentRequest{Status: "rejected"}); !errors.Is(err, ErrDocumentAlreadyReviewed) {
		t.Errorf("want ErrDocumentAlreadyReviewed, got %v", err)
	}
	if _, err := svc.Review(ctx, admin, "missing", &dto.ReviewDocumentRequest{Status: "approved"}); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("want ErrDocumentNotFound, got %v", err)
	}

	_, total, _ = svc.ListForReview(ctx, admin, &dto.DocumentListQuery{})
	if total != 0 {
		t.Errorf("queue should be empty, got %d", total)
	}
}
