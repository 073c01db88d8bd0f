package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"vr-school/backend/internal/model"
	"vr-school/backend/internal/repository"
	pkgerrors "vr-school/backend/pkg/errors"
	"vr-school/backend/pkg/gateway"
	"vr-school/backend/pkg/storage"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users       map[string]*model.User
	enrollments map[string]map[string]time.Time
	seq         int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:       make(map[string]*model.User),
		enrollments: make(map[string]map[string]time.Time),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return uniqueViolation("uq_users_username")
		}
		if u.Email == user.Email {
			return uniqueViolation("uq_users_email")
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == username })
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email })
}

func (m *mockUserRepo) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.StudentID != nil && *u.StudentID == studentID })
}

func (m *mockUserRepo) FindConflict(_ context.Context, username, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == username || u.Email == email })
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) AssignStudentID(_ context.Context, userID, studentID string) (bool, error) {
	u, ok := m.users[userID]
	if !ok || u.StudentID != nil {
		return false, nil
	}
	sid := studentID
	u.StudentID = &sid
	return true, nil
}

func (m *mockUserRepo) ListEnrollments(_ context.Context, userID string) ([]model.Enrollment, error) {
	var rows []model.Enrollment
	for branchID, at := range m.enrollments[userID] {
		rows = append(rows, model.Enrollment{UserID: userID, BranchID: branchID, EnrolledAt: at})
	}
	return rows, nil
}

func (m *mockUserRepo) AddEnrollment(_ context.Context, userID, branchID string) error {
	if m.enrollments[userID] == nil {
		m.enrollments[userID] = make(map[string]time.Time)
	}
	if _, ok := m.enrollments[userID][branchID]; !ok {
		m.enrollments[userID][branchID] = time.Now()
	}
	return nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions map[string]*model.LoginSession
	touches  int
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.LoginSession)}
}

func (m *mockSessionRepo) Create(_ context.Context, s *model.LoginSession) error {
	m.sessions[s.TokenHash] = s
	return nil
}

func (m *mockSessionRepo) GetActive(_ context.Context, tokenHash string, now time.Time) (*model.LoginSession, error) {
	s, ok := m.sessions[tokenHash]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) Touch(_ context.Context, tokenHash string, expiresAt, seenAt time.Time) error {
	if s, ok := m.sessions[tokenHash]; ok {
		s.ExpiresAt = expiresAt
		s.LastSeenAt = seenAt
		m.touches++
	}
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, tokenHash string) error {
	delete(m.sessions, tokenHash)
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for hash, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, hash)
			n++
		}
	}
	return n, nil
}

// ── Mock DocumentRepository ──

type mockDocumentRepo struct {
	docs      map[string]*model.Document
	seq       int
	upsertErr error
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{docs: make(map[string]*model.Document)}
}

func (m *mockDocumentRepo) Upsert(_ context.Context, doc *model.Document) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for id, existing := range m.docs {
		if existing.UserID == doc.UserID && existing.Type == doc.Type {
			doc.DocumentID = id
			cp := *doc
			m.docs[id] = &cp
			return nil
		}
	}
	m.seq++
	doc.DocumentID = fmt.Sprintf("doc-%d", m.seq)
	cp := *doc
	m.docs[doc.DocumentID] = &cp
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id string) (*model.Document, error) {
	if d, ok := m.docs[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentRepo) GetByUserAndType(_ context.Context, userID string, docType model.DocumentType) (*model.Document, error) {
	for _, d := range m.docs {
		if d.UserID == userID && d.Type == docType {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentRepo) ListByUser(_ context.Context, userID string) ([]model.Document, error) {
	var result []model.Document
	for _, d := range m.docs {
		if d.UserID == userID {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UploadedAt.After(result[j].UploadedAt) })
	return result, nil
}

func (m *mockDocumentRepo) ListByStatus(_ context.Context, status model.DocumentStatus, offset, limit int) ([]model.Document, int64, error) {
	var result []model.Document
	for _, d := range m.docs {
		if d.Status == status {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UploadedAt.Before(result[j].UploadedAt) })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockDocumentRepo) Review(_ context.Context, id string, status model.DocumentStatus, feedback, reviewerID string, at time.Time) error {
	d, ok := m.docs[id]
	if !ok || d.Status != model.DocumentPending {
		return pkgerrors.ErrOptimisticLock
	}
	d.Status = status
	d.Feedback = feedback
	d.ReviewedBy = &reviewerID
	d.ReviewedAt = &at
	return nil
}

func (m *mockDocumentRepo) ExistingStorageKeys(_ context.Context, keys []string) (map[string]bool, error) {
	found := make(map[string]bool)
	for _, key := range keys {
		for _, d := range m.docs {
			if d.StorageKey == key {
				found[key] = true
			}
		}
	}
	return found, nil
}

// ── Mock Branch / Equipment / Specialization ──

type mockBranchRepo struct {
	branches map[string]*model.Branch
}

func newMockBranchRepo() *mockBranchRepo {
	return &mockBranchRepo{branches: make(map[string]*model.Branch)}
}

func (m *mockBranchRepo) Create(_ context.Context, branch *model.Branch) error {
	for _, b := range m.branches {
		if b.Name == branch.Name {
			return uniqueViolation("uq_branches_name")
		}
	}
	if branch.BranchID == "" {
		branch.BranchID = "branch-" + strings.ToLower(strings.ReplaceAll(branch.Name, " ", "-"))
	}
	m.branches[branch.BranchID] = branch
	return nil
}

func (m *mockBranchRepo) GetByID(_ context.Context, id string) (*model.Branch, error) {
	if b, ok := m.branches[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBranchRepo) List(_ context.Context) ([]model.Branch, error) {
	var result []model.Branch
	for _, b := range m.branches {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockBranchRepo) ListByIDs(_ context.Context, ids []string) ([]model.Branch, error) {
	var result []model.Branch
	for _, id := range ids {
		if b, ok := m.branches[id]; ok {
			result = append(result, *b)
		}
	}
	return result, nil
}

type mockEquipmentRepo struct {
	kits map[string]*model.EquipmentKit
	seq  int
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{kits: make(map[string]*model.EquipmentKit)}
}

func (m *mockEquipmentRepo) Create(_ context.Context, kit *model.EquipmentKit) error {
	if kit.EquipmentID == "" {
		m.seq++
		kit.EquipmentID = fmt.Sprintf("kit-%d", m.seq)
	}
	m.kits[kit.EquipmentID] = kit
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id string) (*model.EquipmentKit, error) {
	if k, ok := m.kits[id]; ok {
		return k, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) ListByBranch(_ context.Context, branchID string) ([]model.EquipmentKit, error) {
	var result []model.EquipmentKit
	for _, k := range m.kits {
		if k.BranchID == branchID {
			result = append(result, *k)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type mockSpecializationRepo struct {
	specs []model.Specialization
}

func newMockSpecializationRepo() *mockSpecializationRepo {
	return &mockSpecializationRepo{}
}

func (m *mockSpecializationRepo) Create(_ context.Context, spec *model.Specialization) error {
	if spec.SpecializationID == "" {
		spec.SpecializationID = fmt.Sprintf("spec-%d", len(m.specs)+1)
	}
	m.specs = append(m.specs, *spec)
	return nil
}

func (m *mockSpecializationRepo) ListByBranch(_ context.Context, branchID string) ([]model.Specialization, error) {
	var result []model.Specialization
	for _, s := range m.specs {
		if s.BranchID == branchID {
			result = append(result, s)
		}
	}
	return result, nil
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct {
	payments map[string]*model.Payment
	seq      int
	listErr  error
	// lookupMisses 让接下来 N 次 GetByExternalID 未命中,
	// 模拟在读取之后提交的并发确认
	lookupMisses int
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (m *mockPaymentRepo) Create(_ context.Context, payment *model.Payment) error {
	for _, p := range m.payments {
		if p.ExternalPaymentID == payment.ExternalPaymentID {
			return uniqueViolation("uq_payments_external_id")
		}
	}
	m.seq++
	payment.PaymentID = fmt.Sprintf("pay-%d", m.seq)
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	}
	cp := *payment
	m.payments[payment.PaymentID] = &cp
	return nil
}

func (m *mockPaymentRepo) GetByExternalID(_ context.Context, externalID string) (*model.Payment, error) {
	if m.lookupMisses > 0 {
		m.lookupMisses--
		return nil, gorm.ErrRecordNotFound
	}
	for _, p := range m.payments {
		if p.ExternalPaymentID == externalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepo) ListByUser(_ context.Context, userID string) ([]model.Payment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockPaymentRepo) ListCreatedBetween(_ context.Context, from, to time.Time) ([]model.Payment, error) {
	var result []model.Payment
	for _, p := range m.payments {
		if !from.IsZero() && p.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !p.CreatedAt.Before(to) {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// ── Mock VideoRepository ──

type mockVideoRepo struct {
	videos []model.Video
}

func newMockVideoRepo() *mockVideoRepo {
	return &mockVideoRepo{}
}

func (m *mockVideoRepo) Create(_ context.Context, video *model.Video) error {
	if video.VideoID == "" {
		video.VideoID = fmt.Sprintf("video-%d", len(m.videos)+1)
	}
	m.videos = append(m.videos, *video)
	return nil
}

func (m *mockVideoRepo) ListByBranch(_ context.Context, branchID string) ([]model.Video, error) {
	var result []model.Video
	for _, v := range m.videos {
		if v.BranchID == branchID {
			result = append(result, v)
		}
	}
	return result, nil
}

func (m *mockVideoRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Video, error) {
	var result []model.Video
	for _, v := range m.videos {
		if v.TeacherID == teacherID {
			result = append(result, v)
		}
	}
	return result, nil
}

// ── Mock VRSessionRepository ──

type mockVRSessionRepo struct {
	sessions map[string]*model.VRSession
	seq      int
}

func newMockVRSessionRepo() *mockVRSessionRepo {
	return &mockVRSessionRepo{sessions: make(map[string]*model.VRSession)}
}

func (m *mockVRSessionRepo) Create(_ context.Context, s *model.VRSession) error {
	m.seq++
	s.SessionID = fmt.Sprintf("vr-%d", m.seq)
	s.Version = 1
	cp := *s
	m.sessions[s.SessionID] = &cp
	return nil
}

func (m *mockVRSessionRepo) GetByID(_ context.Context, id string) (*model.VRSession, error) {
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVRSessionRepo) Update(_ context.Context, s *model.VRSession) error {
	stored, ok := m.sessions[s.SessionID]
	if !ok || stored.Version != s.Version {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version++
	cp := *s
	m.sessions[s.SessionID] = &cp
	return nil
}

func (m *mockVRSessionRepo) ListByUser(_ context.Context, userID string) ([]model.VRSession, error) {
	var result []model.VRSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return result, nil
}

// ── 聚合 ──

type mockRepos struct {
	user      *mockUserRepo
	session   *mockSessionRepo
	document  *mockDocumentRepo
	branch    *mockBranchRepo
	equipment *mockEquipmentRepo
	spec      *mockSpecializationRepo
	payment   *mockPaymentRepo
	video     *mockVideoRepo
	vr        *mockVRSessionRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:      newMockUserRepo(),
		session:   newMockSessionRepo(),
		document:  newMockDocumentRepo(),
		branch:    newMockBranchRepo(),
		equipment: newMockEquipmentRepo(),
		spec:      newMockSpecializationRepo(),
		payment:   newMockPaymentRepo(),
		video:     newMockVideoRepo(),
		vr:        newMockVRSessionRepo(),
	}
	repo := &repository.Repository{
		User:           m.user,
		Session:        m.session,
		Document:       m.document,
		Branch:         m.branch,
		Equipment:      m.equipment,
		Specialization: m.spec,
		Payment:        m.payment,
		Video:          m.video,
		VRSession:      m.vr,
	}
	return repo, m
}

// ── 内存存储 ──

type memObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

type memStorage struct {
	objects map[string]*memObject
	putErr  error
	deleted []string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string]*memObject)}
}

func (s *memStorage) Put(_ context.Context, key string, r io.Reader, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = &memObject{data: data, contentType: contentType, lastModified: time.Now()}
	return nil
}

func (s *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	obj, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	if _, ok := s.objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStorage) List(_ context.Context, prefix string) ([]storage.Object, error) {
	var out []storage.Object
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.Object{Key: key, Size: int64(len(obj.data)), LastModified: obj.lastModified})
		}
	}
	return out, nil
}

func (s *memStorage) SignedURL(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "", storage.ErrNotSupported
}

func (s *memStorage) Driver() string { return "memory" }

// ── 假网关 ──

type fakeGateway struct {
	intents     map[string]*gateway.Intent
	seq         int
	createErr   error
	retrieveErr error
	retrieves   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: make(map[string]*gateway.Intent)}
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountMinor int64, currency string, metadata map[string]string) (*gateway.Intent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.seq++
	id := fmt.Sprintf("pi_%d", g.seq)
	intent := &gateway.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       amountMinor,
		Currency:     currency,
		Status:       "requires_payment_method",
		Metadata:     metadata,
	}
	g.intents[id] = intent
	return intent, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, id string) (*gateway.Intent, error) {
	g.retrieves++
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	intent, ok := g.intents[id]
	if !ok {
		return nil, gateway.ErrIntentNotFound
	}
	cp := *intent
	return &cp, nil
}

func (g *fakeGateway) Name() string { return "fake" }

// settle 将 intent 标记为已支付
func (g *fakeGateway) settle(id string) {
	g.intents[id].Status = gateway.StatusSucceeded
}
