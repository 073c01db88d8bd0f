package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/repository"
	"vr-school/backend/pkg/password"
)

// AuthResult 登录后的身份及其会话
type AuthResult struct {
	Identity model.Identity
	Session  *IssuedSession
}

// AuthService 账户与会话业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, client ClientInfo) (*AuthResult, error)
	// Login 标识可以是用户名、邮箱或学号
	Login(ctx context.Context, req *dto.LoginRequest, client ClientInfo) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	// Authenticate 将会话 token 解析为调用者身份
	Authenticate(ctx context.Context, token string) (*model.Identity, error)
}

type authService struct {
	repo     *repository.Repository
	sessions SessionStore
	logger   *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(repo *repository.Repository, sessions SessionStore, logger *zap.Logger) AuthService {
	return &authService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// dummyHash 标识未匹配任何用户时仍执行一次校验,
// 使未知账户与密码错误耗时一致
var dummyHash, _ = password.Hash("not-a-real-password")

// ═══════════════════════════════════════════════════════════
// Register
// ═══════════════════════════════════════════════════════════

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, client ClientInfo) (*AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if model.IsReservedUsername(username) {
		return nil, ErrReservedUsername
	}

	role := model.RoleStudent
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil || !parsed.SelfAssignable() {
			return nil, ErrRoleNotSelfAssignable
		}
		role = parsed
	}

	// 1. 一次查询检查两个唯一字段, 报告命中的那个
	existing, err := s.repo.User.FindConflict(ctx, username, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check registration conflict failed", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		if strings.EqualFold(existing.Username, username) {
			return nil, ErrUsernameTaken
		}
		return nil, ErrEmailTaken
	}

	// 2. 哈希密码并写入
	hash, err := password.Hash(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Role:         role,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		// 与并发注册竞争失败
		if repository.IsUniqueViolation(err) {
			if strings.Contains(repository.ViolatedConstraint(err), "email") {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.UserID),
		zap.String("role", role.String()),
	)

	return s.openSession(ctx, user, nil, client)
}

// ═══════════════════════════════════════════════════════════
// Login
// ═══════════════════════════════════════════════════════════

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, client ClientInfo) (*AuthResult, error) {
	user, err := s.findByIdentifier(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, err
	}

	if user == nil {
		_, _ = password.Verify(req.Password, dummyHash)
		return nil, ErrInvalidCredentials
	}

	ok, err := password.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	enrollments, err := s.repo.User.ListEnrollments(ctx, user.UserID)
	if err != nil {
		s.logger.Error("load enrollments failed", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	return s.openSession(ctx, user, enrollments, client)
}

// findByIdentifier 依次按用户名、邮箱、学号查找,
// 无匹配时返回 nil 且无错误
func (s *authService) findByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if identifier == "" {
		return nil, nil
	}
	lookups := []func(context.Context, string) (*model.User, error){
		s.repo.User.GetByUsername,
		func(ctx context.Context, v string) (*model.User, error) {
			return s.repo.User.GetByEmail(ctx, strings.ToLower(v))
		},
		s.repo.User.GetByStudentID,
	}
	for _, lookup := range lookups {
		user, err := lookup(ctx, identifier)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("look up login identifier failed", zap.Error(err))
			return nil, err
		}
	}
	return nil, nil
}

func (s *authService) openSession(ctx context.Context, user *model.User, enrollments []model.Enrollment, client ClientInfo) (*AuthResult, error) {
	issued, err := s.sessions.Create(ctx, user.UserID, client)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Identity: model.NewIdentity(user, enrollments),
		Session:  issued,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// Logout / Authenticate
// ═══════════════════════════════════════════════════════════

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 会话有效期内账户已被删除
			return nil, ErrNotAuthenticated
		}
		s.logger.Error("load session user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	enrollments, err := s.repo.User.ListEnrollments(ctx, userID)
	if err != nil {
		s.logger.Error("load enrollments failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	identity := model.NewIdentity(user, enrollments)
	return &identity, nil
}
