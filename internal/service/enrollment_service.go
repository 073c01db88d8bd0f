package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/repository"
	"vr-school/backend/pkg/gateway"
)

// installmentPercent 每期应付占方向价格的百分比
var installmentPercent = map[int]int64{
	model.FirstInstallment:  40,
	model.SecondInstallment: 30,
	model.ThirdInstallment:  30,
}

// InstallmentAmount 返回价格为 price 的方向第 n 期应付金额, 向下取整
// 三期合计可能比 price 少至多 2 个单位, 差额不再收取
func InstallmentAmount(price int64, n int) (int64, error) {
	pct, ok := installmentPercent[n]
	if !ok {
		return 0, ErrInvalidInstallment
	}
	return price * pct / 100, nil
}

// EnrollmentService 分期报名账本业务接口
type EnrollmentService interface {
	CreatePaymentIntent(ctx context.Context, caller model.Identity, req *dto.CreatePaymentIntentRequest) (*dto.CreatePaymentIntentResponse, error)
	// ConfirmPayment 记录已结算的 intent, 重复确认返回已记录的付款
	ConfirmPayment(ctx context.Context, caller model.Identity, req *dto.PaymentSuccessRequest) (*dto.PaymentSuccessResponse, error)
	ListPayments(ctx context.Context, userID string) ([]model.Payment, error)
}

type enrollmentService struct {
	repo     *repository.Repository
	gw       gateway.Gateway
	currency string
	logger   *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, gw gateway.Gateway, currency string, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{
		repo:     repo,
		gw:       gw,
		currency: currency,
		logger:   logger,
	}
}

// ═══════════════════════════════════════════════════════════
// CreatePaymentIntent
// ═══════════════════════════════════════════════════════════

func (s *enrollmentService) CreatePaymentIntent(ctx context.Context, caller model.Identity, req *dto.CreatePaymentIntentRequest) (*dto.CreatePaymentIntentResponse, error) {
	branchID := strings.TrimSpace(req.BranchID)
	if branchID == "" || req.InstallmentNumber == nil {
		return nil, ErrPaymentFieldsRequired
	}
	n := *req.InstallmentNumber
	if !model.IsValidInstallment(n) {
		return nil, ErrInvalidInstallment
	}

	branch, err := s.repo.Branch.GetByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		s.logger.Error("load branch failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}

	if n != model.FirstInstallment && !caller.IsEnrolled(branch.BranchID) {
		s.logger.Warn("installment requested before enrollment",
			zap.String("user_id", caller.UserID),
			zap.String("branch_id", branch.BranchID),
			zap.Int("installment", n),
		)
	}

	amount, err := InstallmentAmount(branch.Price, n)
	if err != nil {
		return nil, err
	}

	intent, err := s.gw.CreateIntent(ctx, amount*100, s.currency, map[string]string{
		gateway.MetaUserID:      caller.UserID,
		gateway.MetaBranchID:    branch.BranchID,
		gateway.MetaInstallment: strconv.Itoa(n),
	})
	if err != nil {
		s.logger.Error("create payment intent failed",
			zap.String("provider", s.gw.Name()),
			zap.String("user_id", caller.UserID),
			zap.Error(err),
		)
		return nil, ErrGatewayUnavailable.Wrap(err)
	}

	return &dto.CreatePaymentIntentResponse{
		ClientSecret:      intent.ClientSecret,
		PaymentIntentID:   intent.ID,
		Amount:            amount,
		Currency:          s.currency,
		InstallmentNumber: n,
		Provider:          s.gw.Name(),
	}, nil
}

// ═══════════════════════════════════════════════════════════
// ConfirmPayment
// ═══════════════════════════════════════════════════════════
//
// 步骤:
//  1. 已记录的 intent 直接返回, 不再调用网关
//  2. 重新查询网关, 只接受 "succeeded"
//  3. 单个事务内写入付款, 第一期时分配学号,
//     并将方向加入已报名集合
//
// 外部 ID 唯一约束冲突说明并发确认已成功, 返回其记录

func (s *enrollmentService) ConfirmPayment(ctx context.Context, caller model.Identity, req *dto.PaymentSuccessRequest) (*dto.PaymentSuccessResponse, error) {
	intentID := strings.TrimSpace(req.PaymentIntentID)
	if intentID == "" {
		return nil, ErrPaymentIntentRequired
	}

	// 1. 已记录
	if existing, err := s.recorded(ctx, caller, intentID); err != nil || existing != nil {
		return existing, err
	}

	// 2. 以网关状态为准
	intent, err := s.gw.RetrieveIntent(ctx, intentID)
	if err != nil {
		if errors.Is(err, gateway.ErrIntentNotFound) {
			return nil, ErrPaymentIntentNotFound
		}
		s.logger.Error("retrieve payment intent failed",
			zap.String("provider", s.gw.Name()),
			zap.String("intent_id", intentID),
			zap.Error(err),
		)
		return nil, ErrGatewayUnavailable.Wrap(err)
	}
	if !intent.Succeeded() {
		return nil, ErrPaymentNotSuccessful
	}

	userID := intent.Metadata[gateway.MetaUserID]
	branchID := intent.Metadata[gateway.MetaBranchID]
	n, convErr := strconv.Atoi(intent.Metadata[gateway.MetaInstallment])
	if userID == "" || branchID == "" || convErr != nil || !model.IsValidInstallment(n) {
		s.logger.Error("payment intent metadata incomplete",
			zap.String("intent_id", intentID),
			zap.Any("metadata", intent.Metadata),
		)
		return nil, ErrPaymentMetadataInvalid
	}
	if userID != caller.UserID {
		s.logger.Warn("payment confirmed by another user",
			zap.String("intent_id", intentID),
			zap.String("owner_id", userID),
			zap.String("caller_id", caller.UserID),
		)
		return nil, ErrPaymentNotOwned
	}

	payment := &model.Payment{
		UserID:            userID,
		BranchID:          branchID,
		Amount:            intent.Amount / 100,
		Currency:          strings.ToLower(intent.Currency),
		InstallmentNumber: n,
		Status:            model.PaymentCompleted,
		Provider:          s.gw.Name(),
		ExternalPaymentID: intent.ID,
	}
	if payment.Currency == "" {
		payment.Currency = s.currency
	}

	// 3. 写入账本
	if err := s.record(ctx, payment); err != nil {
		if repository.IsUniqueViolation(err) && repository.ViolatedConstraint(err) != "uq_users_student_id" {
			existing, rerr := s.recorded(ctx, caller, intentID)
			if rerr != nil {
				return nil, rerr
			}
			if existing != nil {
				return existing, nil
			}
		}
		s.logger.Error("record payment failed", zap.String("intent_id", intentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("installment recorded",
		zap.String("user_id", userID),
		zap.String("branch_id", branchID),
		zap.Int("installment", n),
		zap.Int64("amount", payment.Amount),
	)

	resp := &dto.PaymentSuccessResponse{Payment: payment}
	if n == model.FirstInstallment {
		resp.StudentID = s.studentIDOf(ctx, userID)
	}
	return resp, nil
}

// recorded 返回账本中已有 intent 的确认响应, 不存在时返回 nil
func (s *enrollmentService) recorded(ctx context.Context, caller model.Identity, intentID string) (*dto.PaymentSuccessResponse, error) {
	existing, err := s.repo.Payment.GetByExternalID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("load payment failed", zap.String("intent_id", intentID), zap.Error(err))
		return nil, err
	}
	if existing.UserID != caller.UserID {
		return nil, ErrPaymentNotOwned
	}

	resp := &dto.PaymentSuccessResponse{Payment: existing, AlreadyRecorded: true}
	if existing.InstallmentNumber == model.FirstInstallment {
		resp.StudentID = s.studentIDOf(ctx, existing.UserID)
	}
	return resp, nil
}

func (s *enrollmentService) record(ctx context.Context, payment *model.Payment) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin transaction failed", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	rollback := func(err error) error {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if err := txRepo.Payment.Create(ctx, payment); err != nil {
		return rollback(err)
	}

	if payment.InstallmentNumber == model.FirstInstallment {
		assigned, err := txRepo.User.AssignStudentID(ctx, payment.UserID, NewStudentID(time.Now()))
		if err != nil {
			return rollback(err)
		}
		if assigned {
			s.logger.Info("student id assigned", zap.String("user_id", payment.UserID))
		}
		if err := txRepo.User.AddEnrollment(ctx, payment.UserID, payment.BranchID); err != nil {
			return rollback(err)
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit transaction failed", zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *enrollmentService) studentIDOf(ctx context.Context, userID string) *string {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("reload user after payment failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return user.StudentID
}

// NewStudentID 由随机字节和时钟低位生成 "STU-<6 hex>-<4 digits>"
func NewStudentID(now time.Time) string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%s%s-%04d", model.StudentIDPrefix, strings.ToUpper(hex.EncodeToString(b[:])), now.UnixMilli()%10000)
}

// ═══════════════════════════════════════════════════════════
// ListPayments
// ═══════════════════════════════════════════════════════════

func (s *enrollmentService) ListPayments(ctx context.Context, userID string) ([]model.Payment, error) {
	payments, err := s.repo.Payment.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list payments failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	return payments, nil
}
