package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/model"
	"vr-school/backend/internal/repository"
)

const (
	paymentsSheet = "Payments"
	summarySheet  = "Summary"
	exportDate    = "2006-01-02"
)

var paymentsHeader = []interface{}{
	"Date", "Payment ID", "Student ID", "Name", "Email", "Branch",
	"Installment", "Amount", "Currency", "Provider", "External ID",
}

// ExportService 管理员导出业务接口
//
// 工作簿以 buffer 返回, 下载响应头由 handler 设置
// 工作表:
//   - "Payments": 每条账本记录一行, 按时间正序
//   - "Summary": 按方向与分期汇总
type ExportService interface {
	ExportPayments(ctx context.Context, query *dto.PaymentExportQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportPayments
// ═══════════════════════════════════════════════════════════
//
// from 与 to 为包含首尾的自然日 (UTC), 均可为空
// 返回 buffer、建议文件名、错误

func (s *exportService) ExportPayments(ctx context.Context, query *dto.PaymentExportQuery) (*bytes.Buffer, string, error) {
	from, to, err := exportRange(query)
	if err != nil {
		return nil, "", err
	}

	// 1. 账本记录
	payments, err := s.repo.Payment.ListCreatedBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("list payments for export failed", zap.Error(err))
		return nil, "", err
	}

	// 2. 用户与方向名称
	users, branches, err := s.lookups(ctx, payments)
	if err != nil {
		return nil, "", err
	}

	// 3. 生成工作簿
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", paymentsSheet); err != nil {
		return nil, "", ErrExportGenerate.Wrap(err)
	}
	if err := f.SetSheetRow(paymentsSheet, "A1", &paymentsHeader); err != nil {
		return nil, "", ErrExportGenerate.Wrap(err)
	}

	type totalKey struct {
		branch      string
		installment int
	}
	totals := make(map[totalKey]int64)
	counts := make(map[totalKey]int)

	for i, p := range payments {
		u := users[p.UserID]
		var studentID, name, email string
		if u != nil {
			name, email = u.Name, u.Email
			if u.StudentID != nil {
				studentID = *u.StudentID
			}
		}
		branchName := p.BranchID
		if b, ok := branches[p.BranchID]; ok {
			branchName = b.Name
		}

		row := []interface{}{
			p.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			p.PaymentID, studentID, name, email, branchName,
			p.InstallmentNumber, p.Amount, p.Currency, p.Provider, p.ExternalPaymentID,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(paymentsSheet, cell, &row); err != nil {
			return nil, "", ErrExportGenerate.Wrap(err)
		}

		k := totalKey{branch: branchName, installment: p.InstallmentNumber}
		totals[k] += p.Amount
		counts[k]++
	}
	_ = f.SetColWidth(paymentsSheet, "A", "A", 20)
	_ = f.SetColWidth(paymentsSheet, "B", "B", 38)
	_ = f.SetColWidth(paymentsSheet, "D", "F", 24)
	_ = f.SetColWidth(paymentsSheet, "K", "K", 32)

	// 汇总, 按方向再按分期排序
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, "", ErrExportGenerate.Wrap(err)
	}
	summaryHeader := []interface{}{"Branch", "Installment", "Payments", "Total"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return nil, "", ErrExportGenerate.Wrap(err)
	}
	keys := make([]totalKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].branch != keys[j].branch {
			return keys[i].branch < keys[j].branch
		}
		return keys[i].installment < keys[j].installment
	})
	for i, k := range keys {
		row := []interface{}{k.branch, k.installment, counts[k], totals[k]}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, "", ErrExportGenerate.Wrap(err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("write export workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerate.Wrap(err)
	}

	s.logger.Info("payments exported", zap.Int("rows", len(payments)))

	return buf, exportFilename(query), nil
}

func (s *exportService) lookups(ctx context.Context, payments []model.Payment) (map[string]*model.User, map[string]*model.Branch, error) {
	userSet := make(map[string]struct{})
	branchSet := make(map[string]struct{})
	for _, p := range payments {
		userSet[p.UserID] = struct{}{}
		branchSet[p.BranchID] = struct{}{}
	}

	userList, err := s.repo.User.ListByIDs(ctx, setKeys(userSet))
	if err != nil {
		s.logger.Error("load users for export failed", zap.Error(err))
		return nil, nil, err
	}
	branchList, err := s.repo.Branch.ListByIDs(ctx, setKeys(branchSet))
	if err != nil {
		s.logger.Error("load branches for export failed", zap.Error(err))
		return nil, nil, err
	}

	users := make(map[string]*model.User, len(userList))
	for i := range userList {
		users[userList[i].UserID] = &userList[i]
	}
	branches := make(map[string]*model.Branch, len(branchList))
	for i := range branchList {
		branches[branchList[i].BranchID] = &branchList[i]
	}
	return users, branches, nil
}

// exportRange 将包含首尾的日期转换为半开区间 [from, to)
func exportRange(query *dto.PaymentExportQuery) (time.Time, time.Time, error) {
	var from, to time.Time
	if query == nil {
		return from, to, nil
	}
	var err error
	if query.From != "" {
		if from, err = time.Parse(exportDate, query.From); err != nil {
			return from, to, ErrExportRange.WithMessage("Invalid from date")
		}
	}
	if query.To != "" {
		if to, err = time.Parse(exportDate, query.To); err != nil {
			return from, to, ErrExportRange.WithMessage("Invalid to date")
		}
		to = to.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return from, to, ErrExportRange
	}
	return from, to, nil
}

func exportFilename(query *dto.PaymentExportQuery) string {
	if query != nil && (query.From != "" || query.To != "") {
		from, to := query.From, query.To
		if from == "" {
			from = "start"
		}
		if to == "" {
			to = "now"
		}
		return fmt.Sprintf("payments_%s_%s.xlsx", from, to)
	}
	return "payments_all.xlsx"
}

func setKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
