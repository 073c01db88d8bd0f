package service

import (
	pkgerrors "vr-school/backend/pkg/errors"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials    = pkgerrors.New(pkgerrors.KindAuthentication, 11001, "Invalid credentials")
	ErrNotAuthenticated      = pkgerrors.New(pkgerrors.KindAuthentication, 10002, "Not authenticated")
	ErrUsernameTaken         = pkgerrors.New(pkgerrors.KindConflict, 11002, "Username already exists")
	ErrEmailTaken            = pkgerrors.New(pkgerrors.KindConflict, 11003, "Email already exists")
	ErrRoleNotSelfAssignable = pkgerrors.New(pkgerrors.KindAuthorization, 11004, "This role cannot be chosen at registration")
	ErrReservedUsername      = pkgerrors.New(pkgerrors.KindValidation, 11005, "Username may not contain '@' or start with 'STU-'")
	ErrUserNotFound          = pkgerrors.New(pkgerrors.KindNotFound, 11006, "User not found")
)

// ── 文档模块业务错误 ──

var (
	ErrInvalidDocumentType     = pkgerrors.New(pkgerrors.KindValidation, 12001, "Invalid document type for your role")
	ErrMissingFile             = pkgerrors.New(pkgerrors.KindValidation, 12002, "No file uploaded")
	ErrUnsupportedFile         = pkgerrors.New(pkgerrors.KindValidation, 12003, "Only PDF, JPEG and PNG files are accepted")
	ErrFileTooLarge            = ErrUnsupportedFile.WithMessage("File too large, the limit is 5 MB")
	ErrDocumentNotFound        = pkgerrors.New(pkgerrors.KindNotFound, 12004, "Document not found")
	ErrDocumentAlreadyReviewed = pkgerrors.New(pkgerrors.KindConflict, 12005, "Document is not pending review")
	ErrFileLinkInvalid         = pkgerrors.New(pkgerrors.KindAuthorization, 12006, "File link is invalid or expired")
)

// ── 报名账本业务错误 ──

var (
	ErrPaymentFieldsRequired  = pkgerrors.New(pkgerrors.KindValidation, 13001, "Branch ID and installment number are required")
	ErrInvalidInstallment     = pkgerrors.New(pkgerrors.KindValidation, 13002, "Invalid installment number")
	ErrBranchNotFound         = pkgerrors.New(pkgerrors.KindNotFound, 13003, "Branch not found")
	ErrPaymentIntentRequired  = pkgerrors.New(pkgerrors.KindValidation, 13004, "Payment intent ID is required")
	ErrPaymentNotSuccessful   = pkgerrors.New(pkgerrors.KindBusinessRule, 13005, "Payment not successful")
	ErrPaymentIntentNotFound  = pkgerrors.New(pkgerrors.KindNotFound, 13006, "Payment intent not found")
	ErrPaymentNotOwned        = pkgerrors.New(pkgerrors.KindAuthorization, 13007, "Payment belongs to another user")
	ErrPaymentMetadataInvalid = pkgerrors.New(pkgerrors.KindBusinessRule, 13008, "Payment intent carries no enrollment details")
	ErrGatewayUnavailable     = pkgerrors.New(pkgerrors.KindGateway, 17001, "Payment service unavailable, please retry")
)

// ── 方向、视频、VR 练习业务错误 ──

var (
	ErrTeacherOnly          = pkgerrors.New(pkgerrors.KindAuthorization, 14001, "Only teachers can manage videos")
	ErrEquipmentNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 14002, "Equipment not found")
	ErrBranchNameTaken      = pkgerrors.New(pkgerrors.KindConflict, 14003, "Branch name already exists")
	ErrVRSessionNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 15001, "VR session not found")
	ErrVRSessionCompleted   = pkgerrors.New(pkgerrors.KindBusinessRule, 15002, "VR session already completed")
	ErrVRProgressDecreasing = pkgerrors.New(pkgerrors.KindValidation, 15003, "Progress cannot decrease")
)

// ── 导出业务错误 ──

var (
	ErrExportRange    = pkgerrors.New(pkgerrors.KindValidation, 16001, "Export range end must be after its start")
	ErrExportGenerate = pkgerrors.New(pkgerrors.KindInternal, 16002, "Failed to generate export file")
)
