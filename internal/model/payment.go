package model

import "time"

// PaymentStatus 分期付款记录状态
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// 分期序号, 封闭集合
const (
	FirstInstallment  = 1
	SecondInstallment = 2
	ThirdInstallment  = 3
)

// IsValidInstallment 判断 n 是否为 1、2 或 3
func IsValidInstallment(n int) bool {
	return n >= FirstInstallment && n <= ThirdInstallment
}

// Payment 分期付款表 payments
// 仅在网关确认成功后写入一次, 之后不再修改
// ExternalPaymentID 唯一, 保证确认操作幂等
type Payment struct {
	PaymentID         string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID            string        `gorm:"type:uuid;not null;index"                        json:"userId"`
	BranchID          string        `gorm:"type:uuid;not null;index"                        json:"branchId"`
	Amount            int64         `gorm:"not null"                                        json:"amount"`
	Currency          string        `gorm:"type:varchar(8);not null"                        json:"currency"`
	InstallmentNumber int           `gorm:"type:smallint;not null"                          json:"installmentNumber"`
	Status            PaymentStatus `gorm:"type:varchar(16);not null"                       json:"status"`
	Provider          string        `gorm:"type:varchar(20);not null"                       json:"provider"`
	ExternalPaymentID string        `gorm:"type:varchar(255);not null;uniqueIndex"          json:"externalPaymentId"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"              json:"createdAt"`
}

// TableName 表名
func (Payment) TableName() string { return "payments" }
