package notification

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeCreditAlert           Type = "Credit Alert"
	TypeDebitAlert            Type = "Debit Alert"
	TypeMobileMoneyDeposit    Type = "Mobile Money Deposit"
	TypeMobileMoneyWithdrawal Type = "Mobile Money Withdrawal"
	TypeLoanApproved          Type = "Loan Approved"
	TypeLoanRejected          Type = "Loan Rejected"
	TypeLoanDisbursed         Type = "Loan Disbursed"
	TypeLoanRepayment         Type = "Loan Repayment"
	TypeAccountAdjustment     Type = "Account Adjustment"
	TypeKYCConfirmed          Type = "KYC Confirmed"
)

// Table: notifications. Informational only; never read by the ledger.
type Notification struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string          `gorm:"column:user_id;size:32;index;not null" json:"user_id"`
	Type      Type            `gorm:"column:type;size:40;not null" json:"type"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null;default:0" json:"amount"`
	Message   string          `gorm:"column:message;type:text" json:"message"`
	IsRead    bool            `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
}

// Publisher fans committed notifications out to other systems.
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Notification) error { return nil }
