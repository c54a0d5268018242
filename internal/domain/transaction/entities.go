package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrInvalidTransition = errors.New("invalid transaction status transition")
)

type Type string

const (
	TypeDeposit               Type = "deposit"
	TypeWithdrawal            Type = "withdrawal"
	TypeTransfer              Type = "transfer"
	TypeRequest               Type = "request"
	TypeMobileMoneyDeposit    Type = "mobile_money_deposit"
	TypeMobileMoneyWithdrawal Type = "mobile_money_withdrawal"
	TypeLoanDisbursement      Type = "loan_disbursement"
	TypeLoanRepayment         Type = "loan_repayment"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// allowed[from] lists the statuses a transaction may move to.
var allowed = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// Table: transactions
type Transaction struct {
	ID                uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	TransactionID     string          `gorm:"column:transaction_id;size:32;uniqueIndex;not null" json:"transaction_id"`
	UserID            string          `gorm:"column:user_id;size:32;index;not null" json:"user_id"`
	Amount            decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Type              Type            `gorm:"column:type;size:32;index;not null" json:"type"`
	Status            Status          `gorm:"column:status;size:16;index;not null" json:"status"`
	SenderAccountID   *uint64         `gorm:"column:sender_account_id;index" json:"sender_account_id,omitempty"`
	ReceiverAccountID *uint64         `gorm:"column:receiver_account_id;index" json:"receiver_account_id,omitempty"`
	Description       string          `gorm:"column:description;type:text" json:"description,omitempty"`
	CompletedAt       *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

// Final reports whether the status can no longer change.
func (t *Transaction) Final() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

// TransitionTo moves the status forward; backward or sideways moves fail.
func (t *Transaction) TransitionTo(to Status, at time.Time) error {
	for _, s := range allowed[t.Status] {
		if s == to {
			t.Status = to
			if to == StatusCompleted {
				at = at.UTC()
				t.CompletedAt = &at
			}
			return nil
		}
	}
	return ErrInvalidTransition
}
