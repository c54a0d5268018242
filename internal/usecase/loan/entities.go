package loan

import (
	"time"

	domain "sacco-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type ApplyInput struct {
	UserID         string
	Type           domain.Type
	Amount         decimal.Decimal
	DurationMonths int
	Purpose        string
}

type DisburseInput struct {
	LoanID  string
	StaffID string
}

type RepayInput struct {
	LoanID string
	UserID string
	Amount decimal.Decimal
}

type LoanDTO struct {
	LoanID         string          `json:"loan_id"`
	UserID         string          `json:"user_id"`
	Type           string          `json:"loan_type"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	DurationMonths int             `json:"duration_months"`
	Purpose        string          `json:"purpose"`
	TotalRepayment decimal.Decimal `json:"total_repayment"`
	AmountRepaid   decimal.Decimal `json:"amount_repaid"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	State          string          `json:"state"`
	AppliedAt      time.Time       `json:"applied_at"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	DisbursedAt    *time.Time      `json:"disbursed_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:         l.LoanID,
		UserID:         l.UserID,
		Type:           string(l.Type),
		Amount:         l.Amount,
		InterestRate:   l.InterestRate,
		DurationMonths: l.DurationMonths,
		Purpose:        l.Purpose,
		TotalRepayment: l.TotalRepayment,
		AmountRepaid:   l.AmountRepaid,
		Outstanding:    l.Outstanding(),
		State:          string(l.State),
		AppliedAt:      l.AppliedAt,
		ApprovedAt:     l.ApprovedAt,
		DisbursedAt:    l.DisbursedAt,
		CompletedAt:    l.CompletedAt,
	}
}

type RepaymentDTO struct {
	LoanID        string          `json:"loan_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	AmountRepaid  decimal.Decimal `json:"amount_repaid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	State         string          `json:"state"`
}
