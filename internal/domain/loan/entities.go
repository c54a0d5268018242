package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid loan state transition")
	ErrAlreadyReviewed   = errors.New("loan already reviewed")
	ErrInvalidType       = errors.New("invalid loan type")
	ErrInvalidDuration   = errors.New("loan duration must be between 1 and 60 months")
)

type State string

const (
	StatePending   State = "pending"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
	StateDisbursed State = "disbursed"
	StateCompleted State = "completed"
)

type Type string

const (
	TypePersonal  Type = "personal"
	TypeBusiness  Type = "business"
	TypeEmergency Type = "emergency"
	TypeEducation Type = "education"
)

// Annual interest rates by loan type. Applicants never choose the rate.
var rates = map[Type]decimal.Decimal{
	TypePersonal:  decimal.RequireFromString("0.12"),
	TypeBusiness:  decimal.RequireFromString("0.10"),
	TypeEmergency: decimal.RequireFromString("0.15"),
	TypeEducation: decimal.RequireFromString("0.08"),
}

func RateFor(t Type) (decimal.Decimal, error) {
	r, ok := rates[t]
	if !ok {
		return decimal.Zero, ErrInvalidType
	}
	return r, nil
}

const (
	MinDurationMonths = 1
	MaxDurationMonths = 60
)

var twelve = decimal.NewFromInt(12)

// TotalRepayment is principal plus simple interest over the duration,
// rounded to cents.
func TotalRepayment(principal, rate decimal.Decimal, months int) decimal.Decimal {
	interest := principal.Mul(rate).Mul(decimal.NewFromInt(int64(months))).Div(twelve)
	return principal.Add(interest).Round(2)
}

// Table: loan_applications
type Loan struct {
	ID             uint64          `gorm:"column:id;primaryKey" json:"-"`
	LoanID         string          `gorm:"column:loan_id;size:32;uniqueIndex" json:"loan_id"`
	UserID         string          `gorm:"column:user_id;size:32;index" json:"user_id"`
	AccountID      uint64          `gorm:"column:account_id;index" json:"-"`
	Type           Type            `gorm:"column:loan_type;size:16" json:"loan_type"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(12,2)" json:"amount"`
	InterestRate   decimal.Decimal `gorm:"column:interest_rate;type:decimal(6,4)" json:"interest_rate"`
	DurationMonths int             `gorm:"column:duration_months" json:"duration_months"`
	Purpose        string          `gorm:"column:purpose;type:text" json:"purpose"`
	TotalRepayment decimal.Decimal `gorm:"column:total_repayment;type:decimal(12,2)" json:"total_repayment"`
	AmountRepaid   decimal.Decimal `gorm:"column:amount_repaid;type:decimal(12,2);default:0" json:"amount_repaid"`
	State          State           `gorm:"column:state;size:16;default:'pending'" json:"state"`
	AppliedAt      time.Time       `gorm:"column:applied_at" json:"applied_at"`
	ApprovedAt     *time.Time      `gorm:"column:approved_at" json:"approved_at,omitempty"`
	DisbursedAt    *time.Time      `gorm:"column:disbursed_at" json:"disbursed_at,omitempty"`
	CompletedAt    *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"-"`
}

func (Loan) TableName() string { return "loan_applications" }

// Outstanding is what is still owed; never below zero.
func (l *Loan) Outstanding() decimal.Decimal {
	o := l.TotalRepayment.Sub(l.AmountRepaid)
	if o.IsNegative() {
		return decimal.Zero
	}
	return o
}

// Table: loan_repayments
type Repayment struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID        uint64          `gorm:"column:loan_id;index;not null" json:"-"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Paid          bool            `gorm:"column:paid;not null;default:false" json:"paid"`
	TransactionID uint64          `gorm:"column:transaction_id;index" json:"-"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Repayment) TableName() string { return "loan_repayments" }
