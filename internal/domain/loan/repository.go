package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByUserID(ctx context.Context, userID string) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error

	CreateRepayment(ctx context.Context, r *Repayment) error
	ListRepayments(ctx context.Context, loanNumericID uint64) ([]Repayment, error)
}
