package loanmock

import (
	"context"

	domain "sacco-ledger/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return domain.ErrNotFound; unset writes are no-ops.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByUserIDFn         func(ctx context.Context, userID string) ([]domain.Loan, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	CreateRepaymentFn      func(ctx context.Context, r *domain.Repayment) error
	ListRepaymentsFn       func(ctx context.Context, loanNumericID uint64) ([]domain.Repayment, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}
func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Loan, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, nil
}
func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
func (m *Repo) CreateRepayment(ctx context.Context, r *domain.Repayment) error {
	if m.CreateRepaymentFn != nil {
		return m.CreateRepaymentFn(ctx, r)
	}
	return nil
}
func (m *Repo) ListRepayments(ctx context.Context, loanNumericID uint64) ([]domain.Repayment, error) {
	if m.ListRepaymentsFn != nil {
		return m.ListRepaymentsFn(ctx, loanNumericID)
	}
	return nil, nil
}
