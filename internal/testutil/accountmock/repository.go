package accountmock

import (
	"context"

	domain "sacco-ledger/internal/domain/account"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return domain.ErrNotFound (ErrKYCNotSubmitted for KYC);
// unset writes are no-ops.
type Repo struct {
	CreateFn               func(ctx context.Context, a *domain.Account) error
	SaveFn                 func(ctx context.Context, a *domain.Account) error
	GetByIDFn              func(ctx context.Context, id uint64) (*domain.Account, error)
	GetByUserIDFn          func(ctx context.Context, userID string) (*domain.Account, error)
	GetByNumberFn          func(ctx context.Context, number string) (*domain.Account, error)
	GetByIDForUpdateFn     func(ctx context.Context, id uint64) (*domain.Account, error)
	GetByUserIDForUpdateFn func(ctx context.Context, userID string) (*domain.Account, error)
	CreateKYCFn            func(ctx context.Context, k *domain.KYC) error
	GetKYCFn               func(ctx context.Context, accountID uint64) (*domain.KYC, error)
	SaveKYCFn              func(ctx context.Context, k *domain.KYC) error
}

func (m *Repo) Create(ctx context.Context, a *domain.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}
func (m *Repo) Save(ctx context.Context, a *domain.Account) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}
func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Account, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	if m.GetByNumberFn != nil {
		return m.GetByNumberFn(ctx, number)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Account, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Account, error) {
	if m.GetByUserIDForUpdateFn != nil {
		return m.GetByUserIDForUpdateFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}
func (m *Repo) CreateKYC(ctx context.Context, k *domain.KYC) error {
	if m.CreateKYCFn != nil {
		return m.CreateKYCFn(ctx, k)
	}
	return nil
}
func (m *Repo) GetKYC(ctx context.Context, accountID uint64) (*domain.KYC, error) {
	if m.GetKYCFn != nil {
		return m.GetKYCFn(ctx, accountID)
	}
	return nil, domain.ErrKYCNotSubmitted
}
func (m *Repo) SaveKYC(ctx context.Context, k *domain.KYC) error {
	if m.SaveKYCFn != nil {
		return m.SaveKYCFn(ctx, k)
	}
	return nil
}
