package account

import "context"

type Repository interface {
	Create(ctx context.Context, a *Account) error
	Save(ctx context.Context, a *Account) error

	GetByID(ctx context.Context, id uint64) (*Account, error)
	GetByUserID(ctx context.Context, userID string) (*Account, error)
	// Exact match on account_number or account_code.
	GetByNumber(ctx context.Context, number string) (*Account, error)

	// Row-locking reads, only meaningful inside a unit of work.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Account, error)
	GetByUserIDForUpdate(ctx context.Context, userID string) (*Account, error)

	CreateKYC(ctx context.Context, k *KYC) error
	GetKYC(ctx context.Context, accountID uint64) (*KYC, error)
	SaveKYC(ctx context.Context, k *KYC) error
}
