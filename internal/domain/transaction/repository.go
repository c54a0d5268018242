package transaction

import "context"

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	Save(ctx context.Context, t *Transaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	GetByTransactionIDForUpdate(ctx context.Context, transactionID string) (*Transaction, error)
	GetByID(ctx context.Context, id uint64) (*Transaction, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Transaction, error)
	// Newest first; transactions where the account is sender or receiver.
	ListByAccount(ctx context.Context, accountID uint64, limit int) ([]Transaction, error)
}
