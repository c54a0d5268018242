package mobilemoney

import "context"

type Repository interface {
	Create(ctx context.Context, m *MobileMoneyTransaction) error
	Save(ctx context.Context, m *MobileMoneyTransaction) error
	GetByReference(ctx context.Context, ref string) (*MobileMoneyTransaction, error)
	GetByReferenceForUpdate(ctx context.Context, ref string) (*MobileMoneyTransaction, error)
}
