package uow

import (
	"context"

	"sacco-ledger/internal/domain/account"
	"sacco-ledger/internal/domain/approval"
	"sacco-ledger/internal/domain/loan"
	"sacco-ledger/internal/domain/mobilemoney"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/domain/transaction"
)

// Repos are bound to one database transaction.
type Repos struct {
	Accounts      account.Repository
	Transactions  transaction.Repository
	MobileMoney   mobilemoney.Repository
	Loans         loan.Repository
	Approvals     approval.Repository
	Notifications notification.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the member's account first, then pass it in
	WithinAccountTx(ctx context.Context, userID string, fn func(r Repos, a *account.Account) error) error
}
