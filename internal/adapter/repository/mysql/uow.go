package mysql

import (
	"context"

	"sacco-ledger/internal/domain/account"
	"sacco-ledger/internal/domain/approval"
	"sacco-ledger/internal/domain/audit"
	"sacco-ledger/internal/domain/loan"
	"sacco-ledger/internal/domain/mobilemoney"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Accounts:      &AccountRepository{db: tx},
		Transactions:  &TransactionRepository{db: tx},
		MobileMoney:   &MobileMoneyRepository{db: tx},
		Loans:         &LoanRepository{db: tx},
		Approvals:     &ApprovalRepository{db: tx},
		Notifications: &NotificationRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinAccountTx(ctx context.Context, userID string, fn func(r uow.Repos, a *account.Account) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the account row up-front to prevent lost updates
		a, err := r.Accounts.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}

// Models lists every table the ledger owns, in dependency order.
func Models() []any {
	return []any{
		&account.Account{},
		&account.KYC{},
		&transaction.Transaction{},
		&mobilemoney.MobileMoneyTransaction{},
		&loan.Loan{},
		&loan.Repayment{},
		&approval.Approval{},
		&notification.Notification{},
		&audit.Entry{},
	}
}
