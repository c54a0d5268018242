package account

import (
	"context"
	"errors"
	"log"
	"regexp"

	"sacco-ledger/internal/domain/account"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/internal/domain/uow"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/pkg/id"

	"github.com/shopspring/decimal"
)

const numberAttempts = 5

var rePIN = regexp.MustCompile(`^[0-9]{4}$`)

type Usecase struct {
	uow    uow.UnitOfWork
	ledger *ledger.Usecase
}

func NewUsecase(tx uow.UnitOfWork, l *ledger.Usecase) *Usecase {
	return &Usecase{uow: tx, ledger: l}
}

// Open creates the member's single account with zero balances.
func (u *Usecase) Open(ctx context.Context, userID string) (*account.Account, error) {
	var out *account.Account
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		_, err := r.Accounts.GetByUserID(ctx, userID)
		switch {
		case err == nil:
			return account.ErrExists
		case !errors.Is(err, account.ErrNotFound):
			return err
		}

		number, code, err := freeNumbers(ctx, r.Accounts)
		if err != nil {
			return err
		}
		a := &account.Account{
			AccountNumber:      number,
			AccountCode:        code,
			UserID:             userID,
			MainBalance:        decimal.Zero,
			MobileMoneyBalance: decimal.Zero,
			LockedFunds:        decimal.Zero,
			Status:             account.StatusInactive,
		}
		if err := r.Accounts.Create(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("account: opened %s for %s", out.AccountNumber, userID)
	return out, nil
}

func freeNumbers(ctx context.Context, repo account.Repository) (string, string, error) {
	for i := 0; i < numberAttempts; i++ {
		number, code := id.NewNumeric("217", 7), id.NewNumeric("DEX", 7)
		taken := false
		for _, n := range []string{number, code} {
			_, err := repo.GetByNumber(ctx, n)
			if err == nil {
				taken = true
				break
			}
			if !errors.Is(err, account.ErrNotFound) {
				return "", "", err
			}
		}
		if !taken {
			return number, code, nil
		}
	}
	return "", "", ErrNumberExhausted
}

func (u *Usecase) GetByUser(ctx context.Context, userID string) (*account.Account, error) {
	var out *account.Account
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Accounts.GetByUserID(ctx, userID)
		out = a
		return err
	})
	return out, err
}

// SetPIN stores a bcrypt hash of a new 4 digit PIN. Changing an existing
// PIN requires the current one.
func (u *Usecase) SetPIN(ctx context.Context, in SetPINInput) error {
	if !rePIN.MatchString(in.PIN) {
		return ErrInvalidPin
	}
	return u.uow.WithinAccountTx(ctx, in.UserID, func(r uow.Repos, a *account.Account) error {
		if a.PinHash != "" {
			if err := a.CheckPIN(in.Current); err != nil {
				return err
			}
		}
		hash, err := account.HashPIN(in.PIN)
		if err != nil {
			return err
		}
		a.PinHash = hash
		return r.Accounts.Save(ctx, a)
	})
}

// SubmitKYC records or replaces the member's KYC details until staff confirm them.
func (u *Usecase) SubmitKYC(ctx context.Context, userID string, in KYCInput) (*account.KYC, error) {
	if !account.IdentityTypes[in.IdentityType] {
		return nil, ErrInvalidIdentityType
	}
	var out *account.KYC
	err := u.uow.WithinAccountTx(ctx, userID, func(r uow.Repos, a *account.Account) error {
		if a.KYCConfirmed {
			return account.ErrKYCConfirmed
		}
		k, err := r.Accounts.GetKYC(ctx, a.ID)
		isNew := errors.Is(err, account.ErrKYCNotSubmitted)
		if err != nil && !isNew {
			return err
		}
		if isNew {
			k = &account.KYC{AccountID: a.ID}
		}
		k.FullName = in.FullName
		k.IdentityType = in.IdentityType
		k.IdentityNo = in.IdentityNo
		k.DateOfBirth = in.DateOfBirth.UTC()
		k.Mobile = in.Mobile
		if isNew {
			err = r.Accounts.CreateKYC(ctx, k)
		} else {
			err = r.Accounts.SaveKYC(ctx, k)
		}
		if err != nil {
			return err
		}

		a.KYCSubmitted = true
		a.Status = account.StatusPending
		if err := r.Accounts.Save(ctx, a); err != nil {
			return err
		}
		out = k
		return nil
	})
	return out, err
}

// ConfirmKYC is the staff step that activates an account.
func (u *Usecase) ConfirmKYC(ctx context.Context, accountNumber, staffID string) (*account.Account, error) {
	var out *account.Account
	var note *notification.Notification
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		found, err := r.Accounts.GetByNumber(ctx, accountNumber)
		if err != nil {
			return err
		}
		a, err := r.Accounts.GetByIDForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}
		if a.KYCConfirmed {
			return account.ErrKYCConfirmed
		}
		if !a.KYCSubmitted {
			return account.ErrKYCNotSubmitted
		}
		k, err := r.Accounts.GetKYC(ctx, a.ID)
		if err != nil {
			return err
		}
		reviewer := staffID
		k.ConfirmedBy = &reviewer
		if err := r.Accounts.SaveKYC(ctx, k); err != nil {
			return err
		}

		a.KYCConfirmed = true
		a.Status = account.StatusActive
		if err := r.Accounts.Save(ctx, a); err != nil {
			return err
		}
		note = &notification.Notification{
			UserID:  a.UserID,
			Type:    notification.TypeKYCConfirmed,
			Message: "Your account is now active",
		}
		if err := ledger.Notify(ctx, r, note); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.ledger.Publish(ctx, note)
	return out, nil
}

// DefaultHistoryLimit caps history and notification listings.
const DefaultHistoryLimit = 50

// History lists the member's most recent transactions, newest first.
func (u *Usecase) History(ctx context.Context, userID string, limit int) ([]transaction.Transaction, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	var out []transaction.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Accounts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		out, err = r.Transactions.ListByAccount(ctx, a.ID, limit)
		return err
	})
	return out, err
}

// Transaction returns one transaction the member initiated, sent or
// received. Other callers get transaction.ErrNotFound so ids do not leak.
func (u *Usecase) Transaction(ctx context.Context, userID, transactionID string) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Transactions.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return err
		}
		if t.UserID != userID {
			a, err := r.Accounts.GetByUserID(ctx, userID)
			if errors.Is(err, account.ErrNotFound) {
				return transaction.ErrNotFound
			}
			if err != nil {
				return err
			}
			if !involves(t, a.ID) {
				return transaction.ErrNotFound
			}
		}
		out = t
		return nil
	})
	return out, err
}

func involves(t *transaction.Transaction, accountID uint64) bool {
	return (t.SenderAccountID != nil && *t.SenderAccountID == accountID) ||
		(t.ReceiverAccountID != nil && *t.ReceiverAccountID == accountID)
}

func (u *Usecase) Notifications(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	var out []notification.Notification
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Notifications.ListByUser(ctx, userID, limit)
		return err
	})
	return out, err
}
