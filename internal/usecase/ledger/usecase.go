package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"sacco-ledger/internal/domain/account"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/internal/domain/uow"
	"sacco-ledger/internal/infrastructure/metrics"
	"sacco-ledger/pkg/id"
	"sacco-ledger/pkg/money"
)

var ErrNilUoW = errors.New("ledger: unit of work not configured")

// Usecase is the only place balances change. Every other usecase hands it
// movements plus the transaction row that explains them.
type Usecase struct {
	uow    uow.UnitOfWork
	events notification.Publisher
	now    func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, events notification.Publisher) *Usecase {
	if events == nil {
		events = notification.NopPublisher{}
	}
	return &Usecase{uow: tx, events: events, now: time.Now}
}

// Now is the clock shared by the usecases built on this ledger.
func (u *Usecase) Now() time.Time { return u.now().UTC() }

// Apply validates every movement against in-memory copies first, then
// writes the accounts and the transaction row through r. It must be called
// inside a unit of work with the accounts already locked for update; if any
// movement fails nothing is written and the caller's tx rolls back.
func (u *Usecase) Apply(ctx context.Context, r uow.Repos, tx *transaction.Transaction, moves ...Movement) error {
	if tx != nil {
		if err := money.Validate(tx.Amount); err != nil {
			return err
		}
	}
	touched := make([]*account.Account, 0, len(moves))
	staged := make(map[*account.Account]account.Account, len(moves))
	for _, m := range moves {
		if err := money.Validate(m.Amount); err != nil {
			return err
		}
		cur, ok := staged[m.Account]
		if !ok {
			cur = *m.Account
			touched = append(touched, m.Account)
		}
		if err := apply(&cur, m); err != nil {
			metrics.LedgerOps.WithLabelValues(string(m.Op), "rejected").Inc()
			return err
		}
		staged[m.Account] = cur
	}

	for _, a := range touched {
		next := staged[a]
		if !next.NonNegative() {
			return account.ErrInsufficientFunds
		}
		*a = next
		if err := r.Accounts.Save(ctx, a); err != nil {
			return err
		}
	}
	if tx != nil {
		var err error
		if tx.ID == 0 {
			err = r.Transactions.Create(ctx, tx)
		} else {
			err = r.Transactions.Save(ctx, tx)
		}
		if err != nil {
			return err
		}
	}
	for _, m := range moves {
		metrics.LedgerOps.WithLabelValues(string(m.Op), "applied").Inc()
	}
	return nil
}

func apply(a *account.Account, m Movement) error {
	switch m.Op {
	case OpCredit:
		return a.Credit(m.Amount, m.Bucket)
	case OpDebit:
		return a.Debit(m.Amount, m.Bucket)
	case OpLock:
		return a.Lock(m.Amount)
	case OpUnlock:
		return a.Unlock(m.Amount)
	case OpSettle:
		return a.SettleLocked(m.Amount)
	}
	return fmt.Errorf("ledger: unknown op %q", m.Op)
}

// LockAccounts loads accounts FOR UPDATE in ascending id order so two
// requests touching the same pair cannot deadlock.
func LockAccounts(ctx context.Context, r uow.Repos, ids ...uint64) (map[uint64]*account.Account, error) {
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := make(map[uint64]*account.Account, len(sorted))
	for _, accID := range sorted {
		if _, ok := out[accID]; ok {
			continue
		}
		a, err := r.Accounts.GetByIDForUpdate(ctx, accID)
		if err != nil {
			return nil, err
		}
		out[accID] = a
	}
	return out, nil
}

// Notify stores a notification in the current unit of work and returns it
// so the caller can publish after commit.
func Notify(ctx context.Context, r uow.Repos, n *notification.Notification) error {
	return r.Notifications.Create(ctx, n)
}

// Publish pushes committed notifications out; failures are logged only,
// the ledger change has already committed.
func (u *Usecase) Publish(ctx context.Context, ns ...*notification.Notification) {
	for _, n := range ns {
		if err := u.events.Publish(ctx, n); err != nil {
			log.Printf("ledger: publish notification %d for %s: %v", n.ID, n.UserID, err)
		}
	}
}

// Deposit credits a member's main balance on behalf of staff.
func (u *Usecase) Deposit(ctx context.Context, in AdjustInput) (*transaction.Transaction, error) {
	return u.adjust(ctx, in, transaction.TypeDeposit)
}

// Withdraw debits a member's main balance on behalf of staff.
func (u *Usecase) Withdraw(ctx context.Context, in AdjustInput) (*transaction.Transaction, error) {
	return u.adjust(ctx, in, transaction.TypeWithdrawal)
}

func (u *Usecase) adjust(ctx context.Context, in AdjustInput, typ transaction.Type) (*transaction.Transaction, error) {
	if u.uow == nil {
		return nil, ErrNilUoW
	}
	if err := money.Validate(in.Amount); err != nil {
		return nil, err
	}

	var out *transaction.Transaction
	var note *notification.Notification
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		target, err := r.Accounts.GetByNumber(ctx, in.AccountNumber)
		if err != nil {
			return err
		}
		a, err := r.Accounts.GetByIDForUpdate(ctx, target.ID)
		if err != nil {
			return err
		}

		accID := a.ID
		tx := &transaction.Transaction{
			TransactionID: id.NewID32(),
			UserID:        a.UserID,
			Amount:        in.Amount,
			Type:          typ,
			Status:        transaction.StatusPending,
			Description:   in.Description,
		}
		var move Movement
		if typ == transaction.TypeDeposit {
			tx.ReceiverAccountID = &accID
			move = Credit(a, in.Amount, account.BucketMain)
		} else {
			tx.SenderAccountID = &accID
			move = Debit(a, in.Amount, account.BucketMain)
		}
		if err := tx.TransitionTo(transaction.StatusCompleted, u.Now()); err != nil {
			return err
		}
		if err := u.Apply(ctx, r, tx, move); err != nil {
			return err
		}

		note = &notification.Notification{
			UserID:  a.UserID,
			Type:    notification.TypeAccountAdjustment,
			Amount:  in.Amount,
			Message: fmt.Sprintf("%s of %s posted by staff", typ, in.Amount.StringFixed(2)),
		}
		if err := Notify(ctx, r, note); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("ledger: %s %s on %s posted by %s (tx %s)", typ, in.Amount.StringFixed(2), in.AccountNumber, in.StaffID, out.TransactionID)
	u.Publish(ctx, note)
	return out, nil
}
