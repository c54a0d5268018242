package mobilemoney

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sacco-ledger/internal/domain/account"
	"sacco-ledger/internal/domain/mobilemoney"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/internal/domain/uow"
	"sacco-ledger/internal/infrastructure/metrics"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/pkg/id"
	"sacco-ledger/pkg/money"
)

type Usecase struct {
	uow     uow.UnitOfWork
	ledger  *ledger.Usecase
	gateway mobilemoney.Gateway
}

func NewUsecase(tx uow.UnitOfWork, l *ledger.Usecase, gw mobilemoney.Gateway) *Usecase {
	return &Usecase{uow: tx, ledger: l, gateway: gw}
}

func validate(in RequestInput) error {
	if err := money.Validate(in.Amount); err != nil {
		return err
	}
	if in.Amount.LessThan(mobilemoney.MinAmount) {
		return mobilemoney.ErrBelowMinimum
	}
	if !mobilemoney.ValidPhone(in.Phone) {
		return mobilemoney.ErrInvalidPhone
	}
	if !in.Provider.Valid() {
		return mobilemoney.ErrInvalidProvider
	}
	return nil
}

// DepositRequest asks the provider to collect from the member's phone.
// Balances are untouched until the webhook reports success.
func (u *Usecase) DepositRequest(ctx context.Context, in RequestInput) (*Result, error) {
	return u.request(ctx, in, mobilemoney.DirectionCollection)
}

// WithdrawalRequest holds the amount against available balance and asks
// the provider to pay out.
func (u *Usecase) WithdrawalRequest(ctx context.Context, in RequestInput) (*Result, error) {
	return u.request(ctx, in, mobilemoney.DirectionPayout)
}

func (u *Usecase) request(ctx context.Context, in RequestInput, dir mobilemoney.Direction) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	var out *Result
	err := u.uow.WithinAccountTx(ctx, in.UserID, func(r uow.Repos, a *account.Account) error {
		accID := a.ID
		tx := &transaction.Transaction{
			TransactionID: id.NewID32(),
			UserID:        in.UserID,
			Amount:        in.Amount,
			Status:        transaction.StatusPending,
		}
		if dir == mobilemoney.DirectionCollection {
			tx.Type = transaction.TypeMobileMoneyDeposit
			tx.ReceiverAccountID = &accID
			tx.Description = fmt.Sprintf("Mobile money deposit from %s", in.Phone)
			if err := r.Transactions.Create(ctx, tx); err != nil {
				return err
			}
		} else {
			tx.Type = transaction.TypeMobileMoneyWithdrawal
			tx.SenderAccountID = &accID
			tx.Description = fmt.Sprintf("Mobile money withdrawal to %s", in.Phone)
			if err := u.ledger.Apply(ctx, r, tx, ledger.Lock(a, in.Amount)); err != nil {
				return err
			}
		}

		ref, err := u.gateway.Initiate(ctx, mobilemoney.GatewayRequest{
			Direction: dir,
			Provider:  in.Provider,
			Phone:     in.Phone,
			Amount:    in.Amount,
		})
		if err != nil {
			return fmt.Errorf("gateway initiate: %w", err)
		}
		if err := r.MobileMoney.Create(ctx, &mobilemoney.MobileMoneyTransaction{
			TransactionID: tx.ID,
			Provider:      in.Provider,
			PhoneNumber:   in.Phone,
			Reference:     ref,
		}); err != nil {
			return err
		}
		out = &Result{Transaction: tx, Reference: ref}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Webhook settles the transaction behind ref exactly once. The mobile
// money row is locked before the reconciled flag is read, so concurrent
// duplicate deliveries serialise and all but the first get
// ErrDuplicateReconciliation.
func (u *Usecase) Webhook(ctx context.Context, ref, status string) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	var note *notification.Notification
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		mm, err := r.MobileMoney.GetByReferenceForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if mm.Reconciled {
			return mobilemoney.ErrDuplicateReconciliation
		}
		tx, err := r.Transactions.GetByIDForUpdate(ctx, mm.TransactionID)
		if err != nil {
			return err
		}

		accID, err := partyOf(tx)
		if err != nil {
			return err
		}
		locked, err := ledger.LockAccounts(ctx, r, accID)
		if err != nil {
			return err
		}
		a := locked[accID]

		ok := status == mobilemoney.StatusSuccessful
		next := transaction.StatusFailed
		if ok {
			next = transaction.StatusCompleted
		}
		if err := tx.TransitionTo(next, u.ledger.Now()); err != nil {
			return err
		}

		var moves []ledger.Movement
		switch {
		case tx.Type == transaction.TypeMobileMoneyDeposit && ok:
			moves = append(moves, ledger.Credit(a, tx.Amount, account.BucketMobileMoney))
		case tx.Type == transaction.TypeMobileMoneyWithdrawal && ok:
			moves = append(moves, ledger.Settle(a, tx.Amount))
		case tx.Type == transaction.TypeMobileMoneyWithdrawal:
			moves = append(moves, ledger.Unlock(a, tx.Amount))
		}
		if err := u.ledger.Apply(ctx, r, tx, moves...); err != nil {
			return err
		}

		now := u.ledger.Now()
		mm.Reconciled = true
		mm.ReconciledAt = &now
		if err := r.MobileMoney.Save(ctx, mm); err != nil {
			return err
		}

		if ok {
			typ, verb := notification.TypeMobileMoneyDeposit, "deposited to"
			if tx.Type == transaction.TypeMobileMoneyWithdrawal {
				typ, verb = notification.TypeMobileMoneyWithdrawal, "withdrawn from"
			}
			note = &notification.Notification{
				UserID:  a.UserID,
				Type:    typ,
				Amount:  tx.Amount,
				Message: fmt.Sprintf("%s %s your account via %s %s", tx.Amount.StringFixed(2), verb, mm.Provider, mm.PhoneNumber),
			}
			if err := ledger.Notify(ctx, r, note); err != nil {
				return err
			}
		}
		out = tx
		return nil
	})
	metrics.Webhooks.WithLabelValues(webhookOutcome(err, status)).Inc()
	if err != nil {
		if errors.Is(err, mobilemoney.ErrDuplicateReconciliation) {
			log.Printf("mobilemoney: duplicate webhook for %s ignored", ref)
		}
		return nil, err
	}
	if note != nil {
		u.ledger.Publish(ctx, note)
	}
	return out, nil
}

var errNotMobileMoney = errors.New("transaction is not a mobile money transaction")

func partyOf(tx *transaction.Transaction) (uint64, error) {
	switch {
	case tx.Type == transaction.TypeMobileMoneyDeposit && tx.ReceiverAccountID != nil:
		return *tx.ReceiverAccountID, nil
	case tx.Type == transaction.TypeMobileMoneyWithdrawal && tx.SenderAccountID != nil:
		return *tx.SenderAccountID, nil
	}
	return 0, errNotMobileMoney
}

func webhookOutcome(err error, status string) string {
	switch {
	case errors.Is(err, mobilemoney.ErrDuplicateReconciliation):
		return "duplicate"
	case errors.Is(err, mobilemoney.ErrUnknownReference):
		return "unknown_reference"
	case err != nil:
		return "error"
	case status == mobilemoney.StatusSuccessful:
		return "settled"
	default:
		return "failed"
	}
}
