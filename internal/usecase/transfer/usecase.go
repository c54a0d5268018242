package transfer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sacco-ledger/internal/domain/account"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/internal/domain/uow"
	"sacco-ledger/internal/infrastructure/metrics"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/pkg/id"
	"sacco-ledger/pkg/money"
)

type Usecase struct {
	uow    uow.UnitOfWork
	ledger *ledger.Usecase
}

func NewUsecase(tx uow.UnitOfWork, l *ledger.Usecase) *Usecase {
	return &Usecase{uow: tx, ledger: l}
}

// Initiate records a processing transfer. No money moves until Confirm.
func (u *Usecase) Initiate(ctx context.Context, in InitiateInput) (*transaction.Transaction, error) {
	if err := money.Validate(in.Amount); err != nil {
		return nil, err
	}

	var out *transaction.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		sender, err := r.Accounts.GetByUserID(ctx, in.SenderUserID)
		if err != nil {
			return err
		}
		receiver, err := r.Accounts.GetByNumber(ctx, in.Receiver)
		if err != nil {
			return err
		}
		if receiver.ID == sender.ID {
			return ErrSelfTransfer
		}
		if sender.MainBalance.LessThan(in.Amount) {
			return account.ErrInsufficientFunds
		}

		desc := in.Description
		if desc == "" {
			desc = fmt.Sprintf("Transfer to %s", receiver.AccountNumber)
		}
		senderID, receiverID := sender.ID, receiver.ID
		tx := &transaction.Transaction{
			TransactionID:     id.NewID32(),
			UserID:            in.SenderUserID,
			Amount:            in.Amount,
			Type:              transaction.TypeTransfer,
			Status:            transaction.StatusPending,
			SenderAccountID:   &senderID,
			ReceiverAccountID: &receiverID,
			Description:       desc,
		}
		if err := tx.TransitionTo(transaction.StatusProcessing, u.ledger.Now()); err != nil {
			return err
		}
		if err := r.Transactions.Create(ctx, tx); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Confirm checks the sender's PIN and settles the transfer. A wrong PIN
// leaves the transaction processing so the sender can retry.
func (u *Usecase) Confirm(ctx context.Context, in ConfirmInput) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	var notes []*notification.Notification
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		tx, err := r.Transactions.GetByTransactionIDForUpdate(ctx, in.TransactionID)
		if err != nil {
			return err
		}
		if tx.UserID != in.SenderUserID || tx.Type != transaction.TypeTransfer ||
			tx.SenderAccountID == nil || tx.ReceiverAccountID == nil {
			return transaction.ErrNotFound
		}
		if tx.Status != transaction.StatusProcessing {
			return transaction.ErrInvalidTransition
		}

		locked, err := ledger.LockAccounts(ctx, r, *tx.SenderAccountID, *tx.ReceiverAccountID)
		if err != nil {
			return err
		}
		sender, receiver := locked[*tx.SenderAccountID], locked[*tx.ReceiverAccountID]
		if err := sender.CheckPIN(in.PIN); err != nil {
			return err
		}

		if err := tx.TransitionTo(transaction.StatusCompleted, u.ledger.Now()); err != nil {
			return err
		}
		if err := u.ledger.Apply(ctx, r, tx,
			ledger.Debit(sender, tx.Amount, account.BucketMain),
			ledger.Credit(receiver, tx.Amount, account.BucketMain),
		); err != nil {
			return err
		}

		amount := tx.Amount.StringFixed(2)
		notes = []*notification.Notification{
			{
				UserID:  sender.UserID,
				Type:    notification.TypeDebitAlert,
				Amount:  tx.Amount,
				Message: fmt.Sprintf("You sent %s to %s", amount, receiver.AccountNumber),
			},
			{
				UserID:  receiver.UserID,
				Type:    notification.TypeCreditAlert,
				Amount:  tx.Amount,
				Message: fmt.Sprintf("You received %s from %s", amount, sender.AccountNumber),
			},
		}
		for _, n := range notes {
			if err := ledger.Notify(ctx, r, n); err != nil {
				return err
			}
		}
		out = tx
		return nil
	})
	metrics.Transfers.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, account.ErrWrongPin) {
			log.Printf("transfer: wrong pin on %s", in.TransactionID)
		}
		return nil, err
	}
	u.ledger.Publish(ctx, notes...)
	return out, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, account.ErrWrongPin):
		return "wrong_pin"
	case errors.Is(err, account.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "error"
	}
}
