package loan

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sacco-ledger/internal/domain/account"
	"sacco-ledger/internal/domain/loan"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/internal/domain/uow"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/pkg/id"
	"sacco-ledger/pkg/money"

	"github.com/shopspring/decimal"
)

var ErrPendingExists = errors.New("member already has a pending loan application")

type Usecase struct {
	uow    uow.UnitOfWork
	ledger *ledger.Usecase
}

func NewUsecase(tx uow.UnitOfWork, l *ledger.Usecase) *Usecase {
	return &Usecase{uow: tx, ledger: l}
}

// Apply files a pending application. The rate comes from the loan type.
func (u *Usecase) Apply(ctx context.Context, in ApplyInput) (*LoanDTO, error) {
	if err := money.Validate(in.Amount); err != nil {
		return nil, err
	}
	rate, err := loan.RateFor(in.Type)
	if err != nil {
		return nil, err
	}
	if in.DurationMonths < loan.MinDurationMonths || in.DurationMonths > loan.MaxDurationMonths {
		return nil, loan.ErrInvalidDuration
	}
	total := loan.TotalRepayment(in.Amount, rate, in.DurationMonths)
	if total.GreaterThan(money.Max) {
		return nil, money.ErrInvalidAmount
	}

	var out *loan.Loan
	err = u.uow.WithinAccountTx(ctx, in.UserID, func(r uow.Repos, a *account.Account) error {
		// Block if the member already has a pending application.
		existing, err := r.Loans.ListByUserID(ctx, in.UserID)
		if err != nil {
			return err
		}
		for _, l := range existing {
			if l.State == loan.StatePending {
				return fmt.Errorf("%w: %s", ErrPendingExists, l.LoanID)
			}
		}

		l := &loan.Loan{
			LoanID:         id.NewID32(),
			UserID:         in.UserID,
			AccountID:      a.ID,
			Type:           in.Type,
			Amount:         in.Amount,
			InterestRate:   rate,
			DurationMonths: in.DurationMonths,
			Purpose:        in.Purpose,
			TotalRepayment: total,
			AmountRepaid:   decimal.Zero,
			State:          loan.StatePending,
			AppliedAt:      u.ledger.Now(),
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDTO(out), nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	var out *loan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		out = l
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDTO(out), nil
}

func (u *Usecase) ListByUser(ctx context.Context, userID string) ([]LoanDTO, error) {
	var rows []loan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		rows, err = r.Loans.ListByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

// Disburse pays an approved loan into the member's main balance. The
// disbursement transaction has no sender.
func (u *Usecase) Disburse(ctx context.Context, in DisburseInput) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	var note *notification.Notification
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		peek, err := r.Loans.GetByLoanID(ctx, in.LoanID)
		if err != nil {
			return err
		}
		// account before loan, the same order Repay locks in
		locked, err := ledger.LockAccounts(ctx, r, peek.AccountID)
		if err != nil {
			return err
		}
		a := locked[peek.AccountID]
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, in.LoanID)
		if err != nil {
			return err
		}
		if l.State != loan.StateApproved {
			return loan.ErrInvalidTransition
		}

		now := u.ledger.Now()
		accID := a.ID
		tx := &transaction.Transaction{
			TransactionID:     id.NewID32(),
			UserID:            l.UserID,
			Amount:            l.Amount,
			Type:              transaction.TypeLoanDisbursement,
			Status:            transaction.StatusPending,
			ReceiverAccountID: &accID,
			Description:       fmt.Sprintf("Disbursement of %s loan %s", l.Type, l.LoanID),
		}
		if err := tx.TransitionTo(transaction.StatusCompleted, now); err != nil {
			return err
		}
		if err := u.ledger.Apply(ctx, r, tx, ledger.Credit(a, l.Amount, account.BucketMain)); err != nil {
			return err
		}

		l.State = loan.StateDisbursed
		l.DisbursedAt = &now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		note = &notification.Notification{
			UserID:  l.UserID,
			Type:    notification.TypeLoanDisbursed,
			Amount:  l.Amount,
			Message: fmt.Sprintf("Your loan of %s has been disbursed. Total repayable: %s", l.Amount.StringFixed(2), l.TotalRepayment.StringFixed(2)),
		}
		if err := ledger.Notify(ctx, r, note); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("loan: %s disbursed by %s (tx %s)", in.LoanID, in.StaffID, out.TransactionID)
	u.ledger.Publish(ctx, note)
	return out, nil
}

// Repay debits the member's main balance against a disbursed loan. The
// loan completes once the cumulative repayments cover the total due.
func (u *Usecase) Repay(ctx context.Context, in RepayInput) (*RepaymentDTO, error) {
	if err := money.Validate(in.Amount); err != nil {
		return nil, err
	}

	var out *RepaymentDTO
	var note *notification.Notification
	err := u.uow.WithinAccountTx(ctx, in.UserID, func(r uow.Repos, a *account.Account) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, in.LoanID)
		if err != nil {
			return err
		}
		if l.UserID != in.UserID {
			return loan.ErrNotFound
		}
		if l.State != loan.StateDisbursed {
			return loan.ErrInvalidTransition
		}
		if a.MainBalance.LessThan(in.Amount) {
			return account.ErrInsufficientFunds
		}

		now := u.ledger.Now()
		accID := a.ID
		tx := &transaction.Transaction{
			TransactionID:   id.NewID32(),
			UserID:          in.UserID,
			Amount:          in.Amount,
			Type:            transaction.TypeLoanRepayment,
			Status:          transaction.StatusPending,
			SenderAccountID: &accID,
			Description:     fmt.Sprintf("Repayment for loan %s", l.LoanID),
		}
		if err := tx.TransitionTo(transaction.StatusCompleted, now); err != nil {
			return err
		}
		if err := u.ledger.Apply(ctx, r, tx, ledger.Debit(a, in.Amount, account.BucketMain)); err != nil {
			return err
		}
		if err := r.Loans.CreateRepayment(ctx, &loan.Repayment{
			LoanID:        l.ID,
			Amount:        in.Amount,
			Paid:          true,
			TransactionID: tx.ID,
		}); err != nil {
			return err
		}

		l.AmountRepaid = l.AmountRepaid.Add(in.Amount)
		if l.AmountRepaid.GreaterThanOrEqual(l.TotalRepayment) {
			l.State = loan.StateCompleted
			l.CompletedAt = &now
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		note = &notification.Notification{
			UserID:  l.UserID,
			Type:    notification.TypeLoanRepayment,
			Amount:  in.Amount,
			Message: fmt.Sprintf("Repayment of %s received. Outstanding: %s", in.Amount.StringFixed(2), l.Outstanding().StringFixed(2)),
		}
		if err := ledger.Notify(ctx, r, note); err != nil {
			return err
		}
		out = &RepaymentDTO{
			LoanID:        l.LoanID,
			TransactionID: tx.TransactionID,
			Amount:        in.Amount,
			AmountRepaid:  l.AmountRepaid,
			Outstanding:   l.Outstanding(),
			State:         string(l.State),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.ledger.Publish(ctx, note)
	return out, nil
}
