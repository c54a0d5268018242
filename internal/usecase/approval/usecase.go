package approval

import (
	"context"
	"errors"
	"fmt"

	domainApproval "sacco-ledger/internal/domain/approval"
	domainLoan "sacco-ledger/internal/domain/loan"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/domain/uow"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/pkg/id"
)

var ErrNilUoW = errors.New("approval: unit of work not configured")

// Usecase records the staff decision on a pending loan application.
type Usecase struct {
	uow    uow.UnitOfWork
	ledger *ledger.Usecase
}

func NewUsecase(tx uow.UnitOfWork, l *ledger.Usecase) *Usecase {
	return &Usecase{uow: tx, ledger: l}
}

func (u *Usecase) Approve(ctx context.Context, in ReviewInput) (*ReviewDTO, error) {
	return u.review(ctx, in, domainApproval.DecisionApproved)
}

func (u *Usecase) Reject(ctx context.Context, in ReviewInput) (*ReviewDTO, error) {
	return u.review(ctx, in, domainApproval.DecisionRejected)
}

func (u *Usecase) review(ctx context.Context, in ReviewInput, decision domainApproval.Decision) (*ReviewDTO, error) {
	if u.uow == nil {
		return nil, ErrNilUoW
	}
	var dto *ReviewDTO
	var note *notification.Notification

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// Lock loan row for update
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, in.LoanID)
		if err != nil {
			return err
		}

		// State guard: only pending → approved|rejected
		if l.State != domainLoan.StatePending {
			if l.State == domainLoan.StateApproved || l.State == domainLoan.StateRejected {
				return domainLoan.ErrAlreadyReviewed
			}
			return domainLoan.ErrInvalidTransition
		}

		if _, err := r.Approvals.GetByLoanID(ctx, l.ID); err == nil {
			return domainLoan.ErrAlreadyReviewed
		} else if !errors.Is(err, domainApproval.ErrNotFound) {
			return err
		}

		now := u.ledger.Now()
		a := &domainApproval.Approval{
			ApprovalID: id.NewID32(),
			LoanID:     l.ID, // numeric FK
			ReviewerID: in.ReviewerID,
			Decision:   decision,
			Note:       in.Note,
			ReviewedAt: now,
		}
		if err := r.Approvals.Create(ctx, a); err != nil {
			return err
		}

		typ := notification.TypeLoanRejected
		if decision == domainApproval.DecisionApproved {
			l.State = domainLoan.StateApproved
			l.ApprovedAt = &now
			typ = notification.TypeLoanApproved
		} else {
			l.State = domainLoan.StateRejected
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		note = &notification.Notification{
			UserID:  l.UserID,
			Type:    typ,
			Amount:  l.Amount,
			Message: fmt.Sprintf("Your %s loan of %s was %s", l.Type, l.Amount.StringFixed(2), decision),
		}
		if err := ledger.Notify(ctx, r, note); err != nil {
			return err
		}

		dto = &ReviewDTO{
			ApprovalID: a.ApprovalID,
			LoanID:     l.LoanID, // public id
			Decision:   string(decision),
			ReviewerID: a.ReviewerID,
			Note:       a.Note,
			ReviewedAt: a.ReviewedAt,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	u.ledger.Publish(ctx, note)
	return dto, nil
}
