package mysql

import (
	"context"
	"errors"

	approvalDomain "sacco-ledger/internal/domain/approval"

	"gorm.io/gorm"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Approval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// GetByLoanID returns approvalDomain.ErrNotFound when the loan has no review yet.
func (r *ApprovalRepository) GetByLoanID(ctx context.Context, loanNumericID uint64) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		First(&out)
	return firstApproval(&out, res.Error)
}

func (r *ApprovalRepository) GetByApprovalID(ctx context.Context, approvalID string) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	res := r.db.WithContext(ctx).
		Where("approval_id = ?", approvalID).
		First(&out)
	return firstApproval(&out, res.Error)
}

func firstApproval(a *approvalDomain.Approval, err error) (*approvalDomain.Approval, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, approvalDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
