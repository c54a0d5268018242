package mysql

import (
	"context"
	"errors"

	accountDomain "sacco-ledger/internal/domain/account"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) Create(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) Save(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AccountRepository) GetByID(ctx context.Context, id uint64) (*accountDomain.Account, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*accountDomain.Account, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*accountDomain.Account, error) {
	return r.first(r.db.WithContext(ctx).Where("account_number = ? OR account_code = ?", number, number))
}

func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*accountDomain.Account, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *AccountRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*accountDomain.Account, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID))
}

func (r *AccountRepository) CreateKYC(ctx context.Context, k *accountDomain.KYC) error {
	return r.db.WithContext(ctx).Create(k).Error
}

func (r *AccountRepository) GetKYC(ctx context.Context, accountID uint64) (*accountDomain.KYC, error) {
	var out accountDomain.KYC
	res := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, accountDomain.ErrKYCNotSubmitted
	}
	return &out, res.Error
}

func (r *AccountRepository) SaveKYC(ctx context.Context, k *accountDomain.KYC) error {
	return r.db.WithContext(ctx).Save(k).Error
}

// first maps gorm's not-found onto the domain error.
func (r *AccountRepository) first(q *gorm.DB) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := q.First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, accountDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
