package mysql

import (
	"context"
	"errors"

	mmDomain "sacco-ledger/internal/domain/mobilemoney"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MobileMoneyRepository struct{ db *gorm.DB }

func NewMobileMoneyRepository(db *gorm.DB) *MobileMoneyRepository {
	return &MobileMoneyRepository{db: db}
}

func (r *MobileMoneyRepository) Create(ctx context.Context, m *mmDomain.MobileMoneyTransaction) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MobileMoneyRepository) Save(ctx context.Context, m *mmDomain.MobileMoneyTransaction) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MobileMoneyRepository) GetByReference(ctx context.Context, ref string) (*mmDomain.MobileMoneyTransaction, error) {
	return r.first(r.db.WithContext(ctx).Where("reference = ?", ref))
}

func (r *MobileMoneyRepository) GetByReferenceForUpdate(ctx context.Context, ref string) (*mmDomain.MobileMoneyTransaction, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("reference = ?", ref))
}

func (r *MobileMoneyRepository) first(q *gorm.DB) (*mmDomain.MobileMoneyTransaction, error) {
	var out mmDomain.MobileMoneyTransaction
	res := q.First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, mmDomain.ErrUnknownReference
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
