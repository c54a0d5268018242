package mysql

import (
	"context"
	"errors"

	txDomain "sacco-ledger/internal/domain/transaction"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *txDomain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) Save(ctx context.Context, t *txDomain.Transaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*txDomain.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Where("transaction_id = ?", transactionID))
}

func (r *TransactionRepository) GetByTransactionIDForUpdate(ctx context.Context, transactionID string) (*txDomain.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("transaction_id = ?", transactionID))
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uint64) (*txDomain.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*txDomain.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uint64, limit int) ([]txDomain.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []txDomain.Transaction
	res := r.db.WithContext(ctx).
		Where("sender_account_id = ? OR receiver_account_id = ?", accountID, accountID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out)
	return out, res.Error
}

func (r *TransactionRepository) first(q *gorm.DB) (*txDomain.Transaction, error) {
	var out txDomain.Transaction
	res := q.First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, txDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
