package mysql

import (
	"context"

	"sacco-ledger/internal/domain/audit"

	"gorm.io/gorm"
)

// AuditRepository writes outside the ledger unit of work so a failed
// mutation is still recorded.
type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []audit.Entry
	res := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out)
	return out, res.Error
}
