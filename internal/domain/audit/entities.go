// Package audit records requests made by non-member roles.
package audit

import (
	"context"
	"time"
)

// Table: audit_logs
type Entry struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;size:32;index;not null" json:"user_id"`
	Role      string    `gorm:"column:role;size:16;not null" json:"role"`
	Method    string    `gorm:"column:method;size:8;not null" json:"method"`
	Path      string    `gorm:"column:path;size:255;not null" json:"path"`
	Status    int       `gorm:"column:status;not null" json:"status"`
	IPAddress string    `gorm:"column:ip_address;size:45" json:"ip_address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Entry) TableName() string { return "audit_logs" }

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	// Newest first.
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
