package approval

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("loan review not found")
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Table: loan_reviews. At most one per loan.
type Approval struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ApprovalID string    `gorm:"column:approval_id;size:32;not null;uniqueIndex"`
	LoanID     uint64    `gorm:"column:loan_id;not null;uniqueIndex"`
	ReviewerID string    `gorm:"column:reviewer_id;size:32;not null"`
	Decision   Decision  `gorm:"column:decision;size:16;not null"`
	Note       string    `gorm:"column:note;type:text"`
	ReviewedAt time.Time `gorm:"column:reviewed_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Approval) TableName() string { return "loan_reviews" }
