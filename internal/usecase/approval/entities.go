package approval

import (
	"time"
)

type ReviewInput struct {
	LoanID     string
	ReviewerID string // 32-char hex staff user id
	Note       string
}

type ReviewDTO struct {
	ApprovalID string    `json:"approval_id"`
	LoanID     string    `json:"loan_id"`
	Decision   string    `json:"decision"`
	ReviewerID string    `json:"reviewer_id"`
	Note       string    `json:"note,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at"`
}
