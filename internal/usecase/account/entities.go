package account

import (
	"errors"
	"time"
)

var (
	ErrInvalidPin          = errors.New("pin must be exactly 4 digits")
	ErrInvalidIdentityType = errors.New("unsupported identity type")
	ErrNumberExhausted     = errors.New("could not allocate a free account number")
)

type SetPINInput struct {
	UserID string
	// Current must match when a PIN is already set.
	Current string
	PIN     string
}

type KYCInput struct {
	FullName     string    `json:"full_name"`
	IdentityType string    `json:"identity_type"`
	IdentityNo   string    `json:"identity_no"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	Mobile       string    `json:"mobile"`
}
