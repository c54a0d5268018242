package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("account not found")
	ErrExists            = errors.New("account already exists for user")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrLockUnderflow     = errors.New("unlock amount exceeds locked funds")
	ErrInvalidBucket     = errors.New("invalid balance bucket")
	ErrWrongPin          = errors.New("wrong pin")
	ErrPinNotSet         = errors.New("pin not set")
	ErrKYCNotSubmitted   = errors.New("kyc not submitted")
	ErrKYCConfirmed      = errors.New("kyc already confirmed")
)

type Status string

const (
	StatusInactive Status = "in-active"
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
)

// Bucket selects which balance a credit or debit touches.
type Bucket string

const (
	BucketMain        Bucket = "main"
	BucketMobileMoney Bucket = "mobile_money"
)

// Table: accounts. One row per member, created on registration.
type Account struct {
	ID                 uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	AccountNumber      string          `gorm:"column:account_number;size:10;uniqueIndex;not null" json:"account_number"`
	AccountCode        string          `gorm:"column:account_code;size:10;uniqueIndex;not null" json:"account_code"`
	UserID             string          `gorm:"column:user_id;size:32;uniqueIndex;not null" json:"user_id"`
	MainBalance        decimal.Decimal `gorm:"column:main_balance;type:decimal(12,2);not null;default:0" json:"main_balance"`
	MobileMoneyBalance decimal.Decimal `gorm:"column:mobile_money_balance;type:decimal(12,2);not null;default:0" json:"mobile_money_balance"`
	LockedFunds        decimal.Decimal `gorm:"column:locked_funds;type:decimal(12,2);not null;default:0" json:"locked_funds"`
	Status             Status          `gorm:"column:status;size:20;not null;default:'in-active'" json:"status"`
	KYCSubmitted       bool            `gorm:"column:kyc_submitted;not null;default:false" json:"kyc_submitted"`
	KYCConfirmed       bool            `gorm:"column:kyc_confirmed;not null;default:false" json:"kyc_confirmed"`
	PinHash            string          `gorm:"column:pin_hash;size:72" json:"-"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"-"`
}

func (Account) TableName() string { return "accounts" }

// Available is main + mobile money minus whatever is held for pending payouts.
func (a *Account) Available() decimal.Decimal {
	return a.MainBalance.Add(a.MobileMoneyBalance).Sub(a.LockedFunds)
}

// Table: kyc_records
type KYC struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	AccountID    uint64    `gorm:"column:account_id;uniqueIndex;not null" json:"-"`
	FullName     string    `gorm:"column:full_name;size:255;not null" json:"full_name"`
	IdentityType string    `gorm:"column:identity_type;size:40;not null" json:"identity_type"`
	IdentityNo   string    `gorm:"column:identity_no;size:64;not null" json:"identity_no"`
	DateOfBirth  time.Time `gorm:"column:date_of_birth;type:date;not null" json:"date_of_birth"`
	Mobile       string    `gorm:"column:mobile;size:20;not null" json:"mobile"`
	ConfirmedBy  *string   `gorm:"column:confirmed_by;size:32" json:"confirmed_by,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (KYC) TableName() string { return "kyc_records" }

// Identity document types accepted on KYC submission.
var IdentityTypes = map[string]bool{
	"national_id_card":       true,
	"refugee_id_card":        true,
	"drivers_license":        true,
	"international_passport": true,
}

// PinCost is the bcrypt cost used for PIN hashes. Tests lower it.
var PinCost = bcrypt.DefaultCost

func HashPIN(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), PinCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPIN compares pin against the stored hash.
func (a *Account) CheckPIN(pin string) error {
	if a.PinHash == "" {
		return ErrPinNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PinHash), []byte(pin)); err != nil {
		return ErrWrongPin
	}
	return nil
}
