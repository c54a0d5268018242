package mobilemoney

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownReference        = errors.New("unknown webhook reference")
	ErrDuplicateReconciliation = errors.New("mobile money transaction already reconciled")
	ErrInvalidPhone            = errors.New("phone number must be 12 digits starting with 256")
	ErrInvalidProvider         = errors.New("unsupported mobile money provider")
	ErrBelowMinimum            = errors.New("amount below mobile money minimum")
)

type Provider string

const (
	ProviderMTN    Provider = "mtn"
	ProviderAirtel Provider = "airtel"
)

func (p Provider) Valid() bool { return p == ProviderMTN || p == ProviderAirtel }

// MinAmount is the smallest deposit or withdrawal a provider accepts.
var MinAmount = decimal.NewFromInt(1000)

// StatusSuccessful is the provider status that settles a transaction.
const StatusSuccessful = "successful"

var rePhone = regexp.MustCompile(`^256[0-9]{9}$`)

func ValidPhone(p string) bool { return rePhone.MatchString(p) }

// Table: mobile_money_transactions. One-to-one with transactions.
type MobileMoneyTransaction struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	TransactionID uint64     `gorm:"column:transaction_id;uniqueIndex;not null" json:"-"`
	Provider      Provider   `gorm:"column:provider;size:16;not null" json:"provider"`
	PhoneNumber   string     `gorm:"column:phone_number;size:15;not null" json:"phone_number"`
	Reference     string     `gorm:"column:reference;size:64;uniqueIndex;not null" json:"reference"`
	Reconciled    bool       `gorm:"column:reconciled;not null;default:false" json:"reconciled"`
	ReconciledAt  *time.Time `gorm:"column:reconciled_at" json:"reconciled_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MobileMoneyTransaction) TableName() string { return "mobile_money_transactions" }

// Direction tells the provider which way money moves.
type Direction string

const (
	DirectionCollection Direction = "collection"
	DirectionPayout     Direction = "payout"
)

type GatewayRequest struct {
	Direction Direction
	Provider  Provider
	Phone     string
	Amount    decimal.Decimal
}

// Gateway is the external provider; it answers with its own reference
// and later reports the outcome through the webhook.
type Gateway interface {
	Initiate(ctx context.Context, req GatewayRequest) (reference string, err error)
}
