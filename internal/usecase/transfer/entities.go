package transfer

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrSelfTransfer = errors.New("cannot transfer to own account")

type InitiateInput struct {
	SenderUserID string
	// Receiver is an exact account number or account code.
	Receiver    string
	Amount      decimal.Decimal
	Description string
}

type ConfirmInput struct {
	TransactionID string
	SenderUserID  string
	PIN           string
}
