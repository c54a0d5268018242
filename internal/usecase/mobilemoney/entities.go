package mobilemoney

import (
	"sacco-ledger/internal/domain/mobilemoney"
	"sacco-ledger/internal/domain/transaction"

	"github.com/shopspring/decimal"
)

type RequestInput struct {
	UserID   string
	Phone    string
	Provider mobilemoney.Provider
	Amount   decimal.Decimal
}

// Result pairs the ledger transaction with the provider reference the
// webhook will quote back.
type Result struct {
	Transaction *transaction.Transaction
	Reference   string
}
