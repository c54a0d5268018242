// Package money holds the fixed-point helpers shared by the ledger.
// Amounts are decimal.Decimal with at most two fractional digits.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits every amount carries.
const Places = 2

// Max is the largest amount a decimal(12,2) column holds.
var Max = decimal.RequireFromString("9999999999.99")

var ErrInvalidAmount = errors.New("amount must be between 0.01 and 9999999999.99 with at most 2 decimal places")

// Validate rejects zero, negative, sub-cent and oversized amounts.
func Validate(a decimal.Decimal) error {
	if !a.IsPositive() || a.GreaterThan(Max) {
		return ErrInvalidAmount
	}
	if !a.Equal(a.Truncate(Places)) {
		return ErrInvalidAmount
	}
	return nil
}

// Parse reads a decimal string and validates it.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := Validate(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Round rounds half away from zero to cents.
func Round(a decimal.Decimal) decimal.Decimal { return a.Round(Places) }

// FromFloat converts a request float into a validated amount.
func FromFloat(f float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(f)
	if err := Validate(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
