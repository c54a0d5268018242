package account

import "github.com/shopspring/decimal"

// The methods below are the only code that changes balance fields.
// Each one validates first and mutates only on success, so a failed
// call leaves the account exactly as it was.

func (a *Account) Credit(amount decimal.Decimal, b Bucket) error {
	switch b {
	case BucketMain:
		a.MainBalance = a.MainBalance.Add(amount)
	case BucketMobileMoney:
		a.MobileMoneyBalance = a.MobileMoneyBalance.Add(amount)
	default:
		return ErrInvalidBucket
	}
	return nil
}

// Debit never lets a bucket or the available balance go negative.
func (a *Account) Debit(amount decimal.Decimal, b Bucket) error {
	if amount.GreaterThan(a.Available()) {
		return ErrInsufficientFunds
	}
	switch b {
	case BucketMain:
		if amount.GreaterThan(a.MainBalance) {
			return ErrInsufficientFunds
		}
		a.MainBalance = a.MainBalance.Sub(amount)
	case BucketMobileMoney:
		if amount.GreaterThan(a.MobileMoneyBalance) {
			return ErrInsufficientFunds
		}
		a.MobileMoneyBalance = a.MobileMoneyBalance.Sub(amount)
	default:
		return ErrInvalidBucket
	}
	return nil
}

// Lock holds amount against available balance without moving money.
func (a *Account) Lock(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Available()) {
		return ErrInsufficientFunds
	}
	a.LockedFunds = a.LockedFunds.Add(amount)
	return nil
}

func (a *Account) Unlock(amount decimal.Decimal) error {
	if amount.GreaterThan(a.LockedFunds) {
		return ErrLockUnderflow
	}
	a.LockedFunds = a.LockedFunds.Sub(amount)
	return nil
}

// SettleLocked releases a hold and pays it out, drawing on the mobile
// money bucket first and the main balance for any remainder.
func (a *Account) SettleLocked(amount decimal.Decimal) error {
	if amount.GreaterThan(a.LockedFunds) {
		return ErrLockUnderflow
	}
	if amount.GreaterThan(a.MainBalance.Add(a.MobileMoneyBalance)) {
		return ErrInsufficientFunds
	}
	fromMM := decimal.Min(amount, a.MobileMoneyBalance)
	a.LockedFunds = a.LockedFunds.Sub(amount)
	a.MobileMoneyBalance = a.MobileMoneyBalance.Sub(fromMM)
	a.MainBalance = a.MainBalance.Sub(amount.Sub(fromMM))
	return nil
}

// NonNegative reports whether every bucket is at or above zero.
func (a *Account) NonNegative() bool {
	return !a.MainBalance.IsNegative() && !a.MobileMoneyBalance.IsNegative() && !a.LockedFunds.IsNegative()
}
