package ledger

import (
	"sacco-ledger/internal/domain/account"

	"github.com/shopspring/decimal"
)

type Op string

const (
	OpCredit Op = "credit"
	OpDebit  Op = "debit"
	OpLock   Op = "lock"
	OpUnlock Op = "unlock"
	// OpSettle releases a hold and pays it out in one step.
	OpSettle Op = "settle"
)

// Movement is one balance change against a row-locked account.
type Movement struct {
	Account *account.Account
	Op      Op
	Bucket  account.Bucket
	Amount  decimal.Decimal
}

func Credit(a *account.Account, amount decimal.Decimal, b account.Bucket) Movement {
	return Movement{Account: a, Op: OpCredit, Bucket: b, Amount: amount}
}

func Debit(a *account.Account, amount decimal.Decimal, b account.Bucket) Movement {
	return Movement{Account: a, Op: OpDebit, Bucket: b, Amount: amount}
}

func Lock(a *account.Account, amount decimal.Decimal) Movement {
	return Movement{Account: a, Op: OpLock, Amount: amount}
}

func Unlock(a *account.Account, amount decimal.Decimal) Movement {
	return Movement{Account: a, Op: OpUnlock, Amount: amount}
}

func Settle(a *account.Account, amount decimal.Decimal) Movement {
	return Movement{Account: a, Op: OpSettle, Amount: amount}
}

// AdjustInput drives a staff deposit or withdrawal on a member account.
type AdjustInput struct {
	AccountNumber string
	Amount        decimal.Decimal
	Description   string
	StaffID       string
}
