package loan

import (
	"context"
	"errors"
	"testing"

	"sacco-ledger/internal/domain/account"
	domain "sacco-ledger/internal/domain/loan"
	"sacco-ledger/internal/domain/notification"
	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/internal/testutil/notifymock"
	"sacco-ledger/internal/testutil/testdb"
	"sacco-ledger/internal/usecase/approval"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/pkg/money"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const staff = "ffffffffffffffffffffffffffffffff"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	db      *gorm.DB
	uc      *Usecase
	reviews *approval.Usecase
	pub     *notifymock.Publisher
	acct    *account.Account
}

func setup(t *testing.T, main string) fixture {
	t.Helper()
	db, tx := testdb.Open(t)
	pub := &notifymock.Publisher{}
	l := ledger.NewUsecase(tx, pub)
	return fixture{
		db:      db,
		uc:      NewUsecase(tx, l),
		reviews: approval.NewUsecase(tx, l),
		pub:     pub,
		acct:    testdb.Seed(t, db, testdb.UserID('a'), main, "0"),
	}
}

// disbursed walks a fresh application through approval and disbursement.
func (f fixture) disbursed(t *testing.T, amount string, typ domain.Type, months int) *LoanDTO {
	t.Helper()
	ctx := context.Background()
	l, err := f.uc.Apply(ctx, ApplyInput{UserID: f.acct.UserID, Type: typ, Amount: d(amount), DurationMonths: months, Purpose: "stock"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := f.reviews.Approve(ctx, approval.ReviewInput{LoanID: l.LoanID, ReviewerID: staff}); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.uc.Disburse(ctx, DisburseInput{LoanID: l.LoanID, StaffID: staff}); err != nil {
		t.Fatalf("Disburse: %v", err)
	}
	got, err := f.uc.Get(ctx, l.LoanID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return got
}

func TestApply(t *testing.T) {
	f := setup(t, "0")
	ctx := context.Background()

	tests := []struct {
		name      string
		in        ApplyInput
		wantErr   error
		wantRate  string
		wantTotal string
	}{
		{"personal 12 months", ApplyInput{Type: domain.TypePersonal, Amount: d("120000"), DurationMonths: 12}, nil, "0.12", "134400"},
		{"business 6 months", ApplyInput{Type: domain.TypeBusiness, Amount: d("50000"), DurationMonths: 6}, nil, "0.10", "52500"},
		{"emergency 1 month", ApplyInput{Type: domain.TypeEmergency, Amount: d("1000"), DurationMonths: 1}, nil, "0.15", "1012.5"},
		{"education 60 months", ApplyInput{Type: domain.TypeEducation, Amount: d("333.33"), DurationMonths: 60}, nil, "0.08", "466.66"},
		{"unknown type", ApplyInput{Type: "holiday", Amount: d("100"), DurationMonths: 12}, domain.ErrInvalidType, "", ""},
		{"zero months", ApplyInput{Type: domain.TypePersonal, Amount: d("100"), DurationMonths: 0}, domain.ErrInvalidDuration, "", ""},
		{"61 months", ApplyInput{Type: domain.TypePersonal, Amount: d("100"), DurationMonths: 61}, domain.ErrInvalidDuration, "", ""},
		{"negative amount", ApplyInput{Type: domain.TypePersonal, Amount: d("-5"), DurationMonths: 12}, money.ErrInvalidAmount, "", ""},
		{"amount above column max", ApplyInput{Type: domain.TypePersonal, Amount: d("10000000000"), DurationMonths: 12}, money.ErrInvalidAmount, "", ""},
		{"total above column max", ApplyInput{Type: domain.TypePersonal, Amount: d("9000000000"), DurationMonths: 12}, money.ErrInvalidAmount, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.UserID = f.acct.UserID
			got, err := f.uc.Apply(ctx, tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got.State != string(domain.StatePending) || len(got.LoanID) != 32 {
				t.Fatalf("dto: %+v", got)
			}
			if !got.InterestRate.Equal(d(tc.wantRate)) || !got.TotalRepayment.Equal(d(tc.wantTotal)) {
				t.Fatalf("rate=%s total=%s, want %s %s", got.InterestRate, got.TotalRepayment, tc.wantRate, tc.wantTotal)
			}
			if _, err := f.reviews.Reject(ctx, approval.ReviewInput{LoanID: got.LoanID, ReviewerID: staff}); err != nil {
				t.Fatalf("Reject: %v", err)
			}
		})
	}
}

func TestApply_OnePendingAtATime(t *testing.T) {
	f := setup(t, "0")
	ctx := context.Background()
	in := ApplyInput{UserID: f.acct.UserID, Type: domain.TypePersonal, Amount: d("1000"), DurationMonths: 12}

	if _, err := f.uc.Apply(ctx, in); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if _, err := f.uc.Apply(ctx, in); !errors.Is(err, ErrPendingExists) {
		t.Fatalf("second Apply: want ErrPendingExists, got %v", err)
	}
	if _, err := f.uc.Apply(ctx, ApplyInput{UserID: testdb.UserID('c'), Type: domain.TypePersonal, Amount: d("1"), DurationMonths: 1}); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("no account: want ErrNotFound, got %v", err)
	}
}

func TestDisburse(t *testing.T) {
	f := setup(t, "0")
	ctx := context.Background()

	l, err := f.uc.Apply(ctx, ApplyInput{UserID: f.acct.UserID, Type: domain.TypePersonal, Amount: d("120000"), DurationMonths: 12})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := f.uc.Disburse(ctx, DisburseInput{LoanID: l.LoanID}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("disburse pending: want ErrInvalidTransition, got %v", err)
	}
	if _, err := f.reviews.Approve(ctx, approval.ReviewInput{LoanID: l.LoanID, ReviewerID: staff}); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	tx, err := f.uc.Disburse(ctx, DisburseInput{LoanID: l.LoanID, StaffID: staff})
	if err != nil {
		t.Fatalf("Disburse: %v", err)
	}
	if tx.Type != transaction.TypeLoanDisbursement || tx.SenderAccountID != nil || tx.Status != transaction.StatusCompleted {
		t.Fatalf("tx: %+v", tx)
	}
	if tx.ReceiverAccountID == nil || *tx.ReceiverAccountID != f.acct.ID || !tx.Amount.Equal(d("120000")) {
		t.Fatalf("tx receiver/amount: %+v", tx)
	}
	if got := testdb.Reload(t, f.db, f.acct.ID).MainBalance; !got.Equal(d("120000")) {
		t.Fatalf("main = %s, want 120000", got)
	}
	got, _ := f.uc.Get(ctx, l.LoanID)
	if got.State != string(domain.StateDisbursed) || got.DisbursedAt == nil {
		t.Fatalf("loan after disburse: %+v", got)
	}

	if _, err := f.uc.Disburse(ctx, DisburseInput{LoanID: l.LoanID}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second disburse: want ErrInvalidTransition, got %v", err)
	}
	if got := testdb.Reload(t, f.db, f.acct.ID).MainBalance; !got.Equal(d("120000")) {
		t.Fatalf("disbursed twice: main = %s", got)
	}
	if _, err := f.uc.Disburse(ctx, DisburseInput{LoanID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing loan: want ErrNotFound, got %v", err)
	}
}

func TestRepay_Boundary(t *testing.T) {
	f := setup(t, "0")
	ctx := context.Background()
	// 1000 at 12% over 12 months: 1120.00 due
	l := f.disbursed(t, "1000", domain.TypePersonal, 12)
	if err := f.db.Model(&account.Account{}).Where("id = ?", f.acct.ID).Update("main_balance", d("5000")).Error; err != nil {
		t.Fatalf("top up: %v", err)
	}

	first, err := f.uc.Repay(ctx, RepayInput{LoanID: l.LoanID, UserID: f.acct.UserID, Amount: d("1119.99")})
	if err != nil {
		t.Fatalf("Repay: %v", err)
	}
	if first.State != string(domain.StateDisbursed) || !first.Outstanding.Equal(d("0.01")) {
		t.Fatalf("one cent short: %+v", first)
	}

	last, err := f.uc.Repay(ctx, RepayInput{LoanID: l.LoanID, UserID: f.acct.UserID, Amount: d("0.01")})
	if err != nil {
		t.Fatalf("final Repay: %v", err)
	}
	if last.State != string(domain.StateCompleted) || !last.Outstanding.IsZero() {
		t.Fatalf("exact remainder: %+v", last)
	}
	if got := testdb.Reload(t, f.db, f.acct.ID).MainBalance; !got.Equal(d("3880")) {
		t.Fatalf("main = %s, want 3880", got)
	}
	if n := testdb.Count(t, f.db, &domain.Repayment{}); n != 2 {
		t.Fatalf("repayments = %d, want 2", n)
	}
	if _, err := f.uc.Repay(ctx, RepayInput{LoanID: l.LoanID, UserID: f.acct.UserID, Amount: d("1")}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("repay completed loan: want ErrInvalidTransition, got %v", err)
	}
}

func TestRepay_ExactTotalCompletes(t *testing.T) {
	f := setup(t, "0")
	l := f.disbursed(t, "1000", domain.TypePersonal, 12)
	if err := f.db.Model(&account.Account{}).Where("id = ?", f.acct.ID).Update("main_balance", d("1120")).Error; err != nil {
		t.Fatalf("top up: %v", err)
	}
	got, err := f.uc.Repay(context.Background(), RepayInput{LoanID: l.LoanID, UserID: f.acct.UserID, Amount: d("1120")})
	if err != nil {
		t.Fatalf("Repay: %v", err)
	}
	if got.State != string(domain.StateCompleted) {
		t.Fatalf("state = %s, want completed", got.State)
	}
	if main := testdb.Reload(t, f.db, f.acct.ID).MainBalance; !main.IsZero() {
		t.Fatalf("main = %s, want 0", main)
	}
}

func TestRepay_InsufficientFundsLeavesNoTrace(t *testing.T) {
	f := setup(t, "0")
	ctx := context.Background()
	l := f.disbursed(t, "1000", domain.TypePersonal, 12) // main is now 1000

	_, err := f.uc.Repay(ctx, RepayInput{LoanID: l.LoanID, UserID: f.acct.UserID, Amount: d("1000.01")})
	if !errors.Is(err, account.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if got := testdb.Reload(t, f.db, f.acct.ID).MainBalance; !got.Equal(d("1000")) {
		t.Fatalf("main = %s, want 1000", got)
	}
	if n := testdb.Count(t, f.db, &domain.Repayment{}); n != 0 {
		t.Fatalf("repayments = %d, want 0", n)
	}
	after, _ := f.uc.Get(ctx, l.LoanID)
	if !after.AmountRepaid.IsZero() {
		t.Fatalf("amount repaid = %s", after.AmountRepaid)
	}
	var repayTx int64
	f.db.Model(&transaction.Transaction{}).Where("type = ?", transaction.TypeLoanRepayment).Count(&repayTx)
	if repayTx != 0 {
		t.Fatalf("repayment transactions = %d, want 0", repayTx)
	}
}

func TestRepay_OtherMembersLoan(t *testing.T) {
	f := setup(t, "0")
	l := f.disbursed(t, "1000", domain.TypePersonal, 12)
	other := testdb.Seed(t, f.db, testdb.UserID('b'), "5000", "0")

	_, err := f.uc.Repay(context.Background(), RepayInput{LoanID: l.LoanID, UserID: other.UserID, Amount: d("10")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestLoan_Notifications(t *testing.T) {
	f := setup(t, "0")
	l := f.disbursed(t, "1000", domain.TypeEducation, 6)
	if _, err := f.uc.Repay(context.Background(), RepayInput{LoanID: l.LoanID, UserID: f.acct.UserID, Amount: d("100")}); err != nil {
		t.Fatalf("Repay: %v", err)
	}
	want := []notification.Type{notification.TypeLoanApproved, notification.TypeLoanDisbursed, notification.TypeLoanRepayment}
	got := f.pub.Types()
	if len(got) != len(want) {
		t.Fatalf("published %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("published %v, want %v", got, want)
		}
	}

	list, err := f.uc.ListByUser(context.Background(), f.acct.UserID)
	if err != nil || len(list) != 1 || list[0].LoanID != l.LoanID {
		t.Fatalf("ListByUser: %+v, %v", list, err)
	}
}
