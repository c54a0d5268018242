package http

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sacco-ledger/internal/adapter/middleware"
	"sacco-ledger/internal/adapter/repository/mysql"
	"sacco-ledger/internal/domain/account"
	"sacco-ledger/internal/domain/audit"
	"sacco-ledger/internal/domain/identity"
	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/internal/infrastructure/auth"
	"sacco-ledger/internal/infrastructure/gateway"
	"sacco-ledger/internal/infrastructure/metrics"
	"sacco-ledger/internal/testutil/notifymock"
	"sacco-ledger/internal/testutil/testdb"
	ucAccount "sacco-ledger/internal/usecase/account"
	ucApproval "sacco-ledger/internal/usecase/approval"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/internal/usecase/loan"
	ucMobile "sacco-ledger/internal/usecase/mobilemoney"
	"sacco-ledger/internal/usecase/transfer"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const webhookSecret = "provider-shared-secret"

func init() { account.PinCost = 4 }

var (
	memberA = identity.Identity{UserID: testdb.UserID('a'), Role: identity.RoleMember}
	memberB = identity.Identity{UserID: testdb.UserID('b'), Role: identity.RoleMember}
	officer = identity.Identity{UserID: testdb.UserID('c'), Role: identity.RoleStaff}
	admin   = identity.Identity{UserID: testdb.UserID('d'), Role: identity.RoleAdmin}
)

type testAPI struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
	jm *auth.JWTManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, tx := testdb.Open(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("metrics: %v", err)
	}

	l := ledger.NewUsecase(tx, &notifymock.Publisher{})
	jm := auth.NewJWTManager("router-test-secret", time.Hour)
	e := echo.New()
	Register(e, Services{
		Accounts:    ucAccount.NewUsecase(tx, l),
		Ledger:      l,
		Transfers:   transfer.NewUsecase(tx, l),
		MobileMoney: ucMobile.NewUsecase(tx, l, gateway.NewSimulator()),
		Loans:       loan.NewUsecase(tx, l),
		Approvals:   ucApproval.NewUsecase(tx, l),
	}, RouterConfig{
		Tokens:         jm,
		Redis:          rdb,
		IdempotencyTTL: time.Minute,
		WebhookSecret:  webhookSecret,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Audit:          mysql.NewAuditRepository(db),
	})
	return &testAPI{t: t, e: e, db: db, jm: jm}
}

func (a *testAPI) send(method, path string, as *identity.Identity, body any, hdr map[string]string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if as != nil {
		tok, err := a.jm.Generate(*as)
		if err != nil {
			a.t.Fatalf("token: %v", err)
		}
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	req.Header.Set(middleware.HeaderIdempotencyKey, uuid.NewString())
	req.Header.Set(middleware.HeaderRequestAt, time.Now().UTC().Format(time.RFC3339))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) do(method, path string, as identity.Identity, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.send(method, path, &as, body, nil)
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int, out any) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
}

func (a *testAPI) webhook(ref, status, secret string) *httptest.ResponseRecorder {
	a.t.Helper()
	body, _ := json.Marshal(map[string]string{"tx_ref": ref, "status": status})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/mobile-money", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set(HeaderWebhookSignature, hex.EncodeToString(Sign([]byte(secret), body)))
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type txResp struct {
	TransactionID string             `json:"transaction_id"`
	Status        transaction.Status `json:"status"`
	Amount        decimal.Decimal    `json:"amount"`
}

func TestRouter_PublicAndAuth(t *testing.T) {
	api := newTestAPI(t)

	expect(t, api.send(http.MethodGet, "/health", nil, nil, nil), http.StatusOK, nil)
	expect(t, api.send(http.MethodGet, "/accounts/me", nil, nil, nil), http.StatusUnauthorized, nil)
	expect(t, api.send(http.MethodGet, "/accounts/me", nil, nil, map[string]string{echo.HeaderAuthorization: "Bearer forged"}), http.StatusUnauthorized, nil)

	expect(t, api.send(http.MethodGet, "/metrics", nil, nil, nil), http.StatusOK, nil)
}

func TestRouter_OpenAccountAndKYC(t *testing.T) {
	api := newTestAPI(t)

	var opened account.Account
	expect(t, api.do(http.MethodPost, "/accounts", memberA, nil), http.StatusCreated, &opened)
	if !strings.HasPrefix(opened.AccountNumber, "217") || opened.Status != account.StatusInactive {
		t.Fatalf("unexpected account: %+v", opened)
	}
	expect(t, api.do(http.MethodPost, "/accounts", memberA, nil), http.StatusConflict, nil)

	kyc := map[string]any{
		"full_name":     "Nakato Sarah",
		"identity_type": "national_id_card",
		"identity_no":   "CM9001234ABCD",
		"date_of_birth": "1990-04-12",
		"mobile":        "256772000111",
	}
	kyc["identity_type"] = "library_card"
	expect(t, api.do(http.MethodPost, "/accounts/me/kyc", memberA, kyc), http.StatusBadRequest, nil)
	kyc["identity_type"] = "national_id_card"
	expect(t, api.do(http.MethodPost, "/accounts/me/kyc", memberA, kyc), http.StatusAccepted, nil)

	confirm := "/accounts/" + opened.AccountNumber + "/kyc/confirm"
	expect(t, api.do(http.MethodPost, confirm, memberA, nil), http.StatusForbidden, nil)
	var active account.Account
	expect(t, api.do(http.MethodPost, confirm, officer, nil), http.StatusOK, &active)
	if active.Status != account.StatusActive || !active.KYCConfirmed {
		t.Fatalf("account not activated: %+v", active)
	}
	expect(t, api.do(http.MethodPost, confirm, officer, nil), http.StatusConflict, nil)
}

func TestRouter_TransferFlow(t *testing.T) {
	api := newTestAPI(t)
	testdb.Seed(t, api.db, memberA.UserID, "10000", "0")
	b := testdb.Seed(t, api.db, memberB.UserID, "0", "0")

	expect(t, api.do(http.MethodPut, "/accounts/me/pin", memberA, map[string]string{"pin": "1234"}), http.StatusNoContent, nil)

	body := map[string]any{"receiver_account": b.AccountNumber, "amount": 2500}
	key := map[string]string{middleware.HeaderIdempotencyKey: uuid.NewString()}
	first := api.send(http.MethodPost, "/transfers", &memberA, body, key)
	var tx txResp
	expect(t, first, http.StatusCreated, &tx)
	if tx.Status != transaction.StatusProcessing {
		t.Fatalf("initiated status = %s", tx.Status)
	}
	replay := api.send(http.MethodPost, "/transfers", &memberA, body, key)
	expect(t, replay, http.StatusCreated, nil)
	if replay.Body.String() != first.Body.String() {
		t.Fatalf("replay differs:\n%s\n%s", first.Body.String(), replay.Body.String())
	}
	if n := testdb.Count(t, api.db, &transaction.Transaction{}); n != 1 {
		t.Fatalf("transactions = %d, want 1", n)
	}

	confirm := "/transfers/" + tx.TransactionID + "/confirm"
	expect(t, api.do(http.MethodPost, confirm, memberB, map[string]string{"pin": "1234"}), http.StatusNotFound, nil)
	expect(t, api.do(http.MethodPost, confirm, memberA, map[string]string{"pin": "9999"}), http.StatusUnprocessableEntity, nil)
	var done txResp
	expect(t, api.do(http.MethodPost, confirm, memberA, map[string]string{"pin": "1234"}), http.StatusOK, &done)
	if done.Status != transaction.StatusCompleted {
		t.Fatalf("confirmed status = %s", done.Status)
	}
	expect(t, api.do(http.MethodPost, confirm, memberA, map[string]string{"pin": "1234"}), http.StatusConflict, nil)

	var me account.Account
	expect(t, api.do(http.MethodGet, "/accounts/me", memberA, nil), http.StatusOK, &me)
	if !me.MainBalance.Equal(decimal.NewFromInt(7500)) {
		t.Fatalf("sender main = %s", me.MainBalance)
	}
	if got := testdb.Reload(t, api.db, b.ID).MainBalance; !got.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("receiver main = %s", got)
	}

	var notes struct {
		Notifications []struct {
			Type string `json:"type"`
		} `json:"notifications"`
	}
	expect(t, api.do(http.MethodGet, "/accounts/me/notifications", memberB, nil), http.StatusOK, &notes)
	if len(notes.Notifications) != 1 || notes.Notifications[0].Type != "Credit Alert" {
		t.Fatalf("receiver notifications = %+v", notes.Notifications)
	}

	var hist struct {
		Transactions []txResp `json:"transactions"`
	}
	expect(t, api.do(http.MethodGet, "/accounts/me/transactions?limit=5", memberA, nil), http.StatusOK, &hist)
	if len(hist.Transactions) != 1 || hist.Transactions[0].TransactionID != tx.TransactionID {
		t.Fatalf("history = %+v", hist.Transactions)
	}
}

func TestRouter_MobileMoneyWebhook(t *testing.T) {
	api := newTestAPI(t)
	b := testdb.Seed(t, api.db, memberB.UserID, "0", "0")

	bad := map[string]any{"phone_number": "256700000001", "provider": "mpesa", "amount": 2000}
	expect(t, api.do(http.MethodPost, "/mobile-money/deposits", memberB, bad), http.StatusUnprocessableEntity, nil)
	small := map[string]any{"phone_number": "256700000001", "provider": "mtn", "amount": 999}
	expect(t, api.do(http.MethodPost, "/mobile-money/deposits", memberB, small), http.StatusBadRequest, nil)

	var res struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	}
	req := map[string]any{"phone_number": "256700000001", "provider": "mtn", "amount": 2000}
	expect(t, api.do(http.MethodPost, "/mobile-money/deposits", memberB, req), http.StatusAccepted, &res)
	if !strings.HasPrefix(res.Reference, "MTN-") || res.Status != string(transaction.StatusPending) {
		t.Fatalf("unexpected result: %+v", res)
	}

	var ack map[string]string
	expect(t, api.webhook(res.Reference, "successful", ""), http.StatusBadRequest, &ack)
	expect(t, api.webhook(res.Reference, "successful", "wrong-secret"), http.StatusBadRequest, nil)
	if ack["status"] != "failed" {
		t.Fatalf("unsigned ack = %v", ack)
	}

	expect(t, api.webhook(res.Reference, "successful", webhookSecret), http.StatusOK, &ack)
	if ack["status"] != "success" {
		t.Fatalf("ack = %v", ack)
	}
	expect(t, api.webhook(res.Reference, "successful", webhookSecret), http.StatusOK, &ack)
	expect(t, api.webhook("MTN-unknown", "successful", webhookSecret), http.StatusBadRequest, nil)

	got := testdb.Reload(t, api.db, b.ID)
	if !got.MobileMoneyBalance.Equal(decimal.NewFromInt(2000)) || !got.MainBalance.IsZero() {
		t.Fatalf("balances after duplicate webhook: main=%s mm=%s", got.MainBalance, got.MobileMoneyBalance)
	}
}

func TestRouter_LoanLifecycle(t *testing.T) {
	api := newTestAPI(t)
	a := testdb.Seed(t, api.db, memberA.UserID, "10000", "0")
	testdb.Seed(t, api.db, memberB.UserID, "0", "0")

	var dto loan.LoanDTO
	apply := map[string]any{"loan_type": "personal", "amount": 120000, "duration_months": 12, "purpose": "stock"}
	expect(t, api.do(http.MethodPost, "/loans", memberA, apply), http.StatusCreated, &dto)
	if !dto.TotalRepayment.Equal(decimal.NewFromInt(134400)) || dto.State != "pending" {
		t.Fatalf("unexpected loan: %+v", dto)
	}
	expect(t, api.do(http.MethodPost, "/loans", memberA, apply), http.StatusConflict, nil)

	path := "/loans/" + dto.LoanID
	expect(t, api.do(http.MethodGet, path, memberB, nil), http.StatusNotFound, nil)
	expect(t, api.do(http.MethodGet, path, officer, nil), http.StatusOK, nil)
	expect(t, api.do(http.MethodPost, path+"/approve", memberA, nil), http.StatusForbidden, nil)
	expect(t, api.do(http.MethodPost, path+"/disburse", admin, nil), http.StatusConflict, nil)

	var review ucApproval.ReviewDTO
	expect(t, api.do(http.MethodPost, path+"/approve", officer, map[string]string{"note": "ok"}), http.StatusOK, &review)
	if review.Decision != "approved" || review.ReviewerID != officer.UserID {
		t.Fatalf("review = %+v", review)
	}
	expect(t, api.do(http.MethodPost, path+"/reject", officer, nil), http.StatusConflict, nil)

	expect(t, api.do(http.MethodPost, path+"/disburse", officer, nil), http.StatusForbidden, nil)
	var disb txResp
	expect(t, api.do(http.MethodPost, path+"/disburse", admin, nil), http.StatusOK, &disb)
	if disb.Status != transaction.StatusCompleted || !disb.Amount.Equal(decimal.NewFromInt(120000)) {
		t.Fatalf("disbursement = %+v", disb)
	}
	if got := testdb.Reload(t, api.db, a.ID).MainBalance; !got.Equal(decimal.NewFromInt(130000)) {
		t.Fatalf("main after disbursement = %s", got)
	}

	expect(t, api.do(http.MethodPost, path+"/repayments", memberB, map[string]any{"amount": 100}), http.StatusNotFound, nil)
	var paid loan.RepaymentDTO
	expect(t, api.do(http.MethodPost, path+"/repayments", memberA, map[string]any{"amount": 1000}), http.StatusCreated, &paid)
	if !paid.Outstanding.Equal(decimal.NewFromInt(133400)) || paid.State != "disbursed" {
		t.Fatalf("repayment = %+v", paid)
	}

	var list struct {
		Loans []loan.LoanDTO `json:"loans"`
	}
	expect(t, api.do(http.MethodGet, "/loans", memberA, nil), http.StatusOK, &list)
	if len(list.Loans) != 1 || !list.Loans[0].AmountRepaid.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("loans = %+v", list.Loans)
	}
}

func TestRouter_StaffAdjustments(t *testing.T) {
	api := newTestAPI(t)
	a := testdb.Seed(t, api.db, memberA.UserID, "100", "0")
	path := "/accounts/" + a.AccountNumber

	expect(t, api.do(http.MethodPost, path+"/deposits", officer, map[string]any{"amount": 50}), http.StatusForbidden, nil)
	expect(t, api.do(http.MethodPost, path+"/deposits", admin, map[string]any{"amount": 50.25}), http.StatusCreated, nil)
	expect(t, api.do(http.MethodPost, path+"/withdrawals", admin, map[string]any{"amount": 500}), http.StatusUnprocessableEntity, nil)
	expect(t, api.do(http.MethodPost, "/accounts/2170000000/deposits", admin, map[string]any{"amount": 1}), http.StatusNotFound, nil)
	expect(t, api.do(http.MethodPost, path+"/deposits", admin, map[string]any{"amount": 1e12}), http.StatusBadRequest, nil)

	if got := testdb.Reload(t, api.db, a.ID).MainBalance; !got.Equal(decimal.RequireFromString("150.25")) {
		t.Fatalf("main = %s", got)
	}
}

func TestRouter_ConfirmKeyReuseAcrossTransactions(t *testing.T) {
	api := newTestAPI(t)
	testdb.Seed(t, api.db, memberA.UserID, "10000", "0")
	b := testdb.Seed(t, api.db, memberB.UserID, "0", "0")
	expect(t, api.do(http.MethodPut, "/accounts/me/pin", memberA, map[string]string{"pin": "1234"}), http.StatusNoContent, nil)

	var t1, t2 txResp
	body := map[string]any{"receiver_account": b.AccountNumber, "amount": 1000}
	expect(t, api.do(http.MethodPost, "/transfers", memberA, body), http.StatusCreated, &t1)
	expect(t, api.do(http.MethodPost, "/transfers", memberA, body), http.StatusCreated, &t2)

	key := map[string]string{middleware.HeaderIdempotencyKey: uuid.NewString()}
	pin := map[string]string{"pin": "1234"}
	var done txResp
	expect(t, api.send(http.MethodPost, "/transfers/"+t1.TransactionID+"/confirm", &memberA, pin, key), http.StatusOK, &done)
	if done.TransactionID != t1.TransactionID || done.Status != transaction.StatusCompleted {
		t.Fatalf("first confirm = %+v", done)
	}

	expect(t, api.send(http.MethodPost, "/transfers/"+t2.TransactionID+"/confirm", &memberA, pin, key), http.StatusConflict, nil)
	var stored transaction.Transaction
	if err := api.db.Where("transaction_id = ?", t2.TransactionID).First(&stored).Error; err != nil {
		t.Fatalf("load t2: %v", err)
	}
	if stored.Status != transaction.StatusProcessing {
		t.Fatalf("t2 status = %s, want processing", stored.Status)
	}

	expect(t, api.do(http.MethodPost, "/transfers/"+t2.TransactionID+"/confirm", memberA, pin), http.StatusOK, &done)
	if done.TransactionID != t2.TransactionID || done.Status != transaction.StatusCompleted {
		t.Fatalf("second confirm = %+v", done)
	}
}

func TestRouter_TransactionDetail(t *testing.T) {
	api := newTestAPI(t)
	testdb.Seed(t, api.db, memberA.UserID, "5000", "0")
	b := testdb.Seed(t, api.db, memberB.UserID, "0", "0")
	testdb.Seed(t, api.db, admin.UserID, "0", "0")
	expect(t, api.do(http.MethodPut, "/accounts/me/pin", memberA, map[string]string{"pin": "1234"}), http.StatusNoContent, nil)

	var tx txResp
	expect(t, api.do(http.MethodPost, "/transfers", memberA, map[string]any{"receiver_account": b.AccountNumber, "amount": 1500}), http.StatusCreated, &tx)
	path := "/transactions/" + tx.TransactionID

	var got txResp
	expect(t, api.do(http.MethodGet, path, memberA, nil), http.StatusOK, &got)
	if got.TransactionID != tx.TransactionID || got.Status != transaction.StatusProcessing {
		t.Fatalf("sender view = %+v", got)
	}
	expect(t, api.do(http.MethodGet, path, memberB, nil), http.StatusOK, &got)
	expect(t, api.do(http.MethodGet, path, admin, nil), http.StatusNotFound, nil)
	expect(t, api.do(http.MethodGet, "/transactions/not-hex", memberA, nil), http.StatusBadRequest, nil)
	expect(t, api.send(http.MethodGet, path, nil, nil, nil), http.StatusUnauthorized, nil)
}

func TestRouter_AuditLogs(t *testing.T) {
	api := newTestAPI(t)
	a := testdb.Seed(t, api.db, memberA.UserID, "0", "0")

	expect(t, api.do(http.MethodGet, "/accounts/me", memberA, nil), http.StatusOK, nil)
	deposit := "/accounts/" + a.AccountNumber + "/deposits"
	expect(t, api.do(http.MethodPost, deposit, officer, map[string]any{"amount": 100}), http.StatusForbidden, nil)
	expect(t, api.do(http.MethodPost, deposit, admin, map[string]any{"amount": 100}), http.StatusCreated, nil)

	expect(t, api.do(http.MethodGet, "/audit-logs", officer, nil), http.StatusForbidden, nil)
	var out struct {
		Logs []struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
			Path   string `json:"path"`
			Status int    `json:"status"`
		} `json:"audit_logs"`
	}
	expect(t, api.do(http.MethodGet, "/audit-logs", admin, nil), http.StatusOK, &out)

	// Newest first; the listing itself is recorded after it responds.
	want := []struct {
		user   string
		status int
	}{
		{officer.UserID, http.StatusForbidden},
		{admin.UserID, http.StatusCreated},
		{officer.UserID, http.StatusForbidden},
	}
	if len(out.Logs) != len(want) {
		t.Fatalf("audit logs = %+v", out.Logs)
	}
	for i, w := range want {
		if out.Logs[i].UserID != w.user || out.Logs[i].Status != w.status {
			t.Fatalf("log %d = %+v, want user %s status %d", i, out.Logs[i], w.user, w.status)
		}
	}
	if out.Logs[1].Path != deposit || out.Logs[1].Role != string(identity.RoleAdmin) {
		t.Fatalf("deposit entry = %+v", out.Logs[1])
	}
	for _, l := range out.Logs {
		if l.UserID == memberA.UserID {
			t.Fatalf("member request audited: %+v", l)
		}
	}
	if n := testdb.Count(t, api.db, &audit.Entry{}); n != 4 {
		t.Fatalf("audit rows = %d, want 4", n)
	}
}
