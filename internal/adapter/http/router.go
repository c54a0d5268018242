package http

import (
	stdhttp "net/http"
	"time"

	"sacco-ledger/internal/adapter/middleware"
	"sacco-ledger/internal/domain/audit"
	"sacco-ledger/internal/domain/identity"
	ucAccount "sacco-ledger/internal/usecase/account"
	ucApproval "sacco-ledger/internal/usecase/approval"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/internal/usecase/loan"
	ucMobile "sacco-ledger/internal/usecase/mobilemoney"
	"sacco-ledger/internal/usecase/transfer"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Services are the usecases the routes dispatch to.
type Services struct {
	Accounts    *ucAccount.Usecase
	Ledger      *ledger.Usecase
	Transfers   *transfer.Usecase
	MobileMoney *ucMobile.Usecase
	Loans       *loan.Usecase
	Approvals   *ucApproval.Usecase
}

type RouterConfig struct {
	Tokens middleware.TokenValidator
	// Nil Redis disables request idempotency.
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	WebhookSecret  string
	DB             Pinger
	// Metrics, when set, is served on GET /metrics.
	Metrics stdhttp.Handler
	// Audit, when set, records staff and admin requests and serves
	// GET /audit-logs.
	Audit audit.Repository
}

// Register mounts every route on e and installs the validator.
func Register(e *echo.Echo, s Services, cfg RouterConfig) {
	e.Validator = NewValidator()

	health := NewHandler(cfg.DB)
	acc := NewAccountHandler(s.Accounts)
	led := NewLedgerHandler(s.Ledger)
	tr := NewTransferHandler(s.Transfers)
	mm := NewMobileMoneyHandler(s.MobileMoney, cfg.WebhookSecret)
	ln := NewLoanHandler(s.Loans)
	ap := NewApprovalHandler(s.Approvals)

	e.GET("/health", health.Health)
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}
	e.POST("/webhooks/mobile-money", mm.Webhook)

	authOnly := middleware.Auth(cfg.Tokens)
	auth := authOnly
	if cfg.Audit != nil {
		record := middleware.Audit(cfg.Audit)
		auth = func(next echo.HandlerFunc) echo.HandlerFunc { return authOnly(record(next)) }
	}
	can := middleware.RequireCapability
	idem := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if cfg.Redis != nil {
		idem = middleware.Idempotency(cfg.Redis, cfg.IdempotencyTTL)
	}
	transact := can(identity.CanTransact)

	accounts := e.Group("/accounts", auth)
	accounts.POST("", acc.Open, transact, idem)
	accounts.GET("/me", acc.Me, transact)
	accounts.PUT("/me/pin", acc.SetPIN, transact, idem)
	accounts.POST("/me/kyc", acc.SubmitKYC, transact, idem)
	accounts.GET("/me/transactions", acc.History, transact)
	accounts.GET("/me/notifications", acc.Notifications, transact)
	e.GET("/transactions/:transaction_id", acc.Transaction, auth, transact)
	accounts.POST("/:account_number/kyc/confirm", acc.ConfirmKYC, can(identity.CanConfirmKYC))
	accounts.POST("/:account_number/deposits", led.Deposit, can(identity.CanPostAdjustments), idem)
	accounts.POST("/:account_number/withdrawals", led.Withdraw, can(identity.CanPostAdjustments), idem)

	transfers := e.Group("/transfers", auth, transact)
	transfers.POST("", tr.Initiate, idem)
	transfers.POST("/:transaction_id/confirm", tr.Confirm, idem)

	mobile := e.Group("/mobile-money", auth, transact)
	mobile.POST("/deposits", mm.Deposit, idem)
	mobile.POST("/withdrawals", mm.Withdraw, idem)

	loans := e.Group("/loans", auth)
	loans.POST("", ln.Apply, transact, idem)
	loans.GET("", ln.List, transact)
	loans.GET("/:loan_id", ln.Get, transact)
	loans.POST("/:loan_id/approve", ap.ApproveLoan, can(identity.CanApproveLoans))
	loans.POST("/:loan_id/reject", ap.RejectLoan, can(identity.CanApproveLoans))
	loans.POST("/:loan_id/disburse", ln.Disburse, can(identity.CanDisburseLoans), idem)
	loans.POST("/:loan_id/repayments", ln.Repay, transact, idem)

	if cfg.Audit != nil {
		e.GET("/audit-logs", NewAuditHandler(cfg.Audit).List, auth, can(identity.CanViewAudit))
	}
}
