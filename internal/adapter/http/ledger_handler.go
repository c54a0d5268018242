package http

import (
	"context"
	"net/http"

	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/internal/usecase/ledger"
	"sacco-ledger/pkg/money"

	"github.com/labstack/echo/v4"
)

// LedgerHandler serves staff adjustments posted directly to a member account.
type LedgerHandler struct{ uc *ledger.Usecase }

func NewLedgerHandler(uc *ledger.Usecase) *LedgerHandler { return &LedgerHandler{uc: uc} }

type adjustReq struct {
	Amount      float64 `json:"amount"      validate:"required,gt=0,dec2"`
	Description string  `json:"description" validate:"max=255"`
}

type postFn func(context.Context, ledger.AdjustInput) (*transaction.Transaction, error)

func (h *LedgerHandler) Deposit(c echo.Context) error  { return h.adjust(c, h.uc.Deposit) }
func (h *LedgerHandler) Withdraw(c echo.Context) error { return h.adjust(c, h.uc.Withdraw) }

func (h *LedgerHandler) adjust(c echo.Context, post postFn) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	number := c.Param("account_number")
	if number == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing account_number path param"})
	}
	var req adjustReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	amount, err := money.FromFloat(req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	tx, err := post(c.Request().Context(), ledger.AdjustInput{
		AccountNumber: number,
		Amount:        amount,
		Description:   req.Description,
		StaffID:       id.UserID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, tx)
}
