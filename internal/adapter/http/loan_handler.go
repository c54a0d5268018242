package http

import (
	"errors"
	"net/http"

	"sacco-ledger/internal/domain/identity"
	domainLoan "sacco-ledger/internal/domain/loan"
	"sacco-ledger/internal/usecase/loan"
	"sacco-ledger/pkg/money"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type applyLoanReq struct {
	Type           string  `json:"loan_type"       validate:"required,oneof=personal business emergency education"`
	Amount         float64 `json:"amount"          validate:"required,gt=0,dec2"`
	DurationMonths int     `json:"duration_months" validate:"required,gte=1,lte=60"`
	Purpose        string  `json:"purpose"         validate:"max=500"`
}

func (h *LoanHandler) Apply(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	var req applyLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	amount, err := money.FromFloat(req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	dto, err := h.uc.Apply(c.Request().Context(), loan.ApplyInput{
		UserID:         id.UserID,
		Type:           domainLoan.Type(req.Type),
		Amount:         amount,
		DurationMonths: req.DurationMonths,
		Purpose:        req.Purpose,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ListByUser(c.Request().Context(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": out})
}

// Get shows a loan to its owner or to staff who review loans. Anyone else
// gets 404 so loan ids cannot be probed.
func (h *LoanHandler) Get(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	if dto.UserID != id.UserID && !id.Can(identity.CanApproveLoans) {
		return respondError(c, domainLoan.ErrNotFound)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Disburse(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	tx, err := h.uc.Disburse(c.Request().Context(), loan.DisburseInput{LoanID: loanID, StaffID: id.UserID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tx)
}

type repayReq struct {
	Amount float64 `json:"amount" validate:"required,gt=0,dec2"`
}

func (h *LoanHandler) Repay(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	loanID, ok := pathID(c, "loan_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	var req repayReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	amount, err := money.FromFloat(req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	dto, err := h.uc.Repay(c.Request().Context(), loan.RepayInput{LoanID: loanID, UserID: id.UserID, Amount: amount})
	if errors.Is(err, domainLoan.ErrInvalidTransition) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "loan is not open for repayment"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}
