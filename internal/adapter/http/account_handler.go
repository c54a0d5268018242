package http

import (
	"net/http"
	"time"

	ucAccount "sacco-ledger/internal/usecase/account"

	"github.com/labstack/echo/v4"
)

type AccountHandler struct{ uc *ucAccount.Usecase }

func NewAccountHandler(uc *ucAccount.Usecase) *AccountHandler { return &AccountHandler{uc: uc} }

func (h *AccountHandler) Open(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	a, err := h.uc.Open(c.Request().Context(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AccountHandler) Me(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	a, err := h.uc.GetByUser(c.Request().Context(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

type setPINReq struct {
	Current string `json:"current_pin" validate:"omitempty,pin4"`
	PIN     string `json:"pin"         validate:"required,pin4"`
}

func (h *AccountHandler) SetPIN(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	var req setPINReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := ucAccount.SetPINInput{UserID: id.UserID, Current: req.Current, PIN: req.PIN}
	if err := h.uc.SetPIN(c.Request().Context(), in); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type kycReq struct {
	FullName     string `json:"full_name"     validate:"required,max=150"`
	IdentityType string `json:"identity_type" validate:"required"`
	IdentityNo   string `json:"identity_no"   validate:"required,max=64"`
	DateOfBirth  string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Mobile       string `json:"mobile"        validate:"required,phone256"`
}

func (h *AccountHandler) SubmitKYC(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	var req kycReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dob, _ := time.Parse("2006-01-02", req.DateOfBirth)
	k, err := h.uc.SubmitKYC(c.Request().Context(), id.UserID, ucAccount.KYCInput{
		FullName:     req.FullName,
		IdentityType: req.IdentityType,
		IdentityNo:   req.IdentityNo,
		DateOfBirth:  dob,
		Mobile:       req.Mobile,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, k)
}

// ConfirmKYC is the staff side of KYC; it activates the account.
func (h *AccountHandler) ConfirmKYC(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	number := c.Param("account_number")
	if number == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing account_number path param"})
	}
	a, err := h.uc.ConfirmKYC(c.Request().Context(), number, id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AccountHandler) History(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	txs, err := h.uc.History(c.Request().Context(), id.UserID, queryLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": txs})
}

// Transaction is visible to the sender, receiver or initiator only.
func (h *AccountHandler) Transaction(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	txID, ok := pathID(c, "transaction_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid transaction_id path param"})
	}
	t, err := h.uc.Transaction(c.Request().Context(), id.UserID, txID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *AccountHandler) Notifications(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	ns, err := h.uc.Notifications(c.Request().Context(), id.UserID, queryLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"notifications": ns})
}
