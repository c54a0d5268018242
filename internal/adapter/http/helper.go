package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"sacco-ledger/internal/domain/account"
	"sacco-ledger/internal/domain/approval"
	"sacco-ledger/internal/domain/identity"
	"sacco-ledger/internal/domain/loan"
	"sacco-ledger/internal/domain/mobilemoney"
	"sacco-ledger/internal/domain/transaction"
	"sacco-ledger/pkg/money"
	ucAccount "sacco-ledger/internal/usecase/account"
	ucLoan "sacco-ledger/internal/usecase/loan"
	"sacco-ledger/internal/usecase/transfer"

	"github.com/labstack/echo/v4"
)

var errorStatus = []struct {
	err  error
	code int
}{
	{identity.ErrUnauthenticated, http.StatusUnauthorized},
	{identity.ErrForbidden, http.StatusForbidden},

	{money.ErrInvalidAmount, http.StatusBadRequest},
	{transfer.ErrSelfTransfer, http.StatusBadRequest},
	{mobilemoney.ErrInvalidPhone, http.StatusBadRequest},
	{mobilemoney.ErrInvalidProvider, http.StatusBadRequest},
	{mobilemoney.ErrBelowMinimum, http.StatusBadRequest},
	{loan.ErrInvalidType, http.StatusBadRequest},
	{loan.ErrInvalidDuration, http.StatusBadRequest},
	{ucAccount.ErrInvalidPin, http.StatusBadRequest},
	{ucAccount.ErrInvalidIdentityType, http.StatusBadRequest},

	{account.ErrNotFound, http.StatusNotFound},
	{transaction.ErrNotFound, http.StatusNotFound},
	{loan.ErrNotFound, http.StatusNotFound},
	{approval.ErrNotFound, http.StatusNotFound},
	{mobilemoney.ErrUnknownReference, http.StatusNotFound},

	{account.ErrExists, http.StatusConflict},
	{account.ErrKYCConfirmed, http.StatusConflict},
	{account.ErrKYCNotSubmitted, http.StatusConflict},
	{transaction.ErrInvalidTransition, http.StatusConflict},
	{loan.ErrInvalidTransition, http.StatusConflict},
	{loan.ErrAlreadyReviewed, http.StatusConflict},
	{ucLoan.ErrPendingExists, http.StatusConflict},
	{mobilemoney.ErrDuplicateReconciliation, http.StatusConflict},

	{account.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{account.ErrLockUnderflow, http.StatusUnprocessableEntity},
	{account.ErrWrongPin, http.StatusUnprocessableEntity},
	{account.ErrPinNotSet, http.StatusUnprocessableEntity},
}

// StatusFor maps a usecase error onto an HTTP status.
func StatusFor(err error) int {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err as ErrorResponse. Unknown errors are logged and
// hidden behind a generic message.
func respondError(c echo.Context, err error) error {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("http: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// bindValid binds the body into req and runs the validator. When ok is
// false the error response has already been written.
func bindValid(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// caller returns the authenticated identity set by middleware.Auth.
func caller(c echo.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(c.Request().Context())
	if !ok {
		return identity.Identity{}, identity.ErrUnauthenticated
	}
	return id, nil
}

func pathID(c echo.Context, name string) (string, bool) {
	v := c.Param(name)
	return v, reHex32.MatchString(v)
}

// queryLimit reads ?limit=; zero lets the usecase apply its default.
func queryLimit(c echo.Context) int {
	n, _ := strconv.Atoi(c.QueryParam("limit"))
	return n
}
