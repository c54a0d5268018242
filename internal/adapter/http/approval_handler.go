package http

import (
	"context"
	"net/http"

	ucApproval "sacco-ledger/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *ucApproval.Usecase }

func NewApprovalHandler(uc *ucApproval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type reviewLoanReq struct {
	Note string `json:"note" validate:"max=500"`
}

type reviewFn func(context.Context, ucApproval.ReviewInput) (*ucApproval.ReviewDTO, error)

func (h *ApprovalHandler) ApproveLoan(c echo.Context) error { return h.review(c, h.uc.Approve) }
func (h *ApprovalHandler) RejectLoan(c echo.Context) error  { return h.review(c, h.uc.Reject) }

func (h *ApprovalHandler) review(c echo.Context, decide reviewFn) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	// Validate path param
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	if !reHex32.MatchString(loanID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	var req reviewLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := decide(c.Request().Context(), ucApproval.ReviewInput{
		LoanID:     loanID,
		ReviewerID: id.UserID,
		Note:       req.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
