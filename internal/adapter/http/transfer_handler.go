package http

import (
	"net/http"

	"sacco-ledger/internal/usecase/transfer"
	"sacco-ledger/pkg/money"

	"github.com/labstack/echo/v4"
)

type TransferHandler struct{ uc *transfer.Usecase }

func NewTransferHandler(uc *transfer.Usecase) *TransferHandler { return &TransferHandler{uc: uc} }

type initiateTransferReq struct {
	Receiver    string  `json:"receiver_account" validate:"required,max=10"`
	Amount      float64 `json:"amount"           validate:"required,gt=0,dec2"`
	Description string  `json:"description"      validate:"max=255"`
}

func (h *TransferHandler) Initiate(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	var req initiateTransferReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	amount, err := money.FromFloat(req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	tx, err := h.uc.Initiate(c.Request().Context(), transfer.InitiateInput{
		SenderUserID: id.UserID,
		Receiver:     req.Receiver,
		Amount:       amount,
		Description:  req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, tx)
}

type confirmTransferReq struct {
	PIN string `json:"pin" validate:"required,pin4"`
}

func (h *TransferHandler) Confirm(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	txID, ok := pathID(c, "transaction_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid transaction_id path param"})
	}
	var req confirmTransferReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	tx, err := h.uc.Confirm(c.Request().Context(), transfer.ConfirmInput{
		TransactionID: txID,
		SenderUserID:  id.UserID,
		PIN:           req.PIN,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tx)
}
