package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"sacco-ledger/internal/domain/mobilemoney"
	ucMobile "sacco-ledger/internal/usecase/mobilemoney"
	"sacco-ledger/pkg/money"

	"github.com/labstack/echo/v4"
)

// HeaderWebhookSignature carries hex(HMAC-SHA256(secret, body)).
const HeaderWebhookSignature = "X-Webhook-Signature"

type MobileMoneyHandler struct {
	uc            *ucMobile.Usecase
	webhookSecret []byte
}

// NewMobileMoneyHandler builds the handler. An empty secret accepts
// unsigned webhooks.
func NewMobileMoneyHandler(uc *ucMobile.Usecase, webhookSecret string) *MobileMoneyHandler {
	return &MobileMoneyHandler{uc: uc, webhookSecret: []byte(webhookSecret)}
}

type mobileMoneyReq struct {
	Phone    string  `json:"phone_number" validate:"required,phone256"`
	Provider string  `json:"provider"     validate:"required,oneof=mtn airtel"`
	Amount   float64 `json:"amount"       validate:"required,gt=0,dec2"`
}

type mobileMoneyResp struct {
	TransactionID string `json:"transaction_id"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
}

type requestFn func(context.Context, ucMobile.RequestInput) (*ucMobile.Result, error)

func (h *MobileMoneyHandler) Deposit(c echo.Context) error  { return h.request(c, h.uc.DepositRequest) }
func (h *MobileMoneyHandler) Withdraw(c echo.Context) error { return h.request(c, h.uc.WithdrawalRequest) }

func (h *MobileMoneyHandler) request(c echo.Context, send requestFn) error {
	id, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	var req mobileMoneyReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	amount, err := money.FromFloat(req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	res, err := send(c.Request().Context(), ucMobile.RequestInput{
		UserID:   id.UserID,
		Phone:    req.Phone,
		Provider: mobilemoney.Provider(req.Provider),
		Amount:   amount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, mobileMoneyResp{
		TransactionID: res.Transaction.TransactionID,
		Reference:     res.Reference,
		Status:        string(res.Transaction.Status),
		Amount:        res.Transaction.Amount.StringFixed(2),
	})
}

type webhookReq struct {
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
}

var (
	webhookOK     = map[string]string{"status": "success"}
	webhookFailed = map[string]string{"status": "failed"}
)

// Webhook reconciles a provider callback. A repeated delivery is
// acknowledged with success so the provider stops retrying; internal
// failures answer 500 so it retries.
func (h *MobileMoneyHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, webhookFailed)
	}
	if !h.signed(body, c.Request().Header.Get(HeaderWebhookSignature)) {
		log.Printf("mobilemoney webhook: bad signature from %s", c.RealIP())
		return c.JSON(http.StatusBadRequest, webhookFailed)
	}
	var req webhookReq
	if err := json.Unmarshal(body, &req); err != nil || strings.TrimSpace(req.TxRef) == "" || req.Status == "" {
		return c.JSON(http.StatusBadRequest, webhookFailed)
	}

	_, err = h.uc.Webhook(c.Request().Context(), req.TxRef, strings.ToLower(req.Status))
	switch {
	case err == nil, errors.Is(err, mobilemoney.ErrDuplicateReconciliation):
		return c.JSON(http.StatusOK, webhookOK)
	case StatusFor(err) == http.StatusInternalServerError:
		log.Printf("mobilemoney webhook %s: %v", req.TxRef, err)
		return c.JSON(http.StatusInternalServerError, webhookFailed)
	default:
		return c.JSON(http.StatusBadRequest, webhookFailed)
	}
}

func (h *MobileMoneyHandler) signed(body []byte, sig string) bool {
	if len(h.webhookSecret) == 0 {
		return true
	}
	got, err := hex.DecodeString(strings.TrimSpace(sig))
	if err != nil || len(got) == 0 {
		return false
	}
	return hmac.Equal(got, Sign(h.webhookSecret, body))
}

// Sign returns HMAC-SHA256(secret, body), the value providers hex-encode
// into X-Webhook-Signature.
func Sign(secret, body []byte) []byte {
	m := hmac.New(sha256.New, secret)
	m.Write(body)
	return m.Sum(nil)
}
