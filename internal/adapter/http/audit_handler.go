package http

import (
	"context"
	"net/http"

	"sacco-ledger/internal/domain/audit"

	"github.com/labstack/echo/v4"
)

// AuditLister reads the most recent audit entries.
type AuditLister interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Entry, error)
}

type AuditHandler struct{ logs AuditLister }

func NewAuditHandler(logs AuditLister) *AuditHandler { return &AuditHandler{logs: logs} }

func (h *AuditHandler) List(c echo.Context) error {
	entries, err := h.logs.ListRecent(c.Request().Context(), queryLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"audit_logs": entries})
}
