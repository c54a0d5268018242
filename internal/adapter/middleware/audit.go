package middleware

import (
	"context"
	"log"

	"sacco-ledger/internal/domain/audit"
	"sacco-ledger/internal/domain/identity"

	"github.com/labstack/echo/v4"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Create(ctx context.Context, e *audit.Entry) error
}

// Audit records every request made by a staff or admin caller once the
// response is written, including rejected ones. It must run after Auth.
// A failed write is logged and never changes the response.
func Audit(rec AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			id, ok := identity.FromContext(req.Context())
			if !ok || id.Role == identity.RoleMember {
				return nil
			}
			e := &audit.Entry{
				UserID:    id.UserID,
				Role:      string(id.Role),
				Method:    req.Method,
				Path:      req.URL.Path,
				Status:    c.Response().Status,
				IPAddress: c.RealIP(),
			}
			ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), storeTimeout)
			defer cancel()
			if err := rec.Create(ctx, e); err != nil {
				log.Printf("audit: %s %s by %s: %v", e.Method, e.Path, e.UserID, err)
			}
			return nil
		}
	}
}
