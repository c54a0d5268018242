package middleware

import (
	"net/http"
	"strings"

	"sacco-ledger/internal/domain/identity"

	"github.com/labstack/echo/v4"
)

// TokenValidator turns a bearer token into the caller's identity.
type TokenValidator interface {
	Validate(token string) (identity.Identity, error)
}

// Auth requires a valid bearer token and stores the identity on the
// request context.
func Auth(v TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(h, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			id, err := v.Validate(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			req := c.Request()
			c.SetRequest(req.WithContext(identity.WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

// RequireCapability rejects callers whose role lacks cap. It must run after Auth.
func RequireCapability(cap identity.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := identity.FromContext(c.Request().Context())
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
			}
			if !id.Can(cap) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden: requires " + string(cap)})
			}
			return next(c)
		}
	}
}
