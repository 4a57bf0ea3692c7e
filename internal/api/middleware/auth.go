package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// SessionSource yields the active session or ErrAuthRequired/ErrStaleSession.
type SessionSource interface {
	Current(ctx context.Context) (*domain.Session, error)
}

// RequireSession rejects requests when no session is active and injects the
// session into context otherwise.
func RequireSession(sessions SessionSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := sessions.Current(c.Request().Context())
			if err != nil {
				return err
			}

			c.Set("session", sess)
			c.Set("username", sess.Username)
			c.Set("role", sess.Role)

			return next(c)
		}
	}
}
