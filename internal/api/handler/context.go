package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// ctxSession returns the session injected by the RequireSession middleware.
// Reaching a handler without one means the route was registered unguarded.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess, _ := c.Get("session").(*domain.Session)
	if sess == nil {
		return nil, domain.ErrAuthRequired
	}
	return sess, nil
}
