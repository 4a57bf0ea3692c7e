package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after RequireSession.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": domain.UserMessage(domain.ErrForbidden)})
			}
			return next(c)
		}
	}
}
