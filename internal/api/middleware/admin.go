package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin allows only the configured admin Telegram ids.
func RequireAdmin(isAdmin func(telegramID int64) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok || !isAdmin(p.ID) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
