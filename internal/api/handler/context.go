package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DentShare/Mystom/internal/api/middleware"
	"github.com/DentShare/Mystom/internal/core/domain"
)

// callerAccess returns the access resolved by middleware.LoadAccess. Its
// absence means the route was mounted without the auth chain.
func callerAccess(c echo.Context) (*domain.Access, error) {
	access, ok := middleware.AccessFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return access, nil
}
