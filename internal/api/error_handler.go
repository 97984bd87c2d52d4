package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/DentShare/Mystom/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"error": "<message>"}. Unknown errors
// are logged and returned as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var tierErr *domain.TierError
	if errors.As(err, &tierErr) {
		return http.StatusPaymentRequired, fmt.Sprintf("available only in the %s subscription", tierErr.Required.Label())
	}

	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, "invite code not found"

	case errors.Is(err, domain.ErrAlreadyBound),
		errors.Is(err, domain.ErrSelfInvite),
		errors.Is(err, domain.ErrNotBound),
		errors.Is(err, domain.ErrHasDelegates),
		errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrInvalidPermission),
		errors.Is(err, domain.ErrInvalidTier),
		errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, domain.ErrTierTooLow):
		return http.StatusPaymentRequired, "subscription tier too low"
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "permission denied"
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrOrphanedDelegate):
		return http.StatusForbidden, "owner account unavailable"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
