package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/DentShare/Mystom/internal/api/metrics"
	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

// LoadAccess registers the caller on first contact and resolves its access.
// An orphaned delegate continues with the closed access the resolver returns.
func LoadAccess(accounts ports.AccountService, resolver ports.AccessService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			ctx := c.Request().Context()

			account, err := accounts.EnsureAccount(ctx, p)
			if err != nil {
				return err
			}

			access, err := resolver.Resolve(ctx, account)
			if err != nil && !errors.Is(err, domain.ErrOrphanedDelegate) {
				return err
			}
			if access == nil {
				return domain.ErrForbidden
			}
			if err != nil {
				log.Warn().Int64("telegram_id", p.ID).Msg("request from orphaned delegate")
			}

			SetAccess(c, access)
			return next(c)
		}
	}
}

// RequireAccess rejects requests whose access does not meet req. The tier
// gate is checked before the permission map.
func RequireAccess(req domain.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access, ok := AccessFrom(c)
			if !ok {
				return domain.ErrForbidden
			}

			err := access.Authorize(req)
			metrics.AccessDecisionsTotal.WithLabelValues(string(req.Feature), decisionLabel(access, err)).Inc()
			if err != nil {
				return err
			}
			return next(c)
		}
	}
}

func decisionLabel(access *domain.Access, err error) string {
	switch {
	case err == nil:
		return "allowed"
	case access.Account.IsDelegate() && access.IsOwnerScope():
		return "orphaned"
	case errors.Is(err, domain.ErrTierTooLow):
		return "tier_too_low"
	default:
		return "permission_denied"
	}
}
