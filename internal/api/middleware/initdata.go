package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/DentShare/Mystom/internal/api/metrics"
	"github.com/DentShare/Mystom/pkg/initdata"
)

// InitDataHeader carries the raw initData string of the Mini App.
const InitDataHeader = "X-Telegram-Init-Data"

// authScheme is the Authorization scheme Telegram Mini Apps conventionally use.
const authScheme = "tma"

// Verifier checks a raw initData credential.
type Verifier interface {
	Verify(raw string) (initdata.Principal, error)
}

// InitData authenticates every request by its initData. Missing and invalid
// credentials get the same 401; the reason only reaches logs and metrics.
func InitData(v Verifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := rawInitData(c.Request())
			if raw == "" {
				metrics.InitDataVerificationsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			p, err := v.Verify(raw)
			if err != nil {
				reason := initdata.Reason(err)
				metrics.InitDataVerificationsTotal.WithLabelValues(reason).Inc()
				log.Warn().
					Str("reason", reason).
					Str("path", c.Path()).
					Str("ip", c.RealIP()).
					Msg("initData rejected")
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			metrics.InitDataVerificationsTotal.WithLabelValues("ok").Inc()
			SetPrincipal(c, p)
			return next(c)
		}
	}
}

func rawInitData(r *http.Request) string {
	if raw := strings.TrimSpace(r.Header.Get(InitDataHeader)); raw != "" {
		return raw
	}
	scheme, raw, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if ok && strings.EqualFold(scheme, authScheme) {
		return strings.TrimSpace(raw)
	}
	return ""
}
