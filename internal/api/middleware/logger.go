package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/DentShare/Mystom/internal/api/metrics"
)

// RequestLogger logs one line per request and records request metrics.
// Run it inside RequestID so the id is available.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the status before it is read.
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			route := c.Path()
			elapsed := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())

			evt := log.Info()
			if status >= 500 {
				evt = log.Error()
			}
			evt.
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("route", route).
				Int("status", status).
				Dur("latency", elapsed).
				Msg("request")
			return nil
		}
	}
}
