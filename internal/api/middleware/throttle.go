package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/DentShare/Mystom/internal/api/metrics"
)

// Limiter counts one hit for key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Throttle limits requests per Telegram identity. It must run after InitData.
// Limiter errors let the request through.
func Throttle(l Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return next(c)
			}

			allowed, err := l.Allow(c.Request().Context(), strconv.FormatInt(p.ID, 10))
			if err != nil {
				log.Warn().Err(err).Int64("telegram_id", p.ID).Msg("throttle unavailable, allowing request")
				return next(c)
			}
			if !allowed {
				metrics.ThrottledRequestsTotal.Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

const localLimiterMaxKeys = 10_000

// LocalLimiter is an in-process token bucket per key, used when no Redis is
// configured. Counts are not shared between replicas.
type LocalLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	buckets map[string]*localBucket
	now     func() time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows n requests per period for each key.
func NewLocalLimiter(n int, period time.Duration) *LocalLimiter {
	if n <= 0 {
		n = 1
	}
	return &LocalLimiter{
		limit:   rate.Every(period / time.Duration(n)),
		burst:   n,
		idle:    10 * period,
		buckets: make(map[string]*localBucket),
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= localLimiterMaxKeys {
			l.evict(now)
		}
		b = &localBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

func (l *LocalLimiter) evict(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, k)
		}
	}
}
