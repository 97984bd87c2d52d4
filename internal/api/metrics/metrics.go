// Package metrics defines the Prometheus metrics of the Mystom API. Metrics
// register with the default registry on import and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mystom"

// ── Authentication ────────────────────────────────────────────────────────────

// InitDataVerificationsTotal counts initData checks.
// Label:
//   - result: "ok", "missing" (no header) or an initdata.Reason label
var InitDataVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "initdata_verifications_total",
		Help:      "Total number of Telegram initData verifications, by result.",
	},
	[]string{"result"},
)

// ── Access ────────────────────────────────────────────────────────────────────

// AccessDecisionsTotal counts gated operations.
// Labels:
//   - feature: the gated feature (e.g. "finance")
//   - result: "allowed", "permission_denied", "tier_too_low" or "orphaned"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access decisions, by feature and result.",
	},
	[]string{"feature", "result"},
)

// InviteRedemptionsTotal counts invite redemptions.
// Label:
//   - result: "ok", "not_found", "already_bound", "self_invite", "has_delegates" or "error"
var InviteRedemptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invite_redemptions_total",
		Help:      "Total number of invite code redemptions, by result.",
	},
	[]string{"result"},
)

// ── Transport ─────────────────────────────────────────────────────────────────

// ThrottledRequestsTotal counts requests rejected by the per-user throttle.
var ThrottledRequestsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "throttled_requests_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// HTTPRequestsTotal counts served requests.
// Labels:
//   - method, route (echo path template), code (status code)
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status code.",
	},
	[]string{"method", "route", "code"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
