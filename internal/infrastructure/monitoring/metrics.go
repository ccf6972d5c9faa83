package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for the security core.
type Metrics struct {
	TokensIssued    *prometheus.CounterVec
	TokenRotations  *prometheus.CounterVec
	ReuseDetections prometheus.Counter
	TokenVerifies   *prometheus.CounterVec
	SessionsCreated prometheus.Counter
	SessionsEnded   *prometheus.CounterVec
	RateLimitChecks *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
}

// NewMetrics registers the collectors with the default registry.
func NewMetrics() *Metrics {
	return newMetricsWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewMetricsWithRegistry registers with a private registry. Used by tests to
// avoid duplicate registration.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetricsWith(promauto.With(reg))
}

func newMetricsWith(factory promauto.Factory) *Metrics {
	return &Metrics{
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_tokens_issued_total",
			Help: "Token pairs minted, by trigger (login, rotation).",
		}, []string{"trigger"}),
		TokenRotations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_token_rotations_total",
			Help: "Refresh rotations, by outcome.",
		}, []string{"outcome"}),
		ReuseDetections: factory.NewCounter(prometheus.CounterOpts{
			Name: "authcore_token_reuse_detections_total",
			Help: "Replays of superseded refresh tokens.",
		}),
		TokenVerifies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_token_verifications_total",
			Help: "Access token verifications, by outcome.",
		}, []string{"outcome"}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "authcore_sessions_created_total",
			Help: "Sessions created by successful logins.",
		}),
		SessionsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_sessions_terminated_total",
			Help: "Sessions terminated, by reason.",
		}, []string{"reason"}),
		RateLimitChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_rate_limit_checks_total",
			Help: "Rate limit decisions, by operation and result.",
		}, []string{"operation", "result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_http_requests_total",
			Help: "HTTP requests, by method, path and status.",
		}, []string{"method", "path", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authcore_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}
