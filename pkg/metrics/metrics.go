package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prenv", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prenv", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prenv", Name: "http_requests_total", Help: "HTTP requests by method, route and status code."},
		[]string{"method", "route", "code"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "prenv", Name: "http_request_duration_seconds", Help: "HTTP request latency by route.", Buckets: prometheus.DefBuckets},
		[]string{"route"},
	)
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prenv", Name: "store_operations_total", Help: "Document store operations by collection, operation and outcome."},
		[]string{"collection", "op", "outcome"},
	)
	StoreConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "prenv", Name: "store_connect_attempts_total", Help: "Document store connection attempts by result."},
		[]string{"result"},
	)
	StoreUp = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "prenv", Name: "store_up", Help: "1 when the latest liveness check succeeded, 0 otherwise."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(StoreOperations)
	reg.MustRegister(StoreConnects)
	reg.MustRegister(StoreUp)
}
