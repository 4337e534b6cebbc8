// Package metrics registers the service's Prometheus metrics with promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface.

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Cache.

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
		},
		[]string{"operation"},
	)

	// Rate limiting.

	RateLimitedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of rate-limited requests",
		},
	)

	// Registry and redirect flow.

	URLsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "urls_created_total",
			Help: "Total number of short URLs created",
		},
	)

	URLsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "urls_deleted_total",
			Help: "Total number of short URLs deleted",
		},
	)

	RedirectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redirects_total",
			Help: "Total number of successful redirects",
		},
	)

	// Blocked redirects are labelled by the gate that stopped them:
	// not_found, expired or inactive.
	RedirectsBlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redirects_blocked_total",
			Help: "Total number of redirects blocked before the target was returned",
		},
		[]string{"reason"},
	)

	ClicksRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clicks_recorded_total",
			Help: "Total number of click events recorded",
		},
	)

	StatsComputedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_computed_total",
			Help: "Total number of statistics computations served",
		},
	)
)

func RecordCacheHit()  { CacheHitsTotal.Inc() }
func RecordCacheMiss() { CacheMissesTotal.Inc() }

func RecordURLCreated()  { URLsCreatedTotal.Inc() }
func RecordURLDeleted()  { URLsDeletedTotal.Inc() }
func RecordRedirect()    { RedirectsTotal.Inc() }
func RecordClick()       { ClicksRecordedTotal.Inc() }
func RecordStats()       { StatsComputedTotal.Inc() }
func RecordRateLimited() { RateLimitedRequestsTotal.Inc() }

// RecordRedirectBlocked counts a blocked redirect by reason.
func RecordRedirectBlocked(reason string) {
	RedirectsBlockedTotal.WithLabelValues(reason).Inc()
}
