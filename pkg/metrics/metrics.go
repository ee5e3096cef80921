package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	IngestTotal          *prometheus.CounterVec
	IngestDuration       prometheus.Histogram
	GeocodeFailuresTotal prometheus.Counter
	DedupMatchesTotal    prometheus.Counter

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	RateLimitExceededTotal prometheus.Counter
)

func Init() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_total",
			Help: "Total number of queue messages processed by the ingestion pipeline.",
		},
		[]string{"status"}, // status: processed, store_error
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "Duration of one end-to-end ingestion pipeline run.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	GeocodeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geocode_failures_total",
			Help: "Total number of geocoder lookups that returned an error.",
		},
	)

	DedupMatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_matches_total",
			Help: "Total number of listings flagged as potential duplicates.",
		},
	)

	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of query API cache hits.",
		},
		[]string{"endpoint"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of query API cache misses.",
		},
		[]string{"endpoint"},
	)

	RateLimitExceededTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Total number of requests rejected by the per-IP rate limiter.",
		},
	)
}
