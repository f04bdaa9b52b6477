package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limit_rejections_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	// Domain
	ToggleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_toggle_operations_total",
			Help: "Favorite, shopping cart and subscription toggles by outcome",
		},
		[]string{"relation", "action", "outcome"}, // outcome: ok, conflict, error
	)

	ShoppingListExports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_exports_total",
			Help: "Shopping list downloads by outcome",
		},
		[]string{"outcome"}, // ok, empty, error
	)

	TagCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_tag_cache_lookups_total",
			Help: "Tag cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	ImageUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_image_upload_bytes",
			Help:    "Size of stored recipe images after resizing",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 8),
		},
	)
)
