// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftfinder_http_requests_total",
			Help: "Total number of HTTP requests by path and status",
		},
		[]string{"path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "giftfinder_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"path"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftfinder_search_requests_total",
			Help: "Total number of search requests by outcome",
		},
		[]string{"outcome"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "giftfinder_search_duration_seconds",
			Help: "Duration of the extract-score-rank pipeline in seconds",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftfinder_cache_hits_total",
			Help: "Total cache hits by cache kind",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giftfinder_cache_misses_total",
			Help: "Total cache misses by cache kind",
		},
		[]string{"kind"},
	)

	FallbacksServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "giftfinder_fallbacks_served_total",
			Help: "Searches answered from the knowledge-base fallback",
		},
	)
)
