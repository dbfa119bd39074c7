// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BGGImports counts import attempts by outcome:
	// success, invalid_url, upstream_error, persistence_error.
	BGGImports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgg_imports_total",
			Help: "Total number of BoardGameGeek import attempts",
		},
		[]string{"result"},
	)

	BGGFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bgg_fetch_duration_seconds",
			Help:    "Duration of BoardGameGeek XML API requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BGGCircuitState is 0 closed, 1 half-open, 2 open.
	BGGCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bgg_circuit_breaker_state",
			Help: "State of the BoardGameGeek circuit breaker (0=closed, 1=half-open, 2=open)",
		},
	)

	// ImageProxyRequests counts proxy calls by outcome:
	// ok, invalid_url, host_not_allowed, upstream_error, rate_limited.
	ImageProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_proxy_requests_total",
			Help: "Total number of image proxy requests",
		},
		[]string{"result"},
	)

	ImageProxyBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_proxy_bytes_total",
			Help: "Total bytes relayed by the image proxy",
		},
	)

	GuestWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guest_writes_total",
			Help: "Guest ratings, wishlist votes and messages accepted",
		},
		[]string{"kind"},
	)
)
