// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tinylink_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tinylink_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LinksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tinylink_links_created_total",
			Help: "Total number of link creation attempts by outcome",
		},
		[]string{"status"},
	)

	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tinylink_redirects_total",
			Help: "Total number of short code lookups on the redirect path by outcome",
		},
		[]string{"status"},
	)

	// ClickUpdatesTotal counts background click updates. "dropped" means the
	// click never reached the store because the queue was full or closed.
	ClickUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tinylink_click_updates_total",
			Help: "Total number of background click updates by outcome",
		},
		[]string{"status"},
	)

	ClickQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tinylink_click_queue_length",
			Help: "Number of clicks waiting to be written",
		},
	)
)

// Outcome labels shared by the counters above.
const (
	StatusSuccess  = "success"
	StatusInvalid  = "invalid"
	StatusConflict = "conflict"
	StatusNotFound = "not_found"
	StatusError    = "error"
	StatusDropped  = "dropped"
)
