package vision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wastewise_vision_requests_total",
		Help: "Vision model calls by provider and outcome (parsed, fallback, error).",
	}, []string{"provider", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wastewise_vision_request_duration_seconds",
		Help:    "Latency of vision model calls.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"provider"})
)
