package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betscout_rpc_requests_total",
		Help: "JSON-RPC requests handled, by method and outcome",
	}, []string{"method", "outcome"})

	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "betscout_rpc_duration_seconds",
		Help:    "Time spent handling a JSON-RPC request",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// observeRequest records one request. Unknown methods share a label so clients cannot grow
// the series without bound.
func observeRequest(method, outcome string, start time.Time) {
	if outcome == "not_found" || outcome == "invalid" {
		method = "unknown"
	}
	rpcRequests.WithLabelValues(method, outcome).Inc()
	rpcDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
