package datasource

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betscout_provider_requests_total",
		Help: "Statistics provider requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	providerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "betscout_provider_request_duration_seconds",
		Help:    "Statistics provider request latency, cache hits included",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betscout_provider_cache_lookups_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})
)

func observeProvider(endpoint, outcome string, start time.Time) {
	providerRequests.WithLabelValues(endpoint, outcome).Inc()
	providerDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func observeCache(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}
