package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richard-senior/betscout/pkg/football"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betscout_analyses_total",
		Help: "Total number of fixture analyses by outcome",
	}, []string{"outcome"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "betscout_analysis_duration_seconds",
		Help:    "Time taken to fetch and evaluate one fixture",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
)

func observe(a *football.GameAnalysis, elapsed time.Duration) {
	outcome := "ok"
	if a == nil || a.Fallback {
		outcome = "fallback"
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	analysisDuration.Observe(elapsed.Seconds())
}
