package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run-level metrics, exposed on /metrics through promhttp.
var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spendscope",
		Name:      "runs_total",
		Help:      "Analysis runs by outcome.",
	}, []string{"status"})

	rowsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spendscope",
		Name:      "rows_processed_total",
		Help:      "Canonical rows produced across all runs.",
	})

	rowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spendscope",
		Name:      "rows_dropped_total",
		Help:      "Rows dropped during normalization, by reason.",
	}, []string{"reason"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "spendscope",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of analysis runs.",
		Buckets:   prometheus.DefBuckets,
	})
)
