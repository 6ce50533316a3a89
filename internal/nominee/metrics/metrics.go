package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for nominee record operations.
type Metrics struct {
	DraftsStarted      *prometheus.CounterVec
	DraftsStaged       prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	Commits            *prometheus.CounterVec
	OptOuts            *prometheus.CounterVec
	CommitBatchSize    prometheus.Histogram
	CommitDurationMs   prometheus.Histogram
}

// New registers and returns nominee metrics collectors.
func New() *Metrics {
	return &Metrics{
		DraftsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_nominee_drafts_started_total",
			Help: "Total number of nominee drafts opened",
		}, []string{"mode"}),
		DraftsStaged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "folio_nominee_drafts_staged_total",
			Help: "Total number of drafts that passed validation and were staged",
		}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_nominee_validation_failures_total",
			Help: "Total number of draft validation rejections",
		}, []string{"stage"}),
		Commits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_nominee_commits_total",
			Help: "Total number of batch commit attempts",
		}, []string{"outcome"}),
		OptOuts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_nominee_opt_outs_total",
			Help: "Total number of opt-out attempts",
		}, []string{"outcome"}),
		CommitBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_nominee_commit_batch_size",
			Help:    "Number of nominee records per committed batch",
			Buckets: []float64{1, 2, 3},
		}),
		CommitDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "folio_nominee_commit_duration_ms",
			Help:    "Duration of batch commit upstream calls in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
	}
}
