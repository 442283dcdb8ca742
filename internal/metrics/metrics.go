package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Submissions by terminal outcome: completed, invalid_submission,
	// resource_timeout, reference_unavailable, grading_failed, internal.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizgrader_submissions_total",
			Help: "Total number of attempt submissions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizgrader_submission_duration_seconds",
			Help:    "Time spent processing an attempt submission",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	AIGradingCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizgrader_ai_grading_calls_total",
			Help: "Total number of AI grader calls",
		},
		[]string{"kind", "status"}, // kind: writing/speaking, status: success/failure
	)

	AIGradingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizgrader_ai_grading_duration_seconds",
			Help:    "Latency of AI grader calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"kind"},
	)

	TxAcquireWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quizgrader_tx_acquire_wait_seconds",
			Help:    "Time spent waiting for a write slot and connection",
			Buckets: prometheus.DefBuckets,
		},
	)

	TxAcquireTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizgrader_tx_acquire_timeouts_total",
			Help: "Total number of write transaction acquisitions that timed out",
		},
	)

	WriteSlotsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quizgrader_write_slots_in_use",
			Help: "Current number of held write transaction slots",
		},
	)
)

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
