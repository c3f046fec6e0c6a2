// Package metrics holds the Prometheus collectors of the solver. They are
// registered on the default registry and exposed by the server on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Driver label values.
const (
	DriverBench   = "bench"
	DriverSession = "session"
	DriverConsole = "console"
)

var (
	// SessionsStarted counts WebSocket solving sessions created.
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bnc_sessions_started_total",
		Help: "Total solving sessions created",
	})

	// SessionsFinished counts sessions by outcome (solved|round_limit|abandoned).
	SessionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bnc_sessions_finished_total",
		Help: "Total solving sessions finished by outcome",
	}, []string{"outcome"})

	// FeedbackRejected counts feedback refused before or by the engine.
	FeedbackRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bnc_feedback_rejected_total",
		Help: "Total feedback messages rejected by reason",
	}, []string{"reason"})

	// BenchRuns counts completed batch evaluations.
	BenchRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bnc_bench_runs_total",
		Help: "Total batch evaluations over the full code universe",
	})

	// RoundsToSolve records how many guesses a solved game took.
	RoundsToSolve = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bnc_rounds_to_solve",
		Help:    "Number of guesses needed to find the secret",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	}, []string{"driver"})
)
