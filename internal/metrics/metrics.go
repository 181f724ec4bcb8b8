// Package metrics exposes Prometheus instruments for the completion gateway and turn engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt results
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultEmpty   = "empty"
	ResultTimeout = "timeout"
)

var (
	completionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_completion_attempts_total",
			Help: "Completion attempts per candidate model, partitioned by result.",
		},
		[]string{"model", "result"},
	)
	completionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adventure_completion_attempt_seconds",
			Help:    "Duration of a single completion attempt.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_turns_total",
			Help: "Processed turns, partitioned by action kind and result.",
		},
		[]string{"kind", "result"},
	)
	skillChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_skill_checks_total",
			Help: "Resolved skill checks, partitioned by stat and outcome.",
		},
		[]string{"stat", "outcome"},
	)
	gamesStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventure_games_started_total",
			Help: "Games started per world.",
		},
		[]string{"world"},
	)
)

// ObserveAttempt records one completion attempt.
func ObserveAttempt(model, result string, d time.Duration) {
	completionAttempts.WithLabelValues(model, result).Inc()
	completionDuration.WithLabelValues(model).Observe(d.Seconds())
}

// ObserveTurn records a finished turn.
func ObserveTurn(kind, result string) {
	turnsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveSkillCheck records a resolved check.
func ObserveSkillCheck(stat, outcome string) {
	skillChecksTotal.WithLabelValues(stat, outcome).Inc()
}

// ObserveGameStart records a new session.
func ObserveGameStart(world string) {
	gamesStarted.WithLabelValues(world).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
