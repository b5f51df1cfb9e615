// Package observability provides Prometheus metrics instrumentation for the
// invoice assistant.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_assistant_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"status"}, // status: success, error, rejected
	)

	turnDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invoice_assistant_turn_duration_seconds",
			Help:    "Conversation turn duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	stageExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_assistant_stage_executions_total",
			Help: "Total number of dialogue stage executions",
		},
		[]string{"stage"},
	)

	oracleCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_assistant_oracle_calls_total",
			Help: "Total number of oracle (language model) calls",
		},
		[]string{"operation", "status"}, // status: success, error
	)

	oracleMalformedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_assistant_oracle_malformed_outputs_total",
			Help: "Total number of oracle replies that failed schema parsing",
		},
		[]string{"operation"},
	)

	oracleDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invoice_assistant_oracle_duration_seconds",
			Help:    "Oracle call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)

	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_assistant_status_lookups_total",
			Help: "Total number of invoice status lookups",
		},
		[]string{"result"}, // result: found, not_found, error
	)

	ticketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_assistant_tickets_total",
			Help: "Total number of escalation ticket creation attempts",
		},
		[]string{"status"}, // status: created, refused, error
	)
)

// RecordTurn increments the turn counter and observes its duration.
func RecordTurn(status string, d time.Duration) {
	turnsTotal.WithLabelValues(status).Inc()
	turnDurationSeconds.Observe(d.Seconds())
}

// RecordStage increments the execution counter for a dialogue stage.
func RecordStage(stage string) {
	stageExecutionsTotal.WithLabelValues(stage).Inc()
}

// RecordOracleCall increments the oracle counter and observes its duration.
func RecordOracleCall(operation, status string, d time.Duration) {
	oracleCallsTotal.WithLabelValues(operation, status).Inc()
	oracleDurationSeconds.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordMalformedOutput increments the malformed oracle output counter.
func RecordMalformedOutput(operation string) {
	oracleMalformedTotal.WithLabelValues(operation).Inc()
}

// RecordLookup increments the status lookup counter.
func RecordLookup(result string) {
	lookupsTotal.WithLabelValues(result).Inc()
}

// RecordTicket increments the ticket creation counter.
func RecordTicket(status string) {
	ticketsTotal.WithLabelValues(status).Inc()
}
