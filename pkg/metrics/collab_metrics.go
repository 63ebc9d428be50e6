// Package metrics provides Prometheus metrics for monitoring collaborative
// editing sessions.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collaboration session metrics
var (
	// sessionsActive tracks the number of currently active editing sessions.
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coedit_sessions_active",
			Help: "Number of currently active collaborative editing sessions",
		},
	)

	// participantsActive tracks the number of participants across all sessions.
	participantsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coedit_participants_active",
			Help: "Number of participants currently joined across all sessions",
		},
	)

	// operationsTotal records the total number of edit operations handled.
	// Labels:
	//   - type: Operation type (e.g., "insert", "delete", "replace")
	//   - status: Outcome (e.g., "applied", "rejected")
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coedit_operations_total",
			Help: "Total number of edit operations handled",
		},
		[]string{"type", "status"},
	)

	// operationDuration records how long applying an operation took.
	// Labels:
	//   - type: Operation type (e.g., "insert", "delete", "replace")
	// Buckets: 100us, 500us, 1ms, 5ms, 10ms, 50ms, 100ms
	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coedit_operation_duration_seconds",
			Help:    "Duration of edit operation application in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"type"},
	)

	// syncsTotal records the number of full-content resyncs.
	// Labels:
	//   - status: Outcome (e.g., "applied", "rejected")
	syncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coedit_syncs_total",
			Help: "Total number of full-content resync requests",
		},
		[]string{"status"},
	)
)

func init() {
	// Register all collaboration metrics with Prometheus
	prometheus.MustRegister(sessionsActive)
	prometheus.MustRegister(participantsActive)
	prometheus.MustRegister(operationsTotal)
	prometheus.MustRegister(operationDuration)
	prometheus.MustRegister(syncsTotal)
}

// SessionOpened increments the active session gauge.
func SessionOpened() {
	sessionsActive.Inc()
}

// SessionClosed decrements the active session gauge.
func SessionClosed() {
	sessionsActive.Dec()
}

// ParticipantJoined increments the active participant gauge.
func ParticipantJoined() {
	participantsActive.Inc()
}

// ParticipantLeft decrements the active participant gauge by n.
// Sweeps may remove several participants at once.
func ParticipantLeft(n int) {
	participantsActive.Sub(float64(n))
}

// RecordOperation records the outcome of one edit operation.
// Parameters:
//   - opType: Operation type (e.g., "insert", "delete", "replace")
//   - status: Outcome (e.g., "applied", "rejected")
func RecordOperation(opType, status string) {
	operationsTotal.WithLabelValues(opType, status).Inc()
}

// RecordOperationDuration records how long one operation took to apply.
func RecordOperationDuration(opType string, seconds float64) {
	operationDuration.WithLabelValues(opType).Observe(seconds)
}

// RecordSync records the outcome of one full-content resync.
func RecordSync(status string) {
	syncsTotal.WithLabelValues(status).Inc()
}
