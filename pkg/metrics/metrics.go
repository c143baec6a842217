package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors. Each instance carries
// its own registry so tests can construct it freely.
type Metrics struct {
	registry *prometheus.Registry

	ItemsAdded      *prometheus.CounterVec
	QueueOperations *prometheus.CounterVec
	Snoozes         *prometheus.CounterVec
	Escalations     prometheus.Counter
	OverdueItems    prometheus.Gauge
	ItemsResurfaced prometheus.Counter

	SuggestionRequests *prometheus.CounterVec
	SnoozeChoices      *prometheus.CounterVec

	OperationDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ItemsAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "followup_items_added_total",
			Help: "Follow-up items added to the queue",
		}, []string{"priority", "reason"}),
		QueueOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "followup_queue_operations_total",
			Help: "Queue mutations by operation and outcome",
		}, []string{"operation", "outcome"}),
		Snoozes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "followup_snoozes_total",
			Help: "Snooze operations, tagged by whether the time was AI-suggested",
		}, []string{"ai_suggested"}),
		Escalations: factory.NewCounter(prometheus.CounterOpts{
			Name: "followup_escalations_total",
			Help: "Priority escalations, manual and automatic",
		}),
		OverdueItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "followup_overdue_items",
			Help: "Overdue active items found by the last sweep",
		}),
		ItemsResurfaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "followup_items_resurfaced_total",
			Help: "Snoozed items returned to active by the sweep",
		}),
		SuggestionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "followup_snooze_suggestions_total",
			Help: "Snooze suggestions served, by priority, source and rounded confidence",
		}, []string{"priority", "source", "confidence"}),
		SnoozeChoices: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "followup_user_snooze_choices_total",
			Help: "User-chosen snooze times by hour of day and day of week",
		}, []string{"hour", "weekday"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "followup_operation_duration_seconds",
			Help:    "Duration of queue operations and sweeps",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// Registry exposes the underlying registry for the /metrics handler
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// StartTimer returns a stop function that records elapsed time for the
// named operation when called.
func (m *Metrics) StartTimer(operation string) func() {
	start := time.Now()
	return func() {
		m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
