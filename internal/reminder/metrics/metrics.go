package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reminder engine.
type Metrics struct {
	// Plans persisted by the scheduler, and how many events each carried
	PlansScheduled prometheus.Counter
	PlanSize       prometheus.Histogram

	// Reminders handled by the due processor, by outcome
	RemindersProcessed *prometheus.CounterVec

	// Per-channel dispatch failures
	DispatchFailures *prometheus.CounterVec

	// Config updates by result
	ConfigUpdates *prometheus.CounterVec

	// Latencies
	ScheduleLatency prometheus.Histogram
	ProcessLatency  prometheus.Histogram
}

// New creates a Metrics instance with all reminder engine metrics registered.
func New() *Metrics {
	return &Metrics{
		PlansScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idmonitor_reminder_plans_scheduled_total",
			Help: "Total reminder plans persisted by the scheduler",
		}),

		PlanSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "idmonitor_reminder_plan_events",
			Help:    "Number of events in a computed reminder plan",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),

		RemindersProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idmonitor_reminders_processed_total",
			Help: "Due reminders handled by the processor, by outcome",
		}, []string{"outcome"}), // outcome: "dispatched", "claim_lost", "error"

		DispatchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idmonitor_reminder_dispatch_failures_total",
			Help: "Per-channel notification dispatch failures",
		}, []string{"channel"}), // channel: "email", "push", "sms"

		ConfigUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idmonitor_reminder_config_updates_total",
			Help: "Reminder config updates by result",
		}, []string{"result"}), // result: "accepted", "rejected"

		ScheduleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "idmonitor_reminder_schedule_duration_seconds",
			Help:    "Duration of scheduling a document's reminder plan",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		ProcessLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "idmonitor_reminder_process_duration_seconds",
			Help:    "Duration of a due-reminder processing batch",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementPlansScheduled records a persisted plan and its size.
func (m *Metrics) IncrementPlansScheduled(events int) {
	if m != nil {
		m.PlansScheduled.Inc()
		m.PlanSize.Observe(float64(events))
	}
}

// IncrementProcessed records a processed due reminder by outcome.
func (m *Metrics) IncrementProcessed(outcome string) {
	if m != nil {
		m.RemindersProcessed.WithLabelValues(outcome).Inc()
	}
}

// IncrementDispatchFailure records a failed channel send.
func (m *Metrics) IncrementDispatchFailure(channel string) {
	if m != nil {
		m.DispatchFailures.WithLabelValues(channel).Inc()
	}
}

// IncrementConfigUpdate records a config update attempt.
func (m *Metrics) IncrementConfigUpdate(result string) {
	if m != nil {
		m.ConfigUpdates.WithLabelValues(result).Inc()
	}
}

// ObserveScheduleLatency records the duration of one scheduling call.
func (m *Metrics) ObserveScheduleLatency(d time.Duration) {
	if m != nil {
		m.ScheduleLatency.Observe(d.Seconds())
	}
}

// ObserveProcessLatency records the duration of one processing batch.
func (m *Metrics) ObserveProcessLatency(d time.Duration) {
	if m != nil {
		m.ProcessLatency.Observe(d.Seconds())
	}
}
