// Package metrics defines the Prometheus collectors of the assistant.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fittrack"

// Metrics groups the collectors. The zero value is not usable; call New.
type Metrics struct {
	UpdatesTotal    *prometheus.CounterVec
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg skips registration, which suits tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Count of incoming user inputs by transport.",
		}, []string{"transport"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Count of handled commands.",
		}, []string{"command"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of command processing.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Count of errors by kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.UpdatesTotal, m.CommandsTotal, m.CommandDuration, m.ErrorsTotal)
	}
	return m
}

// IncUpdate counts one input received over transport.
func (m *Metrics) IncUpdate(transport string) {
	m.UpdatesTotal.WithLabelValues(transport).Inc()
}

// ObserveCommand counts a command and records how long it took.
func (m *Metrics) ObserveCommand(command string, started time.Time) {
	m.CommandsTotal.WithLabelValues(command).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(started).Seconds())
}

// IncError counts an error of the given kind.
func (m *Metrics) IncError(kind string) {
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}
