// Package metrics exposes prometheus counters for room commands.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer; every method then does nothing.
type Metrics struct {
	Commands       *prometheus.CounterVec
	MatchesDecided *prometheus.CounterVec
	WriteConflicts prometheus.Counter
	RoomsCreated   prometheus.Counter
	Subscribers    prometheus.Gauge
}

// NewMetrics builds the collectors and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_commands_total",
			Help:      "Room commands by name and outcome",
		}, []string{"command", "outcome"}),
		MatchesDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_decided_total",
			Help:      "Decided matches by how they were decided",
		}, []string{"decided_by"}),
		WriteConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_write_conflicts_total",
			Help:      "Conditional room writes rejected because the version moved",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_subscribers",
			Help:      "Open room snapshot subscriptions",
		}),
	}

	reg.MustRegister(m.Commands, m.MatchesDecided, m.WriteConflicts, m.RoomsCreated, m.Subscribers)
	return m
}

func (m *Metrics) ObserveCommand(command string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) IncMatchDecided(decidedBy string) {
	if m == nil {
		return
	}
	m.MatchesDecided.WithLabelValues(decidedBy).Inc()
}

func (m *Metrics) IncWriteConflict() {
	if m == nil {
		return
	}
	m.WriteConflicts.Inc()
}

func (m *Metrics) IncRoomsCreated() {
	if m == nil {
		return
	}
	m.RoomsCreated.Inc()
}

func (m *Metrics) IncSubscribers() {
	if m == nil {
		return
	}
	m.Subscribers.Inc()
}

func (m *Metrics) DecSubscribers() {
	if m == nil {
		return
	}
	m.Subscribers.Dec()
}
