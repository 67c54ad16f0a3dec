// Package metrics holds the prometheus counters of the data layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "maintkeeper"

// Outcome label values for RemoteRequests.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeConflict = "conflict"
)

// Metrics groups the counters and the registry they are registered on.
type Metrics struct {
	Registry *prometheus.Registry

	RemoteRequests         *prometheus.CounterVec
	Fallbacks              *prometheus.CounterVec
	SecondaryWriteFailures *prometheus.CounterVec
}

// New creates the counters on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RemoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Remote store requests by entity, operation and outcome.",
		}, []string{"entity", "op", "outcome"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Operations served from local state after a remote failure.",
		}, []string{"entity", "op"}),
		SecondaryWriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secondary_write_failures_total",
			Help:      "Best-effort writes that failed.",
		}, []string{"op"}),
	}
	m.Registry.MustRegister(m.RemoteRequests, m.Fallbacks, m.SecondaryWriteFailures)
	return m
}

func (m *Metrics) Request(entity, op, outcome string) {
	if m == nil {
		return
	}
	m.RemoteRequests.WithLabelValues(entity, op, outcome).Inc()
}

func (m *Metrics) Fallback(entity, op string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(entity, op).Inc()
}

func (m *Metrics) SecondaryWriteFailed(op string) {
	if m == nil {
		return
	}
	m.SecondaryWriteFailures.WithLabelValues(op).Inc()
}
