package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics counts engine operations and failures by operation name.
// Only names and counts are exported; operands never reach the registry.
type EngineMetrics struct {
	ops      *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credence",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Successful homomorphic engine operations.",
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credence",
			Subsystem: "engine",
			Name:      "failures_total",
			Help:      "Rejected or failed homomorphic engine operations.",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.ops, m.failures)
	}
	return m
}

func (m *EngineMetrics) RecordOp(op string) {
	m.ops.WithLabelValues(op).Inc()
}

func (m *EngineMetrics) RecordFailure(op string) {
	m.failures.WithLabelValues(op).Inc()
}
