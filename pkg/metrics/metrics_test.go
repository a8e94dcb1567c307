package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersByOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)

	m.RecordOp("add")
	m.RecordOp("add")
	m.RecordOp("decrypt")
	m.RecordFailure("decrypt")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ops.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("decrypt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("decrypt")))
}

func TestNilRegistererAllowed(t *testing.T) {
	m := NewEngineMetrics(nil)
	assert.NotPanics(t, func() {
		m.RecordOp("add")
		m.RecordFailure("add")
	})
}
