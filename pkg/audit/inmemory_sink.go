package audit

import (
	"sync"

	"github.com/google/uuid"

	comm_audit "github.com/privfi/credence/pkg/common/audit"
	comm_clock "github.com/privfi/credence/pkg/common/clock"
	"github.com/privfi/credence/pkg/clock"
)

// InMemorySink is an append-only record log. It assigns each record a uuid
// and a clock timestamp on arrival.
type InMemorySink struct {
	lock    sync.RWMutex
	clk     comm_clock.Clock
	records []comm_audit.Record
}

func NewInMemorySink(clk comm_clock.Clock) *InMemorySink {
	if clk == nil {
		clk = clock.System{}
	}
	return &InMemorySink{clk: clk}
}

func (s *InMemorySink) Emit(rec comm_audit.Record) error {
	rec.ID = uuid.NewString()
	rec.At = s.clk.Now()

	s.lock.Lock()
	defer s.lock.Unlock()

	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of all emitted records in arrival order.
func (s *InMemorySink) Records() []comm_audit.Record {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := make([]comm_audit.Record, len(s.records))
	copy(out, s.records)
	return out
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Emit(comm_audit.Record) error {
	return nil
}
