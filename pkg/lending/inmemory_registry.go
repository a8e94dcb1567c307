package lending

import (
	"sync"

	"github.com/privfi/credence/core/opaque"
	comm_audit "github.com/privfi/credence/pkg/common/audit"
	comm_authz "github.com/privfi/credence/pkg/common/authz"
	comm_lending "github.com/privfi/credence/pkg/common/lending"
	"github.com/privfi/credence/pkg/identity"
)

const (
	OpPoolAppend     = "pool_append"
	OpPoolDeactivate = "pool_deactivate"
)

// InMemoryRegistry is an append-only pool arena. Appends serialize globally
// so pool ids are gap-free and monotonic; Snapshot gives matching readers a
// consistent copy without blocking behind pending appends. Every mutation
// emits an audit record; a nil sink disables auditing.
type InMemoryRegistry struct {
	lock   sync.RWMutex
	gate   comm_authz.Gate
	sink   comm_audit.Sink
	pools  []comm_lending.Pool
	ctSize int
}

func NewInMemoryRegistry(gate comm_authz.Gate, sink comm_audit.Sink, ctSize int) *InMemoryRegistry {
	return &InMemoryRegistry{
		gate:   gate,
		sink:   sink,
		ctSize: ctSize,
	}
}

func (r *InMemoryRegistry) Append(operator identity.Address, minScore, maxLoan opaque.Value, rateBps uint32, name string) (int, error) {
	if !r.gate.IsAuthorized(operator) {
		return 0, comm_authz.ErrUnauthorizedCaller
	}
	if err := minScore.CheckSize(r.ctSize); err != nil {
		return 0, err
	}
	if err := maxLoan.CheckSize(r.ctSize); err != nil {
		return 0, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	r.pools = append(r.pools, comm_lending.Pool{
		Operator: operator,
		MinScore: minScore.Clone(),
		MaxLoan:  maxLoan.Clone(),
		RateBps:  rateBps,
		Active:   true,
		Name:     name,
	})
	r.emit(OpPoolAppend, operator, name)
	return len(r.pools) - 1, nil
}

func (r *InMemoryRegistry) Get(id int) (comm_lending.Pool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if id < 0 || id >= len(r.pools) {
		return comm_lending.Pool{}, comm_lending.ErrInvalidPool
	}
	return clonePool(r.pools[id]), nil
}

func (r *InMemoryRegistry) Deactivate(caller identity.Address, id int) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if id < 0 || id >= len(r.pools) {
		return comm_lending.ErrInvalidPool
	}
	if r.pools[id].Operator != caller {
		return comm_authz.ErrUnauthorizedCaller
	}
	r.pools[id].Active = false
	r.emit(OpPoolDeactivate, caller, r.pools[id].Name)
	return nil
}

// emit is fire-and-forget: a sink failure never fails the mutation. The
// payload carries the pool name, a plaintext business term, never a subject
// value.
func (r *InMemoryRegistry) emit(op string, caller identity.Address, name string) {
	if r.sink == nil {
		return
	}
	_ = r.sink.Emit(comm_audit.Record{
		Op:      op,
		Caller:  caller,
		Payload: []byte(name),
	})
}

func (r *InMemoryRegistry) Snapshot() []comm_lending.Pool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]comm_lending.Pool, len(r.pools))
	for i, p := range r.pools {
		out[i] = clonePool(p)
	}
	return out
}

func (r *InMemoryRegistry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.pools)
}

func clonePool(p comm_lending.Pool) comm_lending.Pool {
	p.MinScore = p.MinScore.Clone()
	p.MaxLoan = p.MaxLoan.Clone()
	return p
}
