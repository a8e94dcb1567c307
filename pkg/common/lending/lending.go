package lending

import (
	"errors"

	"github.com/privfi/credence/core/opaque"
	"github.com/privfi/credence/pkg/identity"
)

var (
	ErrInvalidPool  = errors.New("lending: invalid pool id")
	ErrPoolInactive = errors.New("lending: pool is inactive")
)

// Pool is a registered lending pool. MinScore and MaxLoan stay opaque; the
// interest rate is a plaintext business term, not subject data.
type Pool struct {
	Operator identity.Address
	MinScore opaque.Value
	MaxLoan  opaque.Value
	RateBps  uint32
	Active   bool
	Name     string
}

// Registry is an append-only arena of pools addressed by insertion index.
// Indices are permanent: a pool is deactivated, never deleted, and its index
// is never reused or compacted.
type Registry interface {
	// Append registers a pool and returns its permanent id. The operator
	// must hold registrant authorization.
	Append(operator identity.Address, minScore, maxLoan opaque.Value, rateBps uint32, name string) (int, error)

	// Get returns the pool at id, ErrInvalidPool when out of range.
	Get(id int) (Pool, error)

	// Deactivate clears the active flag. The caller must be the pool's
	// stored operator.
	Deactivate(caller identity.Address, id int) error

	// Snapshot returns a consistent copy of the registry in registration
	// order; matching reads run against it without blocking appends.
	Snapshot() []Pool

	Len() int
}
