package engine

import (
	"github.com/privfi/credence/core/opaque"
	"github.com/privfi/credence/pkg/identity"
)

// Engine performs homomorphic arithmetic over opaque values on behalf of an
// authorized caller. Every operation checks the caller against the gate and
// the operand lengths against the backend before touching any state, and
// emits an audit record on success. Decrypt is privileged: it is audited,
// throttled and meant for escape-hatch use only, never on the scoring or
// matching hot path.
type Engine interface {
	CiphertextSize() int

	Add(caller identity.Address, a, b opaque.Value) (opaque.Value, error)
	ScalarMul(caller identity.Address, a opaque.Value, k uint64) (opaque.Value, error)
	AtLeast(caller identity.Address, a, b opaque.Value) (bool, error)
	Decrypt(caller identity.Address, a opaque.Value) (uint64, error)
}

// Recorder receives operation outcomes for operational visibility. A nil
// recorder disables recording.
type Recorder interface {
	RecordOp(op string)
	RecordFailure(op string)
}
