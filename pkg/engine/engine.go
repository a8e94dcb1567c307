package engine

import (
	"errors"

	"github.com/zeebo/blake3"
	"golang.org/x/time/rate"

	"github.com/privfi/credence/core/opaque"
	comm_audit "github.com/privfi/credence/pkg/common/audit"
	comm_authz "github.com/privfi/credence/pkg/common/authz"
	comm_engine "github.com/privfi/credence/pkg/common/engine"
	comm_homenc "github.com/privfi/credence/pkg/common/homenc"
	"github.com/privfi/credence/pkg/identity"
)

var (
	ErrDecryptThrottled = errors.New("engine: decrypt budget exhausted")
)

const (
	OpAdd       = "add"
	OpScalarMul = "scalar_mul"
	OpAtLeast   = "at_least"
	OpDecrypt   = "decrypt"
)

// HomomorphicEngine gates, validates, audits and meters every backend
// operation. It never surfaces a plaintext except through the privileged,
// rate-limited Decrypt, and nothing it audits or records contains one.
type HomomorphicEngine struct {
	scheme   comm_homenc.Scheme
	gate     comm_authz.Gate
	sink     comm_audit.Sink
	recorder comm_engine.Recorder
	decLimit *rate.Limiter
}

// NewHomomorphicEngine wires an engine. sink, recorder and decLimit may be
// nil: a nil sink disables auditing, a nil recorder disables metrics and a
// nil limiter leaves Decrypt unthrottled.
func NewHomomorphicEngine(scheme comm_homenc.Scheme, gate comm_authz.Gate, sink comm_audit.Sink, recorder comm_engine.Recorder, decLimit *rate.Limiter) *HomomorphicEngine {
	return &HomomorphicEngine{
		scheme:   scheme,
		gate:     gate,
		sink:     sink,
		recorder: recorder,
		decLimit: decLimit,
	}
}

func (e *HomomorphicEngine) CiphertextSize() int {
	return e.scheme.CiphertextSize()
}

func (e *HomomorphicEngine) Add(caller identity.Address, a, b opaque.Value) (opaque.Value, error) {
	if err := e.precheck(OpAdd, caller, a, b); err != nil {
		return nil, err
	}
	out, err := e.scheme.Add(a, b)
	if err != nil {
		return nil, e.fail(OpAdd, err)
	}
	e.success(OpAdd, caller, out)
	return out, nil
}

func (e *HomomorphicEngine) ScalarMul(caller identity.Address, a opaque.Value, k uint64) (opaque.Value, error) {
	if err := e.precheck(OpScalarMul, caller, a); err != nil {
		return nil, err
	}
	out, err := e.scheme.ScalarMul(a, k)
	if err != nil {
		return nil, e.fail(OpScalarMul, err)
	}
	e.success(OpScalarMul, caller, out)
	return out, nil
}

func (e *HomomorphicEngine) AtLeast(caller identity.Address, a, b opaque.Value) (bool, error) {
	if err := e.precheck(OpAtLeast, caller, a, b); err != nil {
		return false, err
	}
	ok, err := e.scheme.AtLeast(a, b)
	if err != nil {
		return false, e.fail(OpAtLeast, err)
	}
	// the boolean outcome is the operation's public output; the audit
	// record carries no payload for it
	e.success(OpAtLeast, caller, nil)
	return ok, nil
}

func (e *HomomorphicEngine) Decrypt(caller identity.Address, a opaque.Value) (uint64, error) {
	if err := e.precheck(OpDecrypt, caller, a); err != nil {
		return 0, err
	}
	if e.decLimit != nil && !e.decLimit.Allow() {
		return 0, e.fail(OpDecrypt, ErrDecryptThrottled)
	}
	m, err := e.scheme.Decrypt(a)
	if err != nil {
		return 0, e.fail(OpDecrypt, err)
	}
	// audit the ciphertext digest, never the recovered value
	digest := blake3.Sum256(a)
	e.success(OpDecrypt, caller, digest[:])
	return m, nil
}

func (e *HomomorphicEngine) precheck(op string, caller identity.Address, operands ...opaque.Value) error {
	if !e.gate.IsAuthorized(caller) {
		return e.fail(op, comm_authz.ErrUnauthorizedCaller)
	}
	size := e.scheme.CiphertextSize()
	for _, v := range operands {
		if err := v.CheckSize(size); err != nil {
			return e.fail(op, err)
		}
	}
	return nil
}

func (e *HomomorphicEngine) success(op string, caller identity.Address, payload []byte) {
	if e.recorder != nil {
		e.recorder.RecordOp(op)
	}
	if e.sink != nil {
		// fire-and-forget: a sink failure never fails the operation
		_ = e.sink.Emit(comm_audit.Record{
			Op:      op,
			Caller:  caller,
			Payload: payload,
		})
	}
}

func (e *HomomorphicEngine) fail(op string, err error) error {
	if e.recorder != nil {
		e.recorder.RecordFailure(op)
	}
	return err
}
