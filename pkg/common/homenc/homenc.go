package homenc

import (
	"github.com/privfi/credence/core/opaque"
)

// Codec encodes plaintext integers into fixed-length opaque values and back.
// Decrypt is the privileged escape hatch of the backend; routine consumers
// go through the engine, never through the codec directly.
type Codec interface {
	// CiphertextSize is the fixed byte length of every value this backend
	// produces or accepts. Values of any other length are malformed.
	CiphertextSize() int

	Encrypt(m uint64) (opaque.Value, error)
	Decrypt(ct opaque.Value) (uint64, error)
}

// Scheme is the pluggable encryption backend behind the engine. All
// operations are homomorphic: the decryption of a result equals the same
// operation applied to the operand plaintexts. Add must be commutative and
// associative under decryption. AtLeast reports plaintext(a) >= plaintext(b)
// without surfacing either plaintext.
//
// Plaintexts are unsigned 64-bit integers. An operation whose plaintext
// result would exceed 64 bits fails with opaque.ErrPlaintextOverflow; a
// backend may detect this at the operation itself or at decryption of the
// result, but never wraps silently.
type Scheme interface {
	Codec

	Add(a, b opaque.Value) (opaque.Value, error)
	ScalarMul(a opaque.Value, k uint64) (opaque.Value, error)
	AtLeast(a, b opaque.Value) (bool, error)
}
