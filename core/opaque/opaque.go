package opaque

import (
	"bytes"
	"errors"
)

var (
	ErrMalformedCiphertext = errors.New("opaque: malformed ciphertext")
	ErrPlaintextOverflow   = errors.New("opaque: plaintext exceeds 64 bits")
)

// Value is an encrypted non-negative integer. A Value is only ever produced
// by a backend's Encrypt or by engine operations over valid Values; its byte
// length is fixed per backend and carries no information about the plaintext.
type Value []byte

// Clone returns an independent copy of the value.
func (v Value) Clone() Value {
	if v == nil {
		return nil
	}
	out := make(Value, len(v))
	copy(out, v)
	return out
}

// Equal reports whether two values are byte-identical.
func (v Value) Equal(other Value) bool {
	return bytes.Equal(v, other)
}

// CheckSize validates the value against the backend's fixed ciphertext size.
func (v Value) CheckSize(size int) error {
	if len(v) != size {
		return ErrMalformedCiphertext
	}
	return nil
}
