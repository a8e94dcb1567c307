package paillier

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/privfi/credence/core/math/sample"
	"github.com/privfi/credence/core/opaque"
)

// Scheme exposes a Paillier key pair as a fixed-length opaque-value backend.
// Ciphertexts are big-endian, left-padded to the byte length of N².
// Encryption nonces are drawn from the configured reader, so a deterministic
// reader yields reproducible ciphertexts for testing.
type Scheme struct {
	sk     *SecretKey
	random io.Reader
}

func NewScheme(sk *SecretKey, random io.Reader) *Scheme {
	if random == nil {
		random = rand.Reader
	}
	return &Scheme{sk: sk, random: random}
}

// NewSchemeFromBytes rebuilds a scheme around a key previously exported with
// SerializeKey.
func NewSchemeFromBytes(data []byte, random io.Reader) (*Scheme, error) {
	sk, err := NewSecretKeyFromBytes(data)
	if err != nil {
		return nil, err
	}
	return NewScheme(sk, random), nil
}

// SerializeKey exports the backend secret key for reuse across restarts.
func (s *Scheme) SerializeKey() ([]byte, error) {
	return s.sk.Serialize()
}

func (s *Scheme) CiphertextSize() int {
	return s.sk.CiphertextSize()
}

func (s *Scheme) Encrypt(m uint64) (opaque.Value, error) {
	nonce := sample.UnitModN(s.random, s.sk.n)
	return s.encode(s.sk.Enc(m, nonce)), nil
}

func (s *Scheme) Decrypt(ct opaque.Value) (uint64, error) {
	c, err := s.decode(ct)
	if err != nil {
		return 0, err
	}
	m, err := s.sk.Dec(c)
	if errors.Is(err, opaque.ErrPlaintextOverflow) {
		return 0, err
	}
	if err != nil {
		return 0, opaque.ErrMalformedCiphertext
	}
	return m, nil
}

func (s *Scheme) Add(a, b opaque.Value) (opaque.Value, error) {
	ca, err := s.decode(a)
	if err != nil {
		return nil, err
	}
	cb, err := s.decode(b)
	if err != nil {
		return nil, err
	}
	return s.encode(s.sk.Add(ca, cb)), nil
}

func (s *Scheme) ScalarMul(a opaque.Value, k uint64) (opaque.Value, error) {
	ca, err := s.decode(a)
	if err != nil {
		return nil, err
	}
	return s.encode(s.sk.ScalarMul(ca, k)), nil
}

// AtLeast decrypts both operands internally and compares; neither plaintext
// leaves this method.
func (s *Scheme) AtLeast(a, b opaque.Value) (bool, error) {
	ma, err := s.Decrypt(a)
	if err != nil {
		return false, err
	}
	mb, err := s.Decrypt(b)
	if err != nil {
		return false, err
	}
	return ma >= mb, nil
}

func (s *Scheme) encode(c *saferith.Nat) opaque.Value {
	size := s.CiphertextSize()
	raw := c.Bytes()
	out := make(opaque.Value, size)
	copy(out[size-len(raw):], raw)
	return out
}

func (s *Scheme) decode(ct opaque.Value) (*saferith.Nat, error) {
	if err := ct.CheckSize(s.CiphertextSize()); err != nil {
		return nil, err
	}
	c := new(saferith.Nat).SetBytes(ct)
	if err := s.sk.ValidateCiphertext(c); err != nil {
		return nil, opaque.ErrMalformedCiphertext
	}
	return c, nil
}
