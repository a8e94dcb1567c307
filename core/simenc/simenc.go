// Package simenc implements a reversible opaque-value backend for testing.
// Values are recoverable by anyone holding the scheme key, so this backend
// must never be wired into production paths; it exists to let the pipeline
// and matcher be verified against a plaintext oracle.
package simenc

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"math/bits"

	"golang.org/x/crypto/chacha20"

	"github.com/privfi/credence/core/opaque"
	"github.com/zeebo/blake3"
)

const (
	// CiphertextSize is the fixed length of every simulated ciphertext:
	// a 32-byte masked plaintext block followed by a 32-byte keyed digest.
	CiphertextSize = blockSize + digestSize

	blockSize  = 32
	digestSize = 32

	tagContext  = "credence/simenc tag key v1"
	maskContext = "credence/simenc mask key v1"
)

var (
	ErrEmptySeed = errors.New("simenc: seed must not be empty")
)

// Scheme is a deterministic keyed codec over 64-bit non-negative integers.
// The plaintext block is masked with a chacha20 keystream whose nonce is
// derived from the keyed digest of the block, and the digest doubles as an
// integrity tag, so equal plaintexts encrypt to equal ciphertexts while the
// ciphertext length and structure are independent of magnitude.
type Scheme struct {
	tagKey  [32]byte
	maskKey [32]byte
}

func NewScheme(seed []byte) (*Scheme, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	s := &Scheme{}
	blake3.DeriveKey(tagContext, seed, s.tagKey[:])
	blake3.DeriveKey(maskContext, seed, s.maskKey[:])
	return s, nil
}

func (s *Scheme) CiphertextSize() int {
	return CiphertextSize
}

func (s *Scheme) Encrypt(m uint64) (opaque.Value, error) {
	var block [blockSize]byte
	binary.BigEndian.PutUint64(block[blockSize-8:], m)
	return s.seal(block), nil
}

func (s *Scheme) Decrypt(ct opaque.Value) (uint64, error) {
	block, err := s.open(ct)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(block[blockSize-8:]), nil
}

func (s *Scheme) Add(a, b opaque.Value) (opaque.Value, error) {
	ma, err := s.Decrypt(a)
	if err != nil {
		return nil, err
	}
	mb, err := s.Decrypt(b)
	if err != nil {
		return nil, err
	}
	sum, carry := bits.Add64(ma, mb, 0)
	if carry != 0 {
		return nil, opaque.ErrPlaintextOverflow
	}
	return s.Encrypt(sum)
}

func (s *Scheme) ScalarMul(a opaque.Value, k uint64) (opaque.Value, error) {
	ma, err := s.Decrypt(a)
	if err != nil {
		return nil, err
	}
	hi, lo := bits.Mul64(ma, k)
	if hi != 0 {
		return nil, opaque.ErrPlaintextOverflow
	}
	return s.Encrypt(lo)
}

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

func (s *Scheme) seal(block [blockSize]byte) opaque.Value {
	digest := s.digest(block[:])

	out := make(opaque.Value, CiphertextSize)
	s.mask(digest[:chacha20.NonceSize], block[:], out[:blockSize])
	copy(out[blockSize:], digest)
	return out
}

func (s *Scheme) open(ct opaque.Value) ([blockSize]byte, error) {
	var block [blockSize]byte
	if err := ct.CheckSize(CiphertextSize); err != nil {
		return block, err
	}

	digest := ct[blockSize:]
	s.mask(digest[:chacha20.NonceSize], ct[:blockSize], block[:])

	expected := s.digest(block[:])
	if subtle.ConstantTimeCompare(expected, digest) != 1 {
		return block, opaque.ErrMalformedCiphertext
	}
	for _, b := range block[:blockSize-8] {
		if b != 0 {
			return block, opaque.ErrMalformedCiphertext
		}
	}
	return block, nil
}

func (s *Scheme) digest(block []byte) []byte {
	h, err := blake3.NewKeyed(s.tagKey[:])
	if err != nil {
		panic("simenc: keyed hasher: " + err.Error())
	}
	_, _ = h.Write(block)
	return h.Sum(nil)
}

func (s *Scheme) mask(nonce, src, dst []byte) {
	c, err := chacha20.NewUnauthenticatedCipher(s.maskKey[:], nonce)
	if err != nil {
		panic("simenc: cipher: " + err.Error())
	}
	c.XORKeyStream(dst, src)
}
