package paillier

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/privfi/credence/core/math/arith"
	"github.com/privfi/credence/core/opaque"
)

var (
	ErrInvalidBits       = errors.New("paillier: modulus size must be at least 512 bits and a multiple of 8")
	ErrPrimeGeneration   = errors.New("paillier: failed to generate primes")
	ErrInvalidCiphertext = errors.New("paillier: ciphertext is not a unit mod N²")
)

// PublicKey holds the modulus N together with the cached values needed for
// encryption and the homomorphic operations over ℤ_{N²}.
type PublicKey struct {
	n        *saferith.Modulus
	nNat     *saferith.Nat
	nSquared *arith.Modulus
}

// SecretKey extends the public key with the factorization of N, enabling
// decryption and CRT-accelerated exponentiation mod N².
type SecretKey struct {
	*PublicKey
	// phi = (p-1)(q-1)
	phi *saferith.Nat
	// phiInv = phi⁻¹ (mod N)
	phiInv *saferith.Nat
}

// NewPublicKey wraps a modulus N without knowledge of its factorization.
func NewPublicKey(n *saferith.Modulus) *PublicKey {
	nNat := n.Nat()
	nSquared := new(saferith.Nat).Mul(nNat, nNat, -1)
	return &PublicKey{
		n:        n,
		nNat:     nNat,
		nSquared: arith.ModulusFromN(saferith.ModulusFromNat(nSquared)),
	}
}

// NewSecretKeyFromPrimes builds a secret key from the two prime factors of N.
func NewSecretKeyFromPrimes(p, q *saferith.Nat) *SecretKey {
	one := new(saferith.Nat).SetUint64(1)

	nNat := new(saferith.Nat).Mul(p, q, -1)
	n := saferith.ModulusFromNat(nNat)

	pSquared := new(saferith.Nat).Mul(p, p, -1)
	qSquared := new(saferith.Nat).Mul(q, q, -1)

	pMinusOne := new(saferith.Nat).Sub(p, one, -1)
	qMinusOne := new(saferith.Nat).Sub(q, one, -1)
	phi := new(saferith.Nat).Mul(pMinusOne, qMinusOne, -1)
	phiInv := new(saferith.Nat).ModInverse(phi, n)

	pk := &PublicKey{
		n:        n,
		nNat:     n.Nat(),
		nSquared: arith.ModulusFromFactors(pSquared, qSquared),
	}
	return &SecretKey{
		PublicKey: pk,
		phi:       phi,
		phiInv:    phiInv,
	}
}

// GenerateKey samples two primes of bits/2 each and derives a secret key.
// The primes are kept only in derived form; bits is the size of N.
func GenerateKey(random io.Reader, bits int) (*SecretKey, error) {
	if bits < 512 || bits%8 != 0 {
		return nil, ErrInvalidBits
	}
	if random == nil {
		random = rand.Reader
	}

	p, err := rand.Prime(random, bits/2)
	if err != nil {
		return nil, errors.Join(ErrPrimeGeneration, err)
	}
	q, err := rand.Prime(random, bits/2)
	if err != nil {
		return nil, errors.Join(ErrPrimeGeneration, err)
	}
	if p.Cmp(q) == 0 {
		return nil, ErrPrimeGeneration
	}

	pNat := new(saferith.Nat).SetBig(p, p.BitLen())
	qNat := new(saferith.Nat).SetBig(q, q.BitLen())
	return NewSecretKeyFromPrimes(pNat, qNat), nil
}

// CiphertextSize returns the fixed byte length of ciphertexts under this key.
func (pk *PublicKey) CiphertextSize() int {
	return (pk.nSquared.BitLen() + 7) / 8
}

// Enc encrypts m with the given nonce: c = (1+N)ᵐ ⋅ nonceᴺ (mod N²).
// (1+N)ᵐ is computed as 1 + m⋅N (mod N²).
func (pk *PublicKey) Enc(m uint64, nonce *saferith.Nat) *saferith.Nat {
	one := new(saferith.Nat).SetUint64(1)
	mNat := new(saferith.Nat).SetUint64(m)

	c := new(saferith.Nat).Mul(mNat, pk.nNat, -1)
	c.ModAdd(c, one, pk.nSquared.Modulus)

	rhoN := pk.nSquared.Exp(nonce, pk.nNat)
	return c.ModMul(c, rhoN, pk.nSquared.Modulus)
}

// Add multiplies two ciphertexts, yielding an encryption of the plaintext sum.
func (pk *PublicKey) Add(a, b *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModMul(a, b, pk.nSquared.Modulus)
}

// ScalarMul raises a ciphertext to a public scalar, yielding an encryption of
// the plaintext times k.
func (pk *PublicKey) ScalarMul(a *saferith.Nat, k uint64) *saferith.Nat {
	kNat := new(saferith.Nat).SetUint64(k)
	return pk.nSquared.Exp(a, kNat)
}

// ValidateCiphertext checks that c is a unit of ℤ_{N²}ˣ.
func (pk *PublicKey) ValidateCiphertext(c *saferith.Nat) error {
	if c.IsUnit(pk.nSquared.Modulus) != 1 {
		return ErrInvalidCiphertext
	}
	return nil
}

// Dec recovers the plaintext: m = [(c^φ - 1)/N] ⋅ φ⁻¹ (mod N).
func (sk *SecretKey) Dec(c *saferith.Nat) (uint64, error) {
	if err := sk.ValidateCiphertext(c); err != nil {
		return 0, err
	}
	one := new(saferith.Nat).SetUint64(1)

	result := sk.nSquared.Exp(c, sk.phi)
	result.Sub(result, one, -1)
	result.Div(result, sk.n, -1)
	result.ModMul(result, sk.phiInv, sk.n)

	if result.TrueLen() > 64 {
		return 0, opaque.ErrPlaintextOverflow
	}
	return result.Uint64(), nil
}

// Modulus returns the public modulus N.
func (pk *PublicKey) Modulus() *saferith.Modulus {
	return pk.n
}

type secretKeySerialized struct {
	N        []byte
	Phi      []byte
	PhiInv   []byte
	NSquared []byte
}

// Serialize encodes the secret key, factorization included, so a restored
// key keeps CRT-accelerated exponentiation. Key generation is expensive;
// this lets a service reuse one key across restarts.
func (sk *SecretKey) Serialize() ([]byte, error) {
	nSquared, err := sk.nSquared.Serialize()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(secretKeySerialized{
		N:        sk.n.Bytes(),
		Phi:      sk.phi.Bytes(),
		PhiInv:   sk.phiInv.Bytes(),
		NSquared: nSquared,
	})
}

// NewSecretKeyFromBytes restores a secret key produced by Serialize.
func NewSecretKeyFromBytes(data []byte) (*SecretKey, error) {
	var ser secretKeySerialized
	if err := cbor.Unmarshal(data, &ser); err != nil {
		return nil, err
	}
	nSquared := &arith.Modulus{}
	if err := nSquared.Deserialize(ser.NSquared); err != nil {
		return nil, err
	}
	n := saferith.ModulusFromBytes(ser.N)
	return &SecretKey{
		PublicKey: &PublicKey{
			n:        n,
			nNat:     n.Nat(),
			nSquared: nSquared,
		},
		phi:    new(saferith.Nat).SetBytes(ser.Phi),
		phiInv: new(saferith.Nat).SetBytes(ser.PhiInv),
	}, nil
}
