package identity

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"
)

const AddressSize = 20

var (
	ErrInvalidAddress  = errors.New("identity: invalid address")
	ErrInvalidMnemonic = errors.New("identity: invalid mnemonic")
)

// Address is an opaque, comparable principal identifier derived from a
// secp256k1 public key. It is the identity every authorization and ownership
// check operates on.
type Address [AddressSize]byte

// FromPublicKey derives an address as the truncated blake3 digest of the
// compressed public key.
func FromPublicKey(pub *secp256k1.PublicKey) Address {
	sum := blake3.Sum256(pub.SerializeCompressed())
	var a Address
	copy(a[:], sum[:AddressSize])
	return a
}

// NewRandom generates a fresh key pair and returns its address.
func NewRandom() (Address, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return Address{}, err
	}
	return FromPublicKey(priv.PubKey()), nil
}

// Parse decodes the base58 text form produced by String.
func Parse(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != AddressSize {
		return Address{}, ErrInvalidAddress
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}
