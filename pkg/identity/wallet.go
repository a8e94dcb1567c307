package identity

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip39"
)

// FromMnemonic derives an address from a BIP-39 mnemonic the way a client
// wallet would: the first 32 bytes of the seed become the secp256k1 secret
// key whose public key the address is derived from.
func FromMnemonic(mnemonic, passphrase string) (Address, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return Address{}, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	priv := secp256k1.PrivKeyFromBytes(seed[:32])
	return FromPublicKey(priv.PubKey()), nil
}

// NewMnemonic generates a fresh 24-word mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}
