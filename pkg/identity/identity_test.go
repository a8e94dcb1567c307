package identity

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPublicKeyDeterministic(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	a := FromPublicKey(priv.PubKey())
	b := FromPublicKey(priv.PubKey())
	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())
}

func TestStringParseRoundtrip(t *testing.T) {
	a, err := NewRandom()
	require.NoError(t, err)

	parsed, err := Parse(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not base58 0OIl")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	// valid base58 but wrong length
	_, err = Parse("2g")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestNewRandomDistinct(t *testing.T) {
	a, err := NewRandom()
	require.NoError(t, err)
	b, err := NewRandom()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFromMnemonic(t *testing.T) {
	mnemonic, err := NewMnemonic()
	require.NoError(t, err)

	a, err := FromMnemonic(mnemonic, "")
	require.NoError(t, err)
	b, err := FromMnemonic(mnemonic, "")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := FromMnemonic(mnemonic, "passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestFromMnemonicRejectsInvalid(t *testing.T) {
	_, err := FromMnemonic("definitely not a mnemonic", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}
