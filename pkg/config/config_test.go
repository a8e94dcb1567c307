package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, BackendPaillier, cfg.Backend)
	assert.Equal(t, 2048, cfg.Paillier.Bits)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credence.yaml")
	raw := []byte("backend: sim\nsim:\n  seed: deadbeef\ndecrypt_per_minute: 10\n")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSim, cfg.Backend)
	assert.Equal(t, 10, cfg.DecryptPerMinute)

	seed, err := cfg.SimSeed()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, seed)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Backend = "rot13"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBackend)
}

func TestValidateRejectsBadBits(t *testing.T) {
	cfg := Default()
	cfg.Paillier.Bits = 100
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidBits)
}

func TestValidateRejectsBadSeed(t *testing.T) {
	cfg := Default()
	cfg.Backend = BackendSim
	cfg.Sim.Seed = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSeed)

	cfg.Sim.Seed = "not hex"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSeed)
}
