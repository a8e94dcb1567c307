package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	BackendSim      = "sim"
	BackendPaillier = "paillier"
)

var (
	ErrUnknownBackend = errors.New("config: unknown backend")
	ErrInvalidSeed    = errors.New("config: sim seed must be non-empty hex")
	ErrInvalidBits    = errors.New("config: paillier bits must be at least 512 and a multiple of 8")
)

type Config struct {
	// Backend selects the encryption provider: "paillier" for the real
	// additively homomorphic scheme, "sim" for the reversible test backend.
	Backend string `yaml:"backend"`

	Paillier PaillierConfig `yaml:"paillier"`
	Sim      SimConfig      `yaml:"sim"`

	// DecryptPerMinute throttles the privileged decrypt escape hatch.
	// Zero leaves it unthrottled.
	DecryptPerMinute int `yaml:"decrypt_per_minute"`
}

type PaillierConfig struct {
	// Bits is the size of the modulus N.
	Bits int `yaml:"bits"`
}

type SimConfig struct {
	// Seed is the hex-encoded key material of the simulation backend.
	Seed string `yaml:"seed"`
}

func Default() *Config {
	return &Config{
		Backend: BackendPaillier,
		Paillier: PaillierConfig{
			Bits: 2048,
		},
	}
}

// Load reads a yaml config file on top of the defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPaillier:
		if c.Paillier.Bits < 512 || c.Paillier.Bits%8 != 0 {
			return ErrInvalidBits
		}
	case BackendSim:
		if _, err := c.SimSeed(); err != nil {
			return err
		}
	default:
		return ErrUnknownBackend
	}
	return nil
}

// SimSeed decodes the hex seed of the simulation backend.
func (c *Config) SimSeed() ([]byte, error) {
	seed, err := hex.DecodeString(c.Sim.Seed)
	if err != nil || len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	return seed, nil
}
