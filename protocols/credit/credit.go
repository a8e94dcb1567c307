// Package credit assembles the confidential credit scoring service: a
// configured encryption backend, the authorized engine over it, the profile
// store, the pool registry and the scoring/matching pipelines.
package credit

import (
	"errors"

	"golang.org/x/time/rate"

	"github.com/privfi/credence/core/opaque"
	"github.com/privfi/credence/core/paillier"
	"github.com/privfi/credence/core/simenc"
	"github.com/privfi/credence/pkg/config"
	"github.com/privfi/credence/pkg/identity"

	sw_authz "github.com/privfi/credence/pkg/authz"
	comm_audit "github.com/privfi/credence/pkg/common/audit"
	comm_authz "github.com/privfi/credence/pkg/common/authz"
	comm_clock "github.com/privfi/credence/pkg/common/clock"
	comm_engine "github.com/privfi/credence/pkg/common/engine"
	comm_homenc "github.com/privfi/credence/pkg/common/homenc"
	comm_lending "github.com/privfi/credence/pkg/common/lending"
	comm_profile "github.com/privfi/credence/pkg/common/profile"

	sw_audit "github.com/privfi/credence/pkg/audit"
	sw_clock "github.com/privfi/credence/pkg/clock"
	sw_engine "github.com/privfi/credence/pkg/engine"
	sw_lending "github.com/privfi/credence/pkg/lending"
	sw_profile "github.com/privfi/credence/pkg/profile"
	sw_vault "github.com/privfi/credence/pkg/vault"

	proto_lending "github.com/privfi/credence/protocols/lending"
	proto_scoring "github.com/privfi/credence/protocols/scoring"
)

var ErrNoExportableKey = errors.New("credit: backend does not use an exportable key")

// PlainAttributes are the financial inputs as the data owner knows them,
// before encryption. They exist only at the submission boundary.
type PlainAttributes struct {
	Income            uint64
	Assets            uint64
	Debts             uint64
	PaymentHistory    uint64
	CreditUtilization uint64
}

type Credit struct {
	scheme   comm_homenc.Scheme
	gate     comm_authz.Gate
	engine   comm_engine.Engine
	profiles comm_profile.Store
	registry comm_lending.Registry
	scoring  *proto_scoring.Pipeline
	matcher  *proto_lending.Matcher
}

// New builds the service from configuration. sink, recorder and clk may be
// nil; nil defaults to no auditing, no metrics and the system clock.
func New(cfg *config.Config, owner identity.Address, sink comm_audit.Sink, recorder comm_engine.Recorder, clk comm_clock.Clock) (*Credit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scheme, err := newScheme(cfg)
	if err != nil {
		return nil, err
	}
	return assemble(cfg, owner, scheme, sink, recorder, clk), nil
}

// NewWithKey rebuilds a paillier-backed service around a secret key
// previously returned by ExportKey, instead of generating a fresh one.
func NewWithKey(cfg *config.Config, owner identity.Address, key []byte, sink comm_audit.Sink, recorder comm_engine.Recorder, clk comm_clock.Clock) (*Credit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend != config.BackendPaillier {
		return nil, ErrNoExportableKey
	}
	scheme, err := paillier.NewSchemeFromBytes(key, nil)
	if err != nil {
		return nil, err
	}
	return assemble(cfg, owner, scheme, sink, recorder, clk), nil
}

func assemble(cfg *config.Config, owner identity.Address, scheme comm_homenc.Scheme, sink comm_audit.Sink, recorder comm_engine.Recorder, clk comm_clock.Clock) *Credit {
	if clk == nil {
		clk = sw_clock.System{}
	}
	if sink == nil {
		sink = sw_audit.NopSink{}
	}

	var decLimit *rate.Limiter
	if cfg.DecryptPerMinute > 0 {
		decLimit = rate.NewLimiter(rate.Limit(float64(cfg.DecryptPerMinute)/60), cfg.DecryptPerMinute)
	}

	gate := sw_authz.NewInMemoryGate(owner)
	engine := sw_engine.NewHomomorphicEngine(scheme, gate, sink, recorder, decLimit)
	profiles := sw_profile.NewInMemoryStore(sw_vault.NewInMemoryVault(), clk, scheme.CiphertextSize())
	registry := sw_lending.NewInMemoryRegistry(gate, sink, scheme.CiphertextSize())

	return &Credit{
		scheme:   scheme,
		gate:     gate,
		engine:   engine,
		profiles: profiles,
		registry: registry,
		scoring:  proto_scoring.NewPipeline(engine, profiles),
		matcher:  proto_lending.NewMatcher(engine, registry),
	}
}

func newScheme(cfg *config.Config) (comm_homenc.Scheme, error) {
	switch cfg.Backend {
	case config.BackendSim:
		seed, err := cfg.SimSeed()
		if err != nil {
			return nil, err
		}
		return simenc.NewScheme(seed)
	default:
		sk, err := paillier.GenerateKey(nil, cfg.Paillier.Bits)
		if err != nil {
			return nil, err
		}
		return paillier.NewScheme(sk, nil), nil
	}
}

// Grant authorizes grantee for engine use and pool registration.
func (c *Credit) Grant(granter, grantee identity.Address) error {
	return c.gate.Grant(granter, grantee)
}

// SubmitProfile encrypts the owner's plaintext attributes and overwrites the
// stored profile wholesale. Any previously computed score is invalidated.
func (c *Credit) SubmitProfile(owner identity.Address, attrs PlainAttributes) error {
	var stored comm_profile.Attributes
	var err error
	if stored.Income, err = c.scheme.Encrypt(attrs.Income); err != nil {
		return err
	}
	if stored.Assets, err = c.scheme.Encrypt(attrs.Assets); err != nil {
		return err
	}
	if stored.Debts, err = c.scheme.Encrypt(attrs.Debts); err != nil {
		return err
	}
	if stored.PaymentHistory, err = c.scheme.Encrypt(attrs.PaymentHistory); err != nil {
		return err
	}
	if stored.CreditUtilization, err = c.scheme.Encrypt(attrs.CreditUtilization); err != nil {
		return err
	}
	return c.profiles.Submit(owner, stored)
}

// Profile returns the stored profile for owner.
func (c *Credit) Profile(owner identity.Address) (*comm_profile.CreditProfile, error) {
	return c.profiles.Get(owner)
}

// DeleteProfile erases the owner's stored profile and score.
func (c *Credit) DeleteProfile(owner identity.Address) error {
	return c.profiles.Delete(owner)
}

// ComputeScore runs the scoring pipeline for owner and returns the opaque
// score.
func (c *Credit) ComputeScore(owner identity.Address) (opaque.Value, error) {
	return c.scoring.ComputeScore(owner)
}

// RegisterPool encrypts the pool's threshold and cap and appends it to the
// registry. The operator must be authorized as a registrant.
func (c *Credit) RegisterPool(operator identity.Address, minScore, maxLoan uint64, rateBps uint32, name string) (int, error) {
	encMin, err := c.scheme.Encrypt(minScore)
	if err != nil {
		return 0, err
	}
	encMax, err := c.scheme.Encrypt(maxLoan)
	if err != nil {
		return 0, err
	}
	return c.registry.Append(operator, encMin, encMax, rateBps, name)
}

// DeactivatePool clears a pool's active flag; only its operator may do so.
func (c *Credit) DeactivatePool(caller identity.Address, id int) error {
	return c.registry.Deactivate(caller, id)
}

// Pool returns the registered pool at id.
func (c *Credit) Pool(id int) (comm_lending.Pool, error) {
	return c.registry.Get(id)
}

// FindMatches returns the ids of active pools whose threshold the score
// meets, in registration order.
func (c *Credit) FindMatches(caller identity.Address, score opaque.Value) ([]int, error) {
	return c.matcher.FindMatches(caller, score)
}

// OptimalLoanAmount derives the opaque loan amount for the given pool.
func (c *Credit) OptimalLoanAmount(caller identity.Address, score opaque.Value, poolID int) (opaque.Value, error) {
	return c.matcher.OptimalLoanAmount(caller, score, poolID)
}

// Decrypt is the audited escape hatch to the backend plaintext.
func (c *Credit) Decrypt(caller identity.Address, v opaque.Value) (uint64, error) {
	return c.engine.Decrypt(caller, v)
}

// ExportKey returns the serialized backend secret key so a later service can
// be rebuilt around it with NewWithKey. Only the paillier backend uses an
// exportable key.
func (c *Credit) ExportKey() ([]byte, error) {
	s, ok := c.scheme.(*paillier.Scheme)
	if !ok {
		return nil, ErrNoExportableKey
	}
	return s.SerializeKey()
}

// Engine exposes the underlying authorized engine.
func (c *Credit) Engine() comm_engine.Engine {
	return c.engine
}
