package profile

import (
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/privfi/credence/core/opaque"
	comm_clock "github.com/privfi/credence/pkg/common/clock"
	comm_profile "github.com/privfi/credence/pkg/common/profile"
	comm_vault "github.com/privfi/credence/pkg/common/vault"
	"github.com/privfi/credence/pkg/identity"
)

// InMemoryStore keeps one cbor-encoded profile per owner in a vault. Writes
// for the same owner serialize on a per-owner mutex; reads see whole records
// only, since the vault swaps values atomically.
type InMemoryStore struct {
	lock   sync.Mutex
	owners map[identity.Address]*sync.Mutex

	v      comm_vault.Vault
	clk    comm_clock.Clock
	ctSize int
}

func NewInMemoryStore(v comm_vault.Vault, clk comm_clock.Clock, ctSize int) *InMemoryStore {
	return &InMemoryStore{
		owners: make(map[identity.Address]*sync.Mutex),
		v:      v,
		clk:    clk,
		ctSize: ctSize,
	}
}

func (s *InMemoryStore) Submit(owner identity.Address, attrs comm_profile.Attributes) error {
	for _, v := range []opaque.Value{
		attrs.Income, attrs.Assets, attrs.Debts, attrs.PaymentHistory, attrs.CreditUtilization,
	} {
		if err := v.CheckSize(s.ctSize); err != nil {
			return err
		}
	}

	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	// wholesale overwrite: the previous record, score included, is replaced
	p := &comm_profile.CreditProfile{
		Owner:             owner,
		Income:            attrs.Income.Clone(),
		Assets:            attrs.Assets.Clone(),
		Debts:             attrs.Debts.Clone(),
		PaymentHistory:    attrs.PaymentHistory.Clone(),
		CreditUtilization: attrs.CreditUtilization.Clone(),
		UpdatedAt:         s.clk.Now(),
	}
	return s.put(owner, p)
}

func (s *InMemoryStore) Get(owner identity.Address) (*comm_profile.CreditProfile, error) {
	raw, err := s.v.Get(owner.String())
	if err != nil {
		return nil, comm_profile.ErrProfileNotFound
	}

	p := &comm_profile.CreditProfile{}
	if err := cbor.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *InMemoryStore) SetScore(owner identity.Address, score opaque.Value) error {
	if err := score.CheckSize(s.ctSize); err != nil {
		return err
	}

	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	p, err := s.Get(owner)
	if err != nil {
		return err
	}
	p.Score = score.Clone()
	return s.put(owner, p)
}

func (s *InMemoryStore) Delete(owner identity.Address) error {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	if _, err := s.v.Get(owner.String()); err != nil {
		return comm_profile.ErrProfileNotFound
	}
	return s.v.Delete(owner.String())
}

func (s *InMemoryStore) put(owner identity.Address, p *comm_profile.CreditProfile) error {
	raw, err := cbor.Marshal(p)
	if err != nil {
		return err
	}
	return s.v.Import(owner.String(), raw)
}

func (s *InMemoryStore) ownerLock(owner identity.Address) *sync.Mutex {
	s.lock.Lock()
	defer s.lock.Unlock()

	mu, ok := s.owners[owner]
	if !ok {
		mu = &sync.Mutex{}
		s.owners[owner] = mu
	}
	return mu
}
