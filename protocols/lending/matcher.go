// Package lending matches opaque scores against registered pools and derives
// opaque loan amounts. Comparisons run through the engine; neither scores nor
// thresholds are ever decrypted here.
package lending

import (
	"github.com/privfi/credence/core/opaque"
	comm_engine "github.com/privfi/credence/pkg/common/engine"
	comm_lending "github.com/privfi/credence/pkg/common/lending"
	"github.com/privfi/credence/pkg/identity"
)

// LoanScale is the fixed public multiplier applied to a score to derive the
// uncapped loan candidate.
const LoanScale = 5

type Matcher struct {
	engine   comm_engine.Engine
	registry comm_lending.Registry
}

func NewMatcher(engine comm_engine.Engine, registry comm_lending.Registry) *Matcher {
	return &Matcher{
		engine:   engine,
		registry: registry,
	}
}

// FindMatches returns the ids of every active pool whose minimum score the
// given opaque score meets, in registration order. Inactive pools never
// match. The evaluation runs against a snapshot of the registry taken at
// call time.
func (m *Matcher) FindMatches(caller identity.Address, score opaque.Value) ([]int, error) {
	pools := m.registry.Snapshot()

	var matches []int
	for id, pool := range pools {
		if !pool.Active {
			continue
		}
		ok, err := m.engine.AtLeast(caller, score, pool.MinScore)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, id)
		}
	}
	return matches, nil
}

// OptimalLoanAmount derives the opaque loan amount the pool would extend for
// the given score: LoanScale times the score, capped at the pool's maximum.
// When the cap applies, the pool's stored opaque maximum itself is returned.
func (m *Matcher) OptimalLoanAmount(caller identity.Address, score opaque.Value, poolID int) (opaque.Value, error) {
	pool, err := m.registry.Get(poolID)
	if err != nil {
		return nil, err
	}
	if !pool.Active {
		return nil, comm_lending.ErrPoolInactive
	}

	candidate, err := m.engine.ScalarMul(caller, score, LoanScale)
	if err != nil {
		return nil, err
	}
	capped, err := m.engine.AtLeast(caller, candidate, pool.MaxLoan)
	if err != nil {
		return nil, err
	}
	if capped {
		return pool.MaxLoan, nil
	}
	return candidate, nil
}
