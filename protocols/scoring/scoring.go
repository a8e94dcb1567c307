// Package scoring derives an opaque creditworthiness score from a stored
// profile. The whole computation runs through engine operations, so no
// plaintext ever materializes in this package.
package scoring

import (
	"github.com/privfi/credence/core/opaque"
	comm_engine "github.com/privfi/credence/pkg/common/engine"
	comm_profile "github.com/privfi/credence/pkg/common/profile"
	"github.com/privfi/credence/pkg/identity"
)

// Fixed public weights. They are constants rather than configuration: two
// computations over identical profile contents must yield the same opaque
// score under a deterministic backend.
const (
	WeightPaymentHistory    = 35
	WeightIncome            = 3
	WeightCreditUtilization = 20
	WeightAssets            = 15

	// ScoreScale is the integer numerator of the conceptual /100 scaling.
	// Division is not homomorphic, so only the numerator is applied here;
	// consumers that need the quotient divide after decryption.
	ScoreScale = 10
)

type Pipeline struct {
	engine comm_engine.Engine
	store  comm_profile.Store
}

func NewPipeline(engine comm_engine.Engine, store comm_profile.Store) *Pipeline {
	return &Pipeline{
		engine: engine,
		store:  store,
	}
}

// ComputeScore combines the owner's encrypted attributes into an opaque
// score, stores it on the profile and returns it. The owner acts as the
// engine caller, so it must hold an engine-use grant.
func (p *Pipeline) ComputeScore(owner identity.Address) (opaque.Value, error) {
	prof, err := p.store.Get(owner)
	if err != nil {
		return nil, err
	}

	paymentTerm, err := p.engine.ScalarMul(owner, prof.PaymentHistory, WeightPaymentHistory)
	if err != nil {
		return nil, err
	}
	incomeTerm, err := p.engine.ScalarMul(owner, prof.Income, WeightIncome)
	if err != nil {
		return nil, err
	}
	utilizationTerm, err := p.engine.ScalarMul(owner, prof.CreditUtilization, WeightCreditUtilization)
	if err != nil {
		return nil, err
	}
	assetTerm, err := p.engine.ScalarMul(owner, prof.Assets, WeightAssets)
	if err != nil {
		return nil, err
	}

	total, err := p.engine.Add(owner, paymentTerm, incomeTerm)
	if err != nil {
		return nil, err
	}
	total, err = p.engine.Add(owner, total, utilizationTerm)
	if err != nil {
		return nil, err
	}
	total, err = p.engine.Add(owner, total, assetTerm)
	if err != nil {
		return nil, err
	}

	score, err := p.engine.ScalarMul(owner, total, ScoreScale)
	if err != nil {
		return nil, err
	}

	if err := p.store.SetScore(owner, score); err != nil {
		return nil, err
	}
	return score, nil
}
