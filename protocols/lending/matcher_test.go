package lending

import (
	"testing"

	"github.com/privfi/credence/core/opaque"
	"github.com/privfi/credence/core/simenc"
	"github.com/privfi/credence/pkg/authz"
	comm_lending "github.com/privfi/credence/pkg/common/lending"
	"github.com/privfi/credence/pkg/engine"
	"github.com/privfi/credence/pkg/identity"
	"github.com/privfi/credence/pkg/lending"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = identity.Address{0x01}
	operator = identity.Address{0x02}
)

type testEnv struct {
	scheme   *simenc.Scheme
	registry *lending.InMemoryRegistry
	matcher  *Matcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	scheme, err := simenc.NewScheme([]byte("matcher test seed"))
	require.NoError(t, err)
	gate := authz.NewInMemoryGate(owner)
	require.NoError(t, gate.Grant(owner, operator))
	registry := lending.NewInMemoryRegistry(gate, nil, scheme.CiphertextSize())
	eng := engine.NewHomomorphicEngine(scheme, gate, nil, nil, nil)
	return &testEnv{
		scheme:   scheme,
		registry: registry,
		matcher:  NewMatcher(eng, registry),
	}
}

func (e *testEnv) encrypt(t *testing.T, m uint64) opaque.Value {
	t.Helper()
	ct, err := e.scheme.Encrypt(m)
	require.NoError(t, err)
	return ct
}

func (e *testEnv) addPool(t *testing.T, minScore, maxLoan uint64, name string) int {
	t.Helper()
	id, err := e.registry.Append(operator, e.encrypt(t, minScore), e.encrypt(t, maxLoan), 500, name)
	require.NoError(t, err)
	return id
}

func TestFindMatchesRegistrationOrder(t *testing.T) {
	env := newTestEnv(t)

	poolA := env.addPool(t, 600, 100000, "pool A")
	poolB := env.addPool(t, 800, 200000, "pool B")

	matches, err := env.matcher.FindMatches(owner, env.encrypt(t, 700))
	require.NoError(t, err)
	assert.Equal(t, []int{poolA}, matches)
	assert.NotContains(t, matches, poolB)

	matches, err = env.matcher.FindMatches(owner, env.encrypt(t, 900))
	require.NoError(t, err)
	assert.Equal(t, []int{poolA, poolB}, matches)

	matches, err = env.matcher.FindMatches(owner, env.encrypt(t, 100))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatchesSkipsInactivePools(t *testing.T) {
	env := newTestEnv(t)

	poolA := env.addPool(t, 600, 100000, "pool A")
	poolB := env.addPool(t, 600, 200000, "pool B")
	require.NoError(t, env.registry.Deactivate(operator, poolA))

	matches, err := env.matcher.FindMatches(owner, env.encrypt(t, 1000))
	require.NoError(t, err)
	assert.Equal(t, []int{poolB}, matches)
}

func TestFindMatchesBoundary(t *testing.T) {
	env := newTestEnv(t)

	poolA := env.addPool(t, 600, 100000, "pool A")

	// exactly the threshold qualifies
	matches, err := env.matcher.FindMatches(owner, env.encrypt(t, 600))
	require.NoError(t, err)
	assert.Equal(t, []int{poolA}, matches)
}

func TestOptimalLoanAmountUncapped(t *testing.T) {
	env := newTestEnv(t)

	id := env.addPool(t, 600, 1000000, "pool A")

	amount, err := env.matcher.OptimalLoanAmount(owner, env.encrypt(t, 700), id)
	require.NoError(t, err)

	got, err := env.scheme.Decrypt(amount)
	require.NoError(t, err)
	assert.Equal(t, uint64(700*LoanScale), got)
}

func TestOptimalLoanAmountCapReturnsStoredMax(t *testing.T) {
	env := newTestEnv(t)

	maxLoan := env.encrypt(t, 2000)
	id, err := env.registry.Append(operator, env.encrypt(t, 600), maxLoan, 500, "pool A")
	require.NoError(t, err)

	amount, err := env.matcher.OptimalLoanAmount(owner, env.encrypt(t, 700), id)
	require.NoError(t, err)

	// the candidate 700*LoanScale exceeds the cap: the pool's stored opaque
	// maximum itself comes back, not the unclamped candidate
	assert.True(t, amount.Equal(maxLoan))
	got, err := env.scheme.Decrypt(amount)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), got)
}

func TestOptimalLoanAmountPreconditions(t *testing.T) {
	env := newTestEnv(t)
	score := env.encrypt(t, 700)

	_, err := env.matcher.OptimalLoanAmount(owner, score, 42)
	assert.ErrorIs(t, err, comm_lending.ErrInvalidPool)

	id := env.addPool(t, 600, 100000, "pool A")
	require.NoError(t, env.registry.Deactivate(operator, id))

	_, err = env.matcher.OptimalLoanAmount(owner, score, id)
	assert.ErrorIs(t, err, comm_lending.ErrPoolInactive)
}
