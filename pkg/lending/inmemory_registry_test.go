package lending

import (
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/privfi/credence/core/opaque"
	"github.com/privfi/credence/pkg/audit"
	"github.com/privfi/credence/pkg/authz"
	comm_authz "github.com/privfi/credence/pkg/common/authz"
	comm_lending "github.com/privfi/credence/pkg/common/lending"
	"github.com/privfi/credence/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCtSize = 64

var (
	owner    = identity.Address{0x01}
	operator = identity.Address{0x02}
	stranger = identity.Address{0x03}
)

func newTestRegistry(t *testing.T) *InMemoryRegistry {
	t.Helper()
	gate := authz.NewInMemoryGate(owner)
	require.NoError(t, gate.Grant(owner, operator))
	return NewInMemoryRegistry(gate, nil, testCtSize)
}

func val(b byte) opaque.Value {
	v := make(opaque.Value, testCtSize)
	v[0] = b
	return v
}

func TestAppendAssignsMonotonicIDs(t *testing.T) {
	r := newTestRegistry(t)

	id0, err := r.Append(operator, val(1), val(2), 500, "pool A")
	require.NoError(t, err)
	id1, err := r.Append(operator, val(3), val(4), 750, "pool B")
	require.NoError(t, err)

	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, r.Len())

	p, err := r.Get(id0)
	require.NoError(t, err)
	assert.Equal(t, "pool A", p.Name)
	assert.Equal(t, uint32(500), p.RateBps)
	assert.True(t, p.Active)
	assert.True(t, p.MinScore.Equal(val(1)))
}

func TestAppendRequiresRegistrantAuthorization(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Append(stranger, val(1), val(2), 500, "rogue")
	assert.ErrorIs(t, err, comm_authz.ErrUnauthorizedCaller)
	assert.Equal(t, 0, r.Len())
}

func TestAppendValidatesValueLengths(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Append(operator, make(opaque.Value, 3), val(2), 500, "bad")
	assert.ErrorIs(t, err, opaque.ErrMalformedCiphertext)

	_, err = r.Append(operator, val(1), make(opaque.Value, 3), 500, "bad")
	assert.ErrorIs(t, err, opaque.ErrMalformedCiphertext)
}

func TestDeactivateKeepsIDStable(t *testing.T) {
	r := newTestRegistry(t)

	id0, err := r.Append(operator, val(1), val(2), 500, "pool A")
	require.NoError(t, err)
	id1, err := r.Append(operator, val(3), val(4), 750, "pool B")
	require.NoError(t, err)

	require.NoError(t, r.Deactivate(operator, id0))

	// the arena is never compacted
	assert.Equal(t, 2, r.Len())
	p0, err := r.Get(id0)
	require.NoError(t, err)
	assert.False(t, p0.Active)
	p1, err := r.Get(id1)
	require.NoError(t, err)
	assert.True(t, p1.Active)
}

func TestDeactivateRequiresOperator(t *testing.T) {
	r := newTestRegistry(t)

	id, err := r.Append(operator, val(1), val(2), 500, "pool A")
	require.NoError(t, err)

	err = r.Deactivate(stranger, id)
	assert.ErrorIs(t, err, comm_authz.ErrUnauthorizedCaller)

	p, err := r.Get(id)
	require.NoError(t, err)
	assert.True(t, p.Active)
}

func TestGetOutOfRange(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get(0)
	assert.ErrorIs(t, err, comm_lending.ErrInvalidPool)
	_, err = r.Get(-1)
	assert.ErrorIs(t, err, comm_lending.ErrInvalidPool)

	err = r.Deactivate(operator, 5)
	assert.ErrorIs(t, err, comm_lending.ErrInvalidPool)
}

func TestSnapshotIsolatedFromLaterMutation(t *testing.T) {
	r := newTestRegistry(t)

	id, err := r.Append(operator, val(1), val(2), 500, "pool A")
	require.NoError(t, err)

	snap := r.Snapshot()
	require.NoError(t, r.Deactivate(operator, id))
	_, err = r.Append(operator, val(3), val(4), 750, "pool B")
	require.NoError(t, err)

	require.Len(t, snap, 1)
	assert.True(t, snap[0].Active)
}

func TestMutationsEmitAuditRecords(t *testing.T) {
	gate := authz.NewInMemoryGate(owner)
	require.NoError(t, gate.Grant(owner, operator))
	sink := audit.NewInMemorySink(nil)
	r := NewInMemoryRegistry(gate, sink, testCtSize)

	id, err := r.Append(operator, val(1), val(2), 500, "pool A")
	require.NoError(t, err)
	require.NoError(t, r.Deactivate(operator, id))

	recs := sink.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, OpPoolAppend, recs[0].Op)
	assert.Equal(t, operator, recs[0].Caller)
	assert.Equal(t, []byte("pool A"), recs[0].Payload)
	assert.Equal(t, OpPoolDeactivate, recs[1].Op)
	assert.Equal(t, operator, recs[1].Caller)
}

func TestRejectedMutationsLeaveNoAuditTrace(t *testing.T) {
	gate := authz.NewInMemoryGate(owner)
	require.NoError(t, gate.Grant(owner, operator))
	sink := audit.NewInMemorySink(nil)
	r := NewInMemoryRegistry(gate, sink, testCtSize)

	_, err := r.Append(stranger, val(1), val(2), 500, "rogue")
	require.ErrorIs(t, err, comm_authz.ErrUnauthorizedCaller)

	id, err := r.Append(operator, val(1), val(2), 500, "pool A")
	require.NoError(t, err)
	err = r.Deactivate(stranger, id)
	require.ErrorIs(t, err, comm_authz.ErrUnauthorizedCaller)

	recs := sink.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, OpPoolAppend, recs[0].Op)
}

func TestConcurrentAppendsAreGapFree(t *testing.T) {
	r := newTestRegistry(t)

	var g errgroup.Group
	ids := make(chan int, 64)
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 8; i++ {
				id, err := r.Append(operator, val(1), val(2), 500, "pool")
				if err != nil {
					return err
				}
				ids <- id
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, 64)
	for id := 0; id < 64; id++ {
		assert.True(t, seen[id], "id %d missing", id)
	}
}
