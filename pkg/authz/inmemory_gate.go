package authz

import (
	"sync"

	comm_authz "github.com/privfi/credence/pkg/common/authz"
	"github.com/privfi/credence/pkg/identity"
)

// InMemoryGate is a monotonic grant set. Identities are only ever added;
// revocation would need a different gate behind the same interface.
type InMemoryGate struct {
	lock   sync.RWMutex
	owner  identity.Address
	grants map[identity.Address]struct{}
}

func NewInMemoryGate(owner identity.Address) *InMemoryGate {
	return &InMemoryGate{
		owner:  owner,
		grants: make(map[identity.Address]struct{}),
	}
}

func (g *InMemoryGate) Grant(granter, grantee identity.Address) error {
	if !g.IsAuthorized(granter) {
		return comm_authz.ErrUnauthorizedCaller
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	g.grants[grantee] = struct{}{}
	return nil
}

func (g *InMemoryGate) IsAuthorized(id identity.Address) bool {
	if id == g.owner {
		return true
	}

	g.lock.RLock()
	defer g.lock.RUnlock()

	_, ok := g.grants[id]
	return ok
}
