package authz

import (
	"errors"

	"github.com/privfi/credence/pkg/identity"
)

var (
	ErrUnauthorizedCaller = errors.New("authz: unauthorized caller")
)

// Gate tracks which principals may invoke privileged operations. Transitions
// are one-way: an identity moves from unauthorized to authorized and never
// back. The gate owner is implicitly authorized.
type Gate interface {
	// Grant authorizes grantee. The granter must already be authorized,
	// otherwise ErrUnauthorizedCaller. Granting an already-authorized
	// identity is a no-op.
	Grant(granter, grantee identity.Address) error

	IsAuthorized(id identity.Address) bool
}
