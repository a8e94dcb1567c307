package profile

import (
	"errors"
	"time"

	"github.com/privfi/credence/core/opaque"
	"github.com/privfi/credence/pkg/identity"
)

var (
	ErrProfileNotFound = errors.New("profile: profile not found")
)

// Attributes are the encrypted financial inputs a data owner submits.
type Attributes struct {
	Income            opaque.Value
	Assets            opaque.Value
	Debts             opaque.Value
	PaymentHistory    opaque.Value
	CreditUtilization opaque.Value
}

// CreditProfile is the stored record for one owner. Score is nil until the
// scoring pipeline first computes it and is cleared again whenever the raw
// attributes are resubmitted, so a score can never outlive its inputs.
type CreditProfile struct {
	Owner             identity.Address
	Income            opaque.Value
	Assets            opaque.Value
	Debts             opaque.Value
	PaymentHistory    opaque.Value
	CreditUtilization opaque.Value
	Score             opaque.Value
	UpdatedAt         time.Time
}

// HasScore reports whether a computed score is present and current.
func (p *CreditProfile) HasScore() bool {
	return len(p.Score) > 0
}

// Store keeps one profile per owner. Submit is a self-service wholesale
// overwrite: concurrent submissions for the same owner serialize, and readers
// observe either the prior complete profile or the new one, never a mix.
type Store interface {
	Submit(owner identity.Address, attrs Attributes) error
	Get(owner identity.Address) (*CreditProfile, error)

	// SetScore records the computed score for an existing profile. Only the
	// scoring pipeline calls this.
	SetScore(owner identity.Address, score opaque.Value) error

	// Delete erases the owner's profile, score included.
	// ErrProfileNotFound when absent.
	Delete(owner identity.Address) error
}
