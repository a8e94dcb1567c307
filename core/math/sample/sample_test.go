package sample

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
)

func TestUnitModNCoprime(t *testing.T) {
	// 35 = 5⋅7: units are exactly the residues coprime to both factors
	n := saferith.ModulusFromNat(new(saferith.Nat).SetUint64(35))

	for i := 0; i < 32; i++ {
		u := UnitModN(rand.Reader, n)
		assert.EqualValues(t, 1, u.IsUnit(n))
	}
}
