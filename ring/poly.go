package ring

import (
	"github.com/tuneinsight/ntru/utils"
)

// Poly is the structure that contains the coefficients of a polynomial.
// Coefficients are stored in [0, m) for the modulus m of the Ring that
// produced them; a Poly does not carry its modulus.
type Poly struct {
	Coeffs []uint64
}

// NewPoly creates a new polynomial with N coefficients set to zero.
func NewPoly(N int) *Poly {
	return &Poly{Coeffs: make([]uint64, N)}
}

// N returns the number of coefficients of the polynomial.
func (pol *Poly) N() int {
	return len(pol.Coeffs)
}

// Zero sets all coefficients of the target polynomial to 0.
func (pol *Poly) Zero() {
	utils.Zero(pol.Coeffs)
}

// CopyNew creates an exact copy of the target polynomial.
func (pol *Poly) CopyNew() *Poly {
	cpy := NewPoly(pol.N())
	copy(cpy.Coeffs, pol.Coeffs)
	return cpy
}

// Copy copies the coefficients of other on the target polynomial.
// The copy is truncated to the smallest of the two degrees.
func (pol *Poly) Copy(other *Poly) {
	if pol != other {
		copy(pol.Coeffs, other.Coeffs)
	}
}

// Equal returns true if the receiver and other have the same coefficients.
func (pol *Poly) Equal(other *Poly) bool {
	if pol == other {
		return true
	}
	if pol == nil || other == nil {
		return false
	}
	return utils.EqualSlice(pol.Coeffs, other.Coeffs)
}
