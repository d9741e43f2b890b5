package ntru

import (
	"github.com/tuneinsight/ntru/ring"
)

// PolyQ is a polynomial with coefficients modulo the large modulus Q.
type PolyQ struct {
	ring.Poly
}

// PolyP is a polynomial with coefficients modulo the small modulus P.
type PolyP struct {
	ring.Poly
}

// NewPolyQ allocates a new zero [PolyQ].
func NewPolyQ(params Parameters) PolyQ {
	return PolyQ{Poly: *params.RingQ().NewPoly()}
}

// NewPolyP allocates a new zero [PolyP].
func NewPolyP(params Parameters) PolyP {
	return PolyP{Poly: *params.RingP().NewPoly()}
}

// CopyNew creates a deep copy of the receiver and returns it.
func (pol PolyQ) CopyNew() PolyQ {
	return PolyQ{Poly: *pol.Poly.CopyNew()}
}

// Equal returns true if the receiver and other have the same coefficients.
func (pol PolyQ) Equal(other PolyQ) bool {
	return pol.Poly.Equal(&other.Poly)
}

// CopyNew creates a deep copy of the receiver and returns it.
func (pol PolyP) CopyNew() PolyP {
	return PolyP{Poly: *pol.Poly.CopyNew()}
}

// Equal returns true if the receiver and other have the same coefficients.
func (pol PolyP) Equal(other PolyP) bool {
	return pol.Poly.Equal(&other.Poly)
}

// liftQToP writes the centered representatives of a modulo P on out.
func liftQToP(params Parameters, a PolyQ, out PolyP) {
	params.RingQ().CenterLift(&a.Poly, params.RingP(), &out.Poly)
}

// liftPToQ writes the centered representatives of a modulo Q on out.
func liftPToQ(params Parameters, a PolyP, out PolyQ) {
	params.RingP().CenterLift(&a.Poly, params.RingQ(), &out.Poly)
}
