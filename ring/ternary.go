package ring

import (
	"fmt"
	"slices"
)

// Sparse is implemented by the sparse polynomials of this package.
type Sparse interface {
	// Dense writes the polynomial on out with coefficients modulo the modulus of r.
	Dense(r *Ring, out *Poly)
	// Zero erases the polynomial.
	Zero()
}

// Ternary is a sparse polynomial with coefficients in {-1, 0, 1}, stored as
// the positions of its +1 and -1 coefficients.
type Ternary struct {
	N       int
	Ones    []int
	NegOnes []int
}

// NewTernary returns a new Ternary of degree N from the positions of its
// non-zero coefficients. It returns an error if a position is out of
// range or repeated.
func NewTernary(N int, ones, negOnes []int) (*Ternary, error) {

	seen := make([]bool, N)

	for _, list := range [][]int{ones, negOnes} {
		for _, i := range list {
			if i < 0 || i >= N {
				return nil, fmt.Errorf("invalid ternary polynomial: index %d out of range [0, %d)", i, N)
			}
			if seen[i] {
				return nil, fmt.Errorf("invalid ternary polynomial: index %d appears twice", i)
			}
			seen[i] = true
		}
	}

	return &Ternary{N: N, Ones: slices.Clone(ones), NegOnes: slices.Clone(negOnes)}, nil
}

// Weight returns the number of non-zero coefficients.
func (t *Ternary) Weight() int {
	return len(t.Ones) + len(t.NegOnes)
}

// Dense writes t on out, with -1 represented by m - 1.
func (t *Ternary) Dense(r *Ring, out *Poly) {
	out.Zero()
	for _, i := range t.Ones {
		out.Coeffs[i] = 1
	}
	for _, i := range t.NegOnes {
		out.Coeffs[i] = r.modulus - 1
	}
}

// Signed returns the coefficients of t as signed integers.
func (t *Ternary) Signed() (values []int64) {
	values = make([]int64, t.N)
	for _, i := range t.Ones {
		values[i] = 1
	}
	for _, i := range t.NegOnes {
		values[i] = -1
	}
	return
}

// Zero erases the positions stored in t.
func (t *Ternary) Zero() {
	clear(t.Ones)
	clear(t.NegOnes)
	t.Ones = t.Ones[:0]
	t.NegOnes = t.NegOnes[:0]
}

// CopyNew returns a deep copy of t.
func (t *Ternary) CopyNew() *Ternary {
	return &Ternary{N: t.N, Ones: slices.Clone(t.Ones), NegOnes: slices.Clone(t.NegOnes)}
}

// Equal returns true if t and other have the same coefficients.
func (t *Ternary) Equal(other *Ternary) bool {
	if t.N != other.N {
		return false
	}
	return slices.Equal(t.Signed(), other.Signed())
}

// ProductForm is the sparse polynomial F1*F2 + F3 for ternary F1, F2 and F3.
type ProductForm struct {
	F1, F2, F3 *Ternary
}

// Dense writes F1*F2 + F3 on out.
func (pf *ProductForm) Dense(r *Ring, out *Poly) {
	tmp := r.NewPoly()
	pf.F1.Dense(r, tmp)
	r.MulTernary(tmp, pf.F2, tmp)
	pf.F3.Dense(r, out)
	r.Add(tmp, out, out)
}

// Zero erases the three factors.
func (pf *ProductForm) Zero() {
	pf.F1.Zero()
	pf.F2.Zero()
	pf.F3.Zero()
}

// CopyNew returns a deep copy of pf.
func (pf *ProductForm) CopyNew() *ProductForm {
	return &ProductForm{F1: pf.F1.CopyNew(), F2: pf.F2.CopyNew(), F3: pf.F3.CopyNew()}
}

// Equal returns true if the factors of pf and other are equal.
func (pf *ProductForm) Equal(other *ProductForm) bool {
	return pf.F1.Equal(other.F1) && pf.F2.Equal(other.F2) && pf.F3.Equal(other.F3)
}
