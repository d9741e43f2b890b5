package ring

// Add evaluates out = a + b mod m.
func (r *Ring) Add(a, b, out *Poly) {
	for i := 0; i < r.n; i++ {
		out.Coeffs[i] = r.reduce(a.Coeffs[i] + b.Coeffs[i])
	}
}

// Sub evaluates out = a - b mod m.
func (r *Ring) Sub(a, b, out *Poly) {
	for i := 0; i < r.n; i++ {
		out.Coeffs[i] = r.reduce(a.Coeffs[i] + r.modulus - b.Coeffs[i])
	}
}

// Neg evaluates out = -a mod m.
func (r *Ring) Neg(a, out *Poly) {
	for i := 0; i < r.n; i++ {
		out.Coeffs[i] = r.reduce(r.modulus - a.Coeffs[i])
	}
}

// Reduce reduces the coefficients of a into [0, m) and writes them on out.
// Unlike the other operations, a may hold arbitrary uint64 values.
func (r *Ring) Reduce(a, out *Poly) {
	for i := 0; i < r.n; i++ {
		out.Coeffs[i] = r.reduce(a.Coeffs[i])
	}
}

// MulScalar evaluates out = c * a mod m.
func (r *Ring) MulScalar(a *Poly, c uint64, out *Poly) {
	c = r.reduce(c)
	for i := 0; i < r.n; i++ {
		out.Coeffs[i] = r.reduce(a.Coeffs[i] * c)
	}
}

// AddScalar evaluates out = a + c mod m, where c is added to the
// constant coefficient only.
func (r *Ring) AddScalar(a *Poly, c uint64, out *Poly) {
	out.Copy(a)
	out.Coeffs[0] = r.reduce(a.Coeffs[0] + r.reduce(c))
}

// Mul evaluates the cyclic convolution out = a * b mod (X^N - 1, m):
//
//	out[k] = sum_{i+j = k mod N} a[i] * b[j] mod m.
//
// The operands must be reduced. out can alias a or b.
func (r *Ring) Mul(a, b, out *Poly) {

	N := r.n

	buff := r.getBuffer()
	defer r.putBuffer(buff)
	acc := *buff

	for i, ai := range a.Coeffs[:N] {

		if ai == 0 {
			continue
		}

		k := i
		for _, bj := range b.Coeffs[:N] {
			acc[k] += ai * bj
			if k++; k == N {
				k = 0
			}
		}
	}

	for k := range acc {
		out.Coeffs[k] = r.reduce(acc[k])
	}
}

// MulTernary evaluates out = a * t mod (X^N - 1, m) for a sparse ternary t.
// The result is identical to Mul(a, t.Dense()). out can alias a.
func (r *Ring) MulTernary(a *Poly, t *Ternary, out *Poly) {

	N := r.n

	buff := r.getBuffer()
	defer r.putBuffer(buff)
	acc := *buff

	mulTernaryAdd(N, r.modulus, a.Coeffs, t, acc)

	for k := range acc {
		out.Coeffs[k] = r.reduce(acc[k])
	}
}

// mulTernaryAdd accumulates a * t on acc without reduction, representing
// -a[i] by m - a[i].
func mulTernaryAdd(N int, m uint64, a []uint64, t *Ternary, acc []uint64) {

	for _, j := range t.Ones {
		k := j
		for _, ai := range a[:N] {
			acc[k] += ai
			if k++; k == N {
				k = 0
			}
		}
	}

	for _, j := range t.NegOnes {
		k := j
		for _, ai := range a[:N] {
			acc[k] += m - ai
			if k++; k == N {
				k = 0
			}
		}
	}
}

// MulProductForm evaluates out = a * (f1*f2 + f3) mod (X^N - 1, m).
// The result is identical to Mul(a, pf.Dense()). out can alias a.
func (r *Ring) MulProductForm(a *Poly, pf *ProductForm, out *Poly) {
	tmp := r.NewPoly()
	r.MulTernary(a, pf.F1, tmp)
	r.MulTernary(tmp, pf.F2, tmp)
	r.MulTernary(a, pf.F3, out)
	r.Add(tmp, out, out)
}

// MulSparse evaluates out = a * s mod (X^N - 1, m), dispatching on the
// concrete type of s.
func (r *Ring) MulSparse(a *Poly, s Sparse, out *Poly) {
	switch s := s.(type) {
	case *Ternary:
		r.MulTernary(a, s, out)
	case *ProductForm:
		r.MulProductForm(a, s, out)
	default:
		dense := r.NewPoly()
		s.Dense(r, dense)
		r.Mul(a, dense, out)
	}
}

// IsOne returns true if a is the multiplicative identity (1, 0, ..., 0).
func (r *Ring) IsOne(a *Poly) bool {
	if r.reduce(a.Coeffs[0]) != 1 {
		return false
	}
	for _, c := range a.Coeffs[1:r.n] {
		if r.reduce(c) != 0 {
			return false
		}
	}
	return true
}

// EqualMod returns true if a and b are equal modulo m.
func (r *Ring) EqualMod(a, b *Poly) bool {
	for i := 0; i < r.n; i++ {
		if r.reduce(a.Coeffs[i]) != r.reduce(b.Coeffs[i]) {
			return false
		}
	}
	return true
}

// Centered returns the centered representatives of the coefficients of a,
// in [-m/2, m/2) for even m and in [-(m-1)/2, (m-1)/2] for odd m.
func (r *Ring) Centered(a *Poly) (values []int64) {
	values = make([]int64, r.n)
	half := (r.modulus + 1) >> 1
	for i := range values {
		if c := r.reduce(a.Coeffs[i]); c >= half {
			values[i] = int64(c) - int64(r.modulus)
		} else {
			values[i] = int64(c)
		}
	}
	return
}

// SetCentered writes the signed values on out, reduced modulo m.
func (r *Ring) SetCentered(values []int64, out *Poly) {
	m := int64(r.modulus)
	for i := 0; i < r.n; i++ {
		v := values[i] % m
		if v < 0 {
			v += m
		}
		out.Coeffs[i] = uint64(v)
	}
}

// CenterLift takes the centered representatives of the coefficients of a
// in the receiver and reduces them modulo the modulus of ringOut, writing
// the result on out. Both rings must have the same degree.
//
// This is the only way to move a polynomial from one modulus to another.
func (r *Ring) CenterLift(a *Poly, ringOut *Ring, out *Poly) {
	ringOut.SetCentered(r.Centered(a), out)
}
