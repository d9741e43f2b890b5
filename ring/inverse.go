package ring

import (
	"errors"
	"fmt"

	"github.com/tuneinsight/ntru/utils"
)

// ErrNotInvertible is returned when a polynomial has no inverse in the ring.
var ErrNotInvertible = errors.New("polynomial is not invertible")

// Inverse computes out such that a * out = 1 mod (X^N - 1, m).
//
// For a power-of-two modulus the inverse is first computed modulo 2 and
// then lifted with Newton iterations b = b * (2 - a*b), each round doubling
// the number of correct bits until m is reached. For a prime modulus it is
// computed directly over GF(m). Other moduli are not supported.
//
// It returns an error wrapping [ErrNotInvertible] if a has no inverse, in
// which case out is left unchanged.
func (r *Ring) Inverse(a, out *Poly) (err error) {

	switch {
	case r.IsPowerOfTwo():
		return r.inversePowerOfTwo(a, out)
	case utils.IsPrime(r.modulus):
		return r.inversePrime(a, out)
	default:
		return fmt.Errorf("cannot Inverse: modulus %d is neither prime nor a power of two", r.modulus)
	}
}

// InverseNew returns the inverse of a, see [Ring.Inverse].
func (r *Ring) InverseNew(a *Poly) (out *Poly, err error) {
	out = r.NewPoly()
	if err = r.Inverse(a, out); err != nil {
		return nil, err
	}
	return
}

func (r *Ring) inversePrime(a, out *Poly) error {

	coeffs := make([]uint64, r.n)
	for i := range coeffs {
		coeffs[i] = a.Coeffs[i] % r.modulus
	}

	b, ok := almostInverse(coeffs, r.modulus)
	if !ok {
		return fmt.Errorf("cannot Inverse mod %d: %w", r.modulus, ErrNotInvertible)
	}

	copy(out.Coeffs, b)

	return nil
}

func (r *Ring) inversePowerOfTwo(a, out *Poly) (err error) {

	N := r.n

	coeffs := make([]uint64, N)
	for i := range coeffs {
		coeffs[i] = a.Coeffs[i] & 1
	}

	b, ok := almostInverse(coeffs, 2)
	if !ok {
		return fmt.Errorf("cannot Inverse mod 2: %w", ErrNotInvertible)
	}

	inv := &Poly{Coeffs: b}
	ab := r.NewPoly()

	for logQ := 1; logQ < r.logModulus; {

		logQ = min(2*logQ, r.logModulus)

		var sub *Ring
		if sub, err = r.AtModulus(1 << logQ); err != nil {
			return fmt.Errorf("cannot Inverse: %w", err)
		}

		// ab = 2 - a * b
		sub.Mul(a, inv, ab)
		sub.Neg(ab, ab)
		sub.AddScalar(ab, 2, ab)

		sub.Mul(inv, ab, inv)
	}

	copy(out.Coeffs, inv.Coeffs)

	return nil
}

// almostInverse computes the inverse of a in GF(p)[X]/(X^N - 1) for a prime p,
// with the "almost inverse" variant of the extended Euclidean algorithm.
// It maintains a*b = X^k f and a*c = X^k g modulo (X^N - 1), where f and g
// start as a and X^N - 1, until f is a non-zero constant.
// The coefficients of a must be reduced modulo p.
func almostInverse(a []uint64, p uint64) (inv []uint64, ok bool) {

	N := len(a)

	f := make([]uint64, N+1)
	g := make([]uint64, N+1)
	copy(f, a)
	g[0], g[N] = p-1, 1

	// b and c are only ever used modulo X^N - 1.
	b := make([]uint64, N)
	c := make([]uint64, N)
	b[0] = 1

	degF, degG := degree(f, N-1), N

	if degF < 0 {
		return nil, false
	}

	var k int

	for {

		// f = f/X, c = c*X
		for f[0] == 0 {
			copy(f, f[1:degF+1])
			f[degF] = 0
			degF--

			last := c[N-1]
			copy(c[1:], c[:N-1])
			c[0] = last

			k++
		}

		if degF == 0 {
			f0Inv, _ := utils.ModInverse(f[0], p)

			// inv = f0^-1 * X^-k * b
			inv = make([]uint64, N)
			shift := N - k%N
			for i, bi := range b {
				inv[(i+shift)%N] = bi * f0Inv % p
			}

			return inv, true
		}

		if degF < degG {
			f, g = g, f
			b, c = c, b
			degF, degG = degG, degF
		}

		// f = f - u*g, b = b - u*c with u = f0/g0, cancelling the constant term of f.
		g0Inv, _ := utils.ModInverse(g[0], p)
		u := f[0] * g0Inv % p

		for i := 0; i <= degG; i++ {
			f[i] = (f[i] + p - u*g[i]%p) % p
		}

		for i := range b {
			b[i] = (b[i] + p - u*c[i]%p) % p
		}

		if degF = degree(f, degF); degF < 0 {
			// gcd(a, X^N - 1) is not a unit.
			return nil, false
		}
	}
}

// degree returns the degree of f, searching from index start downward,
// and -1 if f is zero.
func degree(f []uint64, start int) int {
	for i := start; i >= 0; i-- {
		if f[i] != 0 {
			return i
		}
	}
	return -1
}
