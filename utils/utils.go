// Package utils implements various helper functions.
package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// IsPowerOfTwo returns true if x is a strictly positive power of two.
func IsPowerOfTwo[T constraints.Integer](x T) bool {
	return x > 0 && x&(x-1) == 0
}

// IsPrime applies trial division to decide whether x is prime.
// It is only meant for the small ring degrees used in this module.
func IsPrime[T constraints.Integer](x T) bool {
	if x < 2 {
		return false
	}
	for d := T(2); d*d <= x; d++ {
		if x%d == 0 {
			return false
		}
	}
	return true
}

// BitLen returns the number of bits needed to represent x.
// BitLen(0) is 0.
func BitLen[T constraints.Unsigned](x T) int {
	return bits.Len64(uint64(x))
}

// Log2Ceil returns ceil(log2(x)) for x > 0, and 0 otherwise.
func Log2Ceil[T constraints.Unsigned](x T) int {
	if x <= 1 {
		return 0
	}
	return bits.Len64(uint64(x) - 1)
}

// CeilDiv returns ceil(a/b) for non-negative a and positive b.
func CeilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

// ModInverse returns the inverse of a modulo the prime p, and false
// if a is zero modulo p.
func ModInverse[T constraints.Unsigned](a, p T) (T, bool) {
	a %= p
	if a == 0 {
		return 0, false
	}

	// Fermat: a^(p-2) mod p.
	var res, base T = 1, a
	for e := p - 2; e > 0; e >>= 1 {
		if e&1 == 1 {
			res = res * base % p
		}
		base = base * base % p
	}

	return res, true
}

// Zero sets all the elements of s to zero.
func Zero[T constraints.Integer](s []T) {
	for i := range s {
		s[i] = 0
	}
}

// EqualSlice checks the equality between two slices of integers.
func EqualSlice[T constraints.Integer](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
