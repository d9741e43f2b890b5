// Package ring implements arithmetic in the truncated polynomial ring
// Z_m[X]/(X^N - 1) used by NTRUEncrypt: additions, cyclic convolutions,
// dense and sparse products, inversion, center lifts and bit packing.
package ring

import (
	"fmt"

	"github.com/tuneinsight/ntru/utils"
	"github.com/tuneinsight/ntru/utils/structs"
)

// MaxModulus is the largest supported modulus. Products of two reduced
// coefficients accumulated over N <= MaxN terms then fit in an uint64.
const MaxModulus = 1 << 16

// MaxN is the largest supported ring degree.
const MaxN = 1 << 16

// Ring is the ring Z_m[X]/(X^N - 1) for a degree N and a modulus m.
// A Ring is immutable and can be shared between goroutines.
type Ring struct {
	n          int
	modulus    uint64
	mask       uint64
	logModulus int

	// pool of accumulators for the convolutions
	pool structs.BufferPool[*[]uint64]
}

// NewRing creates a new Ring of degree N and modulus m.
// N must be at least 2 and m must be in [2, MaxModulus].
func NewRing(N int, modulus uint64) (r *Ring, err error) {

	if N < 2 || N > MaxN {
		return nil, fmt.Errorf("invalid ring degree: N=%d must be in [2, %d]", N, MaxN)
	}

	if modulus < 2 || modulus > MaxModulus {
		return nil, fmt.Errorf("invalid ring modulus: m=%d must be in [2, %d]", modulus, MaxModulus)
	}

	r = &Ring{
		n:          N,
		modulus:    modulus,
		logModulus: utils.Log2Ceil(modulus),
	}

	if utils.IsPowerOfTwo(modulus) {
		r.mask = modulus - 1
	}

	r.pool = structs.NewSyncPool(func() *[]uint64 {
		buff := make([]uint64, N)
		return &buff
	})

	return
}

// N returns the degree of the ring.
func (r *Ring) N() int {
	return r.n
}

// Modulus returns the coefficient modulus of the ring.
func (r *Ring) Modulus() uint64 {
	return r.modulus
}

// LogModulus returns ceil(log2(m)), the number of bits of a packed coefficient.
func (r *Ring) LogModulus() int {
	return r.logModulus
}

// IsPowerOfTwo returns true if the modulus of the ring is a power of two.
func (r *Ring) IsPowerOfTwo() bool {
	return r.mask != 0
}

// Equal returns true if both rings have the same degree and modulus.
func (r *Ring) Equal(other *Ring) bool {
	return r.n == other.n && r.modulus == other.modulus
}

// AtModulus returns a ring of the same degree with modulus m.
func (r *Ring) AtModulus(modulus uint64) (*Ring, error) {
	return NewRing(r.n, modulus)
}

// NewPoly allocates a new zero polynomial of the ring.
func (r *Ring) NewPoly() *Poly {
	return NewPoly(r.n)
}

// NewMonomial allocates a new polynomial equal to c*X^i.
func (r *Ring) NewMonomial(c uint64, i int) *Poly {
	p := r.NewPoly()
	p.Coeffs[((i%r.n)+r.n)%r.n] = r.reduce(c)
	return p
}

func (r *Ring) reduce(x uint64) uint64 {
	if r.mask != 0 {
		return x & r.mask
	}
	return x % r.modulus
}

func (r *Ring) getBuffer() *[]uint64 {
	buff := r.pool.Get()
	utils.Zero(*buff)
	return buff
}

func (r *Ring) putBuffer(buff *[]uint64) {
	r.pool.Put(buff)
}
