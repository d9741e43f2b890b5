package ring

import (
	"errors"
	"fmt"

	"github.com/tuneinsight/ntru/utils/sampling"
)

// IndexSource is a source of indexes uniformly distributed in [0, bound).
// It is implemented by [sampling.Source], and by hash-based index
// generators for the polynomials that must be derived from a seed.
type IndexSource interface {
	NextIndex(bound int) (int, error)
}

func wrapEntropyError(err error) error {
	if errors.Is(err, sampling.ErrEntropyUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", sampling.ErrEntropyUnavailable, err)
}

// TernarySampler samples ternary polynomials with a fixed number of +1 and
// -1 coefficients, whose positions are drawn uniformly without replacement.
// Given the same stream of indexes, it returns the same polynomials.
type TernarySampler struct {
	src     IndexSource
	n       int
	ones    int
	negOnes int
	used    []bool
}

// NewTernarySampler creates a new TernarySampler of degree N drawing exactly
// ones coefficients equal to 1 and negOnes coefficients equal to -1.
func NewTernarySampler(src IndexSource, N, ones, negOnes int) (ts *TernarySampler, err error) {

	if ones < 0 || negOnes < 0 || ones+negOnes > N {
		return nil, fmt.Errorf("cannot NewTernarySampler: invalid weights (%d, %d) for N=%d", ones, negOnes, N)
	}

	return &TernarySampler{
		src:     src,
		n:       N,
		ones:    ones,
		negOnes: negOnes,
		used:    make([]bool, N),
	}, nil
}

// WithSource returns a copy of the sampler drawing from src.
func (ts *TernarySampler) WithSource(src IndexSource) *TernarySampler {
	return &TernarySampler{
		src:     src,
		n:       ts.n,
		ones:    ts.ones,
		negOnes: ts.negOnes,
		used:    make([]bool, ts.n),
	}
}

// ReadNew samples and returns a new Ternary.
// It returns an error wrapping [sampling.ErrEntropyUnavailable] if the
// source fails.
func (ts *TernarySampler) ReadNew() (t *Ternary, err error) {
	t = &Ternary{N: ts.n, Ones: make([]int, ts.ones), NegOnes: make([]int, ts.negOnes)}
	if err = ts.Read(t); err != nil {
		return nil, err
	}
	return
}

// Read samples a new ternary polynomial on t, reusing its backing slices.
// The +1 positions are drawn first, then the -1 positions.
func (ts *TernarySampler) Read(t *Ternary) (err error) {

	clear(ts.used)

	t.N = ts.n

	if t.Ones, err = ts.readPositions(t.Ones[:0], ts.ones); err != nil {
		return
	}

	if t.NegOnes, err = ts.readPositions(t.NegOnes[:0], ts.negOnes); err != nil {
		return
	}

	return
}

func (ts *TernarySampler) readPositions(positions []int, count int) ([]int, error) {

	// Bounds the number of draws so that a degenerate source cannot stall the sampler.
	budget := 8*ts.n + 1024

	for len(positions) < count {

		if budget--; budget < 0 {
			return positions, fmt.Errorf("cannot sample ternary polynomial: %w: too many repeated indexes", sampling.ErrEntropyUnavailable)
		}

		i, err := ts.src.NextIndex(ts.n)
		if err != nil {
			return positions, fmt.Errorf("cannot sample ternary polynomial: %w", wrapEntropyError(err))
		}

		if i < 0 || i >= ts.n {
			// Sanity check, this error should not happen.
			panic(fmt.Errorf("index source returned %d, outside [0, %d)", i, ts.n))
		}

		if !ts.used[i] {
			ts.used[i] = true
			positions = append(positions, i)
		}
	}

	return positions, nil
}

// ProductFormSampler samples product-form polynomials F1*F2 + F3, where
// each Fi has di coefficients equal to 1 and di equal to -1.
type ProductFormSampler struct {
	f1, f2, f3 *TernarySampler
}

// NewProductFormSampler creates a new ProductFormSampler of degree N with
// factor weights d1, d2 and d3.
func NewProductFormSampler(src IndexSource, N, d1, d2, d3 int) (pfs *ProductFormSampler, err error) {

	pfs = new(ProductFormSampler)

	if pfs.f1, err = NewTernarySampler(src, N, d1, d1); err != nil {
		return nil, fmt.Errorf("cannot NewProductFormSampler: %w", err)
	}

	if pfs.f2, err = NewTernarySampler(src, N, d2, d2); err != nil {
		return nil, fmt.Errorf("cannot NewProductFormSampler: %w", err)
	}

	if pfs.f3, err = NewTernarySampler(src, N, d3, d3); err != nil {
		return nil, fmt.Errorf("cannot NewProductFormSampler: %w", err)
	}

	return
}

// WithSource returns a copy of the sampler drawing from src.
func (pfs *ProductFormSampler) WithSource(src IndexSource) *ProductFormSampler {
	return &ProductFormSampler{
		f1: pfs.f1.WithSource(src),
		f2: pfs.f2.WithSource(src),
		f3: pfs.f3.WithSource(src),
	}
}

// ReadNew samples and returns a new ProductForm. The factors are drawn in
// the order F1, F2, F3.
func (pfs *ProductFormSampler) ReadNew() (pf *ProductForm, err error) {

	pf = new(ProductForm)

	if pf.F1, err = pfs.f1.ReadNew(); err != nil {
		return nil, err
	}

	if pf.F2, err = pfs.f2.ReadNew(); err != nil {
		return nil, err
	}

	if pf.F3, err = pfs.f3.ReadNew(); err != nil {
		return nil, err
	}

	return
}

// UniformSampler samples polynomials with coefficients uniform in [0, m).
type UniformSampler struct {
	src  IndexSource
	ring *Ring
}

// NewUniformSampler creates a new UniformSampler for the ring r.
func NewUniformSampler(src IndexSource, r *Ring) *UniformSampler {
	return &UniformSampler{src: src, ring: r}
}

// ReadNew samples and returns a new uniform polynomial.
func (us *UniformSampler) ReadNew() (pol *Poly, err error) {
	pol = us.ring.NewPoly()
	if err = us.Read(pol); err != nil {
		return nil, err
	}
	return
}

// Read samples a new uniform polynomial on pol.
func (us *UniformSampler) Read(pol *Poly) error {
	for i := range pol.Coeffs[:us.ring.n] {
		c, err := us.src.NextIndex(int(us.ring.modulus))
		if err != nil {
			return fmt.Errorf("cannot sample uniform polynomial: %w", wrapEntropyError(err))
		}
		pol.Coeffs[i] = uint64(c)
	}
	return nil
}
