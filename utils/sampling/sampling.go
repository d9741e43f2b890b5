// Package sampling implements secure sampling of bytes and integers.
package sampling

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
)

// Source samples bytes and bounded integers from a [PRNG].
// A Source is as deterministic as its PRNG: two Sources reading
// identical byte streams return identical values.
// A Source must not be shared between goroutines.
type Source struct {
	prng PRNG
	buff [8]byte
}

// NewSource returns a new Source reading from prng.
func NewSource(prng PRNG) *Source {
	return &Source{prng: prng}
}

// PRNG returns the underlying PRNG.
func (s *Source) PRNG() PRNG {
	return s.prng
}

// Bytes returns n bytes read from the underlying PRNG.
func (s *Source) Bytes(n int) (b []byte, err error) {
	b = make([]byte, n)
	if err = s.Read(b); err != nil {
		return nil, err
	}
	return
}

// Read fills b with bytes read from the underlying PRNG.
// A short read is reported as [ErrEntropyUnavailable].
func (s *Source) Read(b []byte) (err error) {
	if _, err = io.ReadFull(s.prng, b); err != nil {
		if errors.Is(err, ErrEntropyUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrEntropyUnavailable, err)
	}
	return nil
}

// Uniform returns an integer uniformly distributed in [0, bound).
// It reads the smallest number of bytes covering bound, masks the
// excess bits and rejects values greater or equal to bound.
func (s *Source) Uniform(bound uint64) (uint64, error) {

	if bound == 0 {
		return 0, fmt.Errorf("cannot Uniform: bound is zero")
	}

	if bound == 1 {
		return 0, nil
	}

	logBound := bits.Len64(bound - 1)
	nbBytes := (logBound + 7) >> 3
	mask := uint64(1)<<logBound - 1
	if logBound == 64 {
		mask = ^uint64(0)
	}

	for {
		clear(s.buff[:])
		if err := s.Read(s.buff[:nbBytes]); err != nil {
			return 0, err
		}

		if v := binary.LittleEndian.Uint64(s.buff[:]) & mask; v < bound {
			return v, nil
		}
	}
}

// NextIndex returns an index uniformly distributed in [0, bound).
func (s *Source) NextIndex(bound int) (int, error) {
	if bound <= 0 {
		return 0, fmt.Errorf("cannot NextIndex: bound must be positive but is %d", bound)
	}
	v, err := s.Uniform(uint64(bound))
	return int(v), err
}
