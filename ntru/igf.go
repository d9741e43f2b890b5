package ntru

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/tuneinsight/ntru/ring"
)

// hashStream is the counter-mode expansion of a seed shared by the index
// generator and the mask generator: Z = H(seed) and the stream is
// H(Z || 0) | H(Z || 1) | ..., with the counter on 4 big-endian bytes.
type hashStream struct {
	h       hash.Hash
	z       []byte
	counter uint32
	buf     []byte
}

func newHashStream(id HashID, seed []byte, minCalls int) (hs *hashStream, err error) {

	hs = new(hashStream)

	if hs.h, err = id.New(); err != nil {
		return nil, err
	}

	hs.h.Write(seed)
	hs.z = hs.h.Sum(nil)

	hs.buf = make([]byte, 0, minCalls*hs.h.Size())
	for i := 0; i < minCalls; i++ {
		hs.extend()
	}

	return
}

// extend appends the next hash block to the stream.
func (hs *hashStream) extend() {
	var ctr [4]byte
	binary.BigEndian.PutUint32(ctr[:], hs.counter)
	hs.counter++

	hs.h.Reset()
	hs.h.Write(hs.z)
	hs.h.Write(ctr[:])
	hs.buf = hs.h.Sum(hs.buf)
}

// indexGenerator is the hash-based index generation function IGF-2. It
// reads C-bit values, most significant bit first, from the hash stream
// of a seed and returns the ones below the largest multiple of the bound
// that fits on C bits, reduced modulo the bound.
//
// It implements [ring.IndexSource], so that the blinding polynomial r is
// derived from its seed with the same samplers as the private keys.
type indexGenerator struct {
	stream *hashStream
	c      int
	bitPos int
}

func newIndexGenerator(params Parameters, seed []byte) (*indexGenerator, error) {
	stream, err := newHashStream(params.hash, seed, params.minCallsR)
	if err != nil {
		return nil, fmt.Errorf("cannot newIndexGenerator: %w", err)
	}
	return &indexGenerator{stream: stream, c: params.c}, nil
}

// NextIndex returns the next index in [0, bound).
func (igf *indexGenerator) NextIndex(bound int) (int, error) {

	if bound < 1 || bound > 1<<igf.c {
		return 0, fmt.Errorf("cannot NextIndex: bound %d is not in [1, 2^%d]", bound, igf.c)
	}

	thresh := uint64(1)<<igf.c - (uint64(1)<<igf.c)%uint64(bound)

	for {
		if v := igf.readBits(); v < thresh {
			return int(v % uint64(bound)), nil
		}
	}
}

// readBits returns the next C bits of the stream, extending it as needed.
func (igf *indexGenerator) readBits() (v uint64) {

	for len(igf.stream.buf)*8-igf.bitPos < igf.c {
		igf.stream.extend()
	}

	for i := 0; i < igf.c; i++ {
		pos := igf.bitPos + i
		bit := igf.stream.buf[pos>>3] >> (7 - pos&7) & 1
		v = v<<1 | uint64(bit)
	}

	igf.bitPos += igf.c

	return
}

// blindingPoly derives the blinding polynomial r from sData. Its +1
// positions are drawn before its -1 positions and, in product form, the
// factors are drawn in the order R1, R2, R3.
func blindingPoly(params Parameters, sData []byte) (r ring.Sparse, err error) {

	igf, err := newIndexGenerator(params, sData)
	if err != nil {
		return nil, err
	}

	return sampleSparse(params, igf)
}

// sampleSparse samples a polynomial with the shape of the private
// polynomial T (and of r) from src.
func sampleSparse(params Parameters, src ring.IndexSource) (ring.Sparse, error) {

	N := params.N()

	if params.productForm {
		pfs, err := ring.NewProductFormSampler(src, N, params.df[0], params.df[1], params.df[2])
		if err != nil {
			return nil, err
		}
		pf, err := pfs.ReadNew()
		if err != nil {
			return nil, err
		}
		return pf, nil
	}

	ts, err := ring.NewTernarySampler(src, N, params.df[0], params.df[0])
	if err != nil {
		return nil, err
	}

	t, err := ts.ReadNew()
	if err != nil {
		return nil, err
	}

	return t, nil
}
