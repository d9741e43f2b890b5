package ntru

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tuneinsight/ntru/ring"
	"github.com/tuneinsight/ntru/utils"
	"github.com/tuneinsight/ntru/utils/buffer"
)

const (
	// keyHeaderLen is the size of the N | Q header of serialized keys.
	keyHeaderLen = 4

	flagTernary     = 0x03
	flagProductForm = 0x04
)

// ternaryLen returns the size in bytes of a serialized ternary factor with
// count non-zero coefficients.
func ternaryLen(N, count int) int {
	return 4 + utils.CeilDiv(count*utils.BitLen(uint64(N-1)), 8)
}

func writeHeader(w buffer.Writer, params Parameters) (n int64, err error) {

	if n, err = buffer.WriteUint16(w, uint16(params.N())); err != nil {
		return n, fmt.Errorf("buffer.WriteUint16: %w", err)
	}

	var inc int64
	if inc, err = buffer.WriteUint16(w, uint16(params.Q())); err != nil {
		return n + inc, fmt.Errorf("buffer.WriteUint16: %w", err)
	}

	return n + inc, nil
}

func readHeader(r buffer.Reader, params Parameters) (n int64, err error) {

	var N, Q uint16

	if n, err = buffer.ReadUint16(r, &N); err != nil {
		return n, fmt.Errorf("buffer.ReadUint16: %w", err)
	}

	var inc int64
	if inc, err = buffer.ReadUint16(r, &Q); err != nil {
		return n + inc, fmt.Errorf("buffer.ReadUint16: %w", err)
	}
	n += inc

	if int(N) != params.N() || uint64(Q) != params.Q() {
		return n, fmt.Errorf("%w: header N=%d, Q=%d does not match parameters N=%d, Q=%d", ErrInvalidKey, N, Q, params.N(), params.Q())
	}

	return
}

// PublicKey is the NTRUEncrypt public key h = p * Fq * g mod (X^N - 1, Q).
type PublicKey struct {
	params Parameters
	H      PolyQ
}

// NewPublicKey returns a new zero [PublicKey] for the given parameters.
func NewPublicKey(params Parameters) *PublicKey {
	return &PublicKey{params: params, H: NewPolyQ(params)}
}

// Parameters returns the parameters of the key.
func (pk *PublicKey) Parameters() Parameters {
	return pk.params
}

// CopyNew creates a deep copy of the receiver and returns it.
func (pk *PublicKey) CopyNew() *PublicKey {
	return &PublicKey{params: pk.params, H: pk.H.CopyNew()}
}

// Equal returns true if the keys have the same parameters and the same h.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.params.Equal(&other.params) && pk.H.Equal(other.H)
}

// BinarySize returns the serialized size of the object in bytes.
func (pk *PublicKey) BinarySize() int {
	return pk.params.PublicKeyLen()
}

// WriteTo writes the key on w as N | Q | packed h, with N and Q on two
// little-endian bytes each. It implements the io.WriterTo interface.
//
// Unless w implements the buffer.Writer interface (see utils/buffer),
// it is wrapped into a bufio.Writer.
func (pk *PublicKey) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		if n, err = writeHeader(w, pk.params); err != nil {
			return
		}

		var inc int64
		if inc, err = buffer.WriteUint8Slice(w, pk.params.RingQ().Pack(&pk.H.Poly)); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint8Slice: %w", err)
		}

		return n + inc, w.Flush()

	default:
		return pk.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads a key written by [PublicKey.WriteTo] on the receiver,
// which must have been created with [NewPublicKey]. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer),
// it is wrapped into a bufio.Reader.
func (pk *PublicKey) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		if n, err = readHeader(r, pk.params); err != nil {
			return
		}

		data := make([]byte, pk.params.EncLen())

		var inc int64
		if inc, err = buffer.ReadUint8Slice(r, data); err != nil {
			return n + inc, fmt.Errorf("%w: buffer.ReadUint8Slice: %w", ErrInvalidKey, err)
		}

		if err = pk.params.RingQ().Unpack(data, &pk.H.Poly); err != nil {
			return n + inc, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}

		return n + inc, nil

	default:
		return pk.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (pk *PublicKey) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(pk.BinarySize())
	_, err = pk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by [PublicKey.MarshalBinary]
// on the object. If the receiver has no parameters, they are looked up in
// the catalog from the header of p, see [ParametersFromPublicKey].
func (pk *PublicKey) UnmarshalBinary(p []byte) (err error) {

	if pk.params.N() == 0 {
		var params Parameters
		if params, err = ParametersFromPublicKey(p); err != nil {
			return
		}
		*pk = *NewPublicKey(params)
	}

	if len(p) != pk.BinarySize() {
		return fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidKey, pk.BinarySize(), len(p))
	}

	_, err = pk.ReadFrom(buffer.NewBuffer(p))
	return
}

// PrivateKey is the NTRUEncrypt private key f = 1 + p*T. It stores the
// sparse polynomial T, ternary or in product form, and the inverses Fp
// and Fq of f modulo p and modulo Q.
type PrivateKey struct {
	params Parameters
	T      ring.Sparse
	Fp     PolyP
	Fq     PolyQ
}

// NewPrivateKey returns the private key f = 1 + p*T. It returns an error
// wrapping [ring.ErrNotInvertible] if f is not invertible modulo p or
// modulo Q.
func NewPrivateKey(params Parameters, T ring.Sparse) (sk *PrivateKey, err error) {

	sk = &PrivateKey{
		params: params,
		T:      T,
		Fp:     NewPolyP(params),
		Fq:     NewPolyQ(params),
	}

	if err = params.RingP().Inverse(sk.F(params.RingP()), &sk.Fp.Poly); err != nil {
		return nil, fmt.Errorf("cannot NewPrivateKey: %w", err)
	}

	fQ := sk.F(params.RingQ())
	defer fQ.Zero()

	if err = params.RingQ().Inverse(fQ, &sk.Fq.Poly); err != nil {
		sk.Fp.Zero()
		return nil, fmt.Errorf("cannot NewPrivateKey: %w", err)
	}

	return
}

// Parameters returns the parameters of the key.
func (sk *PrivateKey) Parameters() Parameters {
	return sk.params
}

// F returns the dense polynomial f = 1 + p*T in the ring r.
func (sk *PrivateKey) F(r *ring.Ring) (f *ring.Poly) {
	f = r.NewPoly()
	sk.T.Dense(r, f)
	r.MulScalar(f, sk.params.P(), f)
	r.AddScalar(f, 1, f)
	return
}

// CopyNew creates a deep copy of the receiver and returns it.
func (sk *PrivateKey) CopyNew() *PrivateKey {
	var T ring.Sparse
	switch t := sk.T.(type) {
	case *ring.Ternary:
		T = t.CopyNew()
	case *ring.ProductForm:
		T = t.CopyNew()
	}
	return &PrivateKey{params: sk.params, T: T, Fp: sk.Fp.CopyNew(), Fq: sk.Fq.CopyNew()}
}

// Equal returns true if the keys have the same parameters and the same T.
func (sk *PrivateKey) Equal(other *PrivateKey) bool {

	if !sk.params.Equal(&other.params) {
		return false
	}

	switch t := sk.T.(type) {
	case *ring.Ternary:
		o, ok := other.T.(*ring.Ternary)
		return ok && t.Equal(o)
	case *ring.ProductForm:
		o, ok := other.T.(*ring.ProductForm)
		return ok && t.Equal(o)
	}

	return false
}

// Zero erases the secret material of the key.
func (sk *PrivateKey) Zero() {
	if sk.T != nil {
		sk.T.Zero()
	}
	sk.Fp.Zero()
	sk.Fq.Zero()
}

// factors returns the ternary factors of T in serialization order.
func (sk *PrivateKey) factors() []*ring.Ternary {
	switch t := sk.T.(type) {
	case *ring.Ternary:
		return []*ring.Ternary{t}
	case *ring.ProductForm:
		return []*ring.Ternary{t.F1, t.F2, t.F3}
	default:
		// Sanity check, this error should not happen.
		panic(fmt.Errorf("unsupported private polynomial type %T", sk.T))
	}
}

// BinarySize returns the serialized size of the object in bytes.
func (sk *PrivateKey) BinarySize() int {
	return sk.params.PrivateKeyLen()
}

// WriteTo writes the key on w as N | Q | flags followed, for each ternary
// factor of T, by its number of +1 and -1 coefficients on two little-endian
// bytes each and their positions, +1 first, packed on bitlen(N-1) bits.
// It implements the io.WriterTo interface.
//
// Unless w implements the buffer.Writer interface (see utils/buffer),
// it is wrapped into a bufio.Writer.
func (sk *PrivateKey) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		if n, err = writeHeader(w, sk.params); err != nil {
			return
		}

		flags := uint8(flagTernary)
		if sk.params.productForm {
			flags |= flagProductForm
		}

		var inc int64
		if inc, err = buffer.WriteUint8(w, flags); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint8: %w", err)
		}
		n += inc

		width := utils.BitLen(uint64(sk.params.N() - 1))

		for _, t := range sk.factors() {

			if inc, err = buffer.WriteUint16(w, uint16(len(t.Ones))); err != nil {
				return n + inc, fmt.Errorf("buffer.WriteUint16: %w", err)
			}
			n += inc

			if inc, err = buffer.WriteUint16(w, uint16(len(t.NegOnes))); err != nil {
				return n + inc, fmt.Errorf("buffer.WriteUint16: %w", err)
			}
			n += inc

			indexes := make([]uint64, 0, t.Weight())
			for _, i := range t.Ones {
				indexes = append(indexes, uint64(i))
			}
			for _, i := range t.NegOnes {
				indexes = append(indexes, uint64(i))
			}

			data := make([]byte, utils.CeilDiv(len(indexes)*width, 8))
			ring.PackBits(indexes, width, data)

			if inc, err = buffer.WriteUint8Slice(w, data); err != nil {
				return n + inc, fmt.Errorf("buffer.WriteUint8Slice: %w", err)
			}
			n += inc
		}

		return n, w.Flush()

	default:
		return sk.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads a key written by [PrivateKey.WriteTo] on the receiver.
// If the receiver has no parameters, they are looked up in the catalog,
// see [ParametersFromPrivateKey]. The inverses Fp and Fq are recomputed.
// It implements the io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer),
// it is wrapped into a bufio.Reader.
func (sk *PrivateKey) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		if sk.params.N() == 0 {

			var header []byte
			if header, err = r.Peek(keyHeaderLen + 3); err != nil {
				return 0, fmt.Errorf("%w: %w", ErrInvalidKey, err)
			}

			if sk.params, err = ParametersFromPrivateKey(header); err != nil {
				return
			}
		}

		if n, err = readHeader(r, sk.params); err != nil {
			return
		}

		var flags uint8
		var inc int64
		if inc, err = buffer.ReadUint8(r, &flags); err != nil {
			return n + inc, fmt.Errorf("%w: buffer.ReadUint8: %w", ErrInvalidKey, err)
		}
		n += inc

		if (flags&flagProductForm != 0) != sk.params.productForm {
			return n, fmt.Errorf("%w: flags %#x do not match the parameters", ErrInvalidKey, flags)
		}

		nbFactors := 1
		if sk.params.productForm {
			nbFactors = 3
		}

		N := sk.params.N()
		width := utils.BitLen(uint64(N - 1))

		factors := make([]*ring.Ternary, nbFactors)

		for k := range factors {

			var ones, negOnes uint16

			if inc, err = buffer.ReadUint16(r, &ones); err != nil {
				return n + inc, fmt.Errorf("%w: buffer.ReadUint16: %w", ErrInvalidKey, err)
			}
			n += inc

			if inc, err = buffer.ReadUint16(r, &negOnes); err != nil {
				return n + inc, fmt.Errorf("%w: buffer.ReadUint16: %w", ErrInvalidKey, err)
			}
			n += inc

			if d := sk.params.df[k]; int(ones) != d || int(negOnes) != d {
				return n, fmt.Errorf("%w: factor %d has weights (%d, %d) but parameters require (%d, %d)", ErrInvalidKey, k, ones, negOnes, d, d)
			}

			count := int(ones) + int(negOnes)

			data := make([]byte, utils.CeilDiv(count*width, 8))
			if inc, err = buffer.ReadUint8Slice(r, data); err != nil {
				return n + inc, fmt.Errorf("%w: buffer.ReadUint8Slice: %w", ErrInvalidKey, err)
			}
			n += inc

			indexes := make([]uint64, count)
			ring.UnpackBits(data, width, indexes)

			pos := make([]int, count)
			for i, idx := range indexes {
				pos[i] = int(idx)
			}

			if factors[k], err = ring.NewTernary(N, pos[:ones], pos[ones:]); err != nil {
				return n, fmt.Errorf("%w: %w", ErrInvalidKey, err)
			}
		}

		var T ring.Sparse = factors[0]
		if sk.params.productForm {
			T = &ring.ProductForm{F1: factors[0], F2: factors[1], F3: factors[2]}
		}

		var key *PrivateKey
		if key, err = NewPrivateKey(sk.params, T); err != nil {
			return n, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}

		*sk = *key

		return n, nil

	default:
		return sk.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (sk *PrivateKey) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(sk.BinarySize())
	_, err = sk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by [PrivateKey.MarshalBinary]
// on the object. The receiver can be a zero PrivateKey, in which case the
// parameters are looked up in the catalog.
func (sk *PrivateKey) UnmarshalBinary(p []byte) (err error) {

	var n int64
	if n, err = sk.ReadFrom(buffer.NewBuffer(p)); err != nil {
		return
	}

	if int(n) != len(p) {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidKey, len(p)-int(n))
	}

	return
}

// KeyPair is a private key and its matching public key.
type KeyPair struct {
	Private *PrivateKey
	Public  *PublicKey
}

// Zero erases the private key of the pair.
func (kp *KeyPair) Zero() {
	if kp.Private != nil {
		kp.Private.Zero()
	}
}
