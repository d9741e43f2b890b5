package ntru

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tuneinsight/ntru/utils/buffer"
)

// Ciphertext is an NTRUEncrypt ciphertext e = r*h + m' mod (X^N - 1, Q).
type Ciphertext struct {
	params Parameters
	E      PolyQ
}

// NewCiphertext returns a new zero [Ciphertext] for the given parameters.
func NewCiphertext(params Parameters) *Ciphertext {
	return &Ciphertext{params: params, E: NewPolyQ(params)}
}

// Parameters returns the parameters of the ciphertext.
func (ct *Ciphertext) Parameters() Parameters {
	return ct.params
}

// CopyNew creates a deep copy of the receiver and returns it.
func (ct *Ciphertext) CopyNew() *Ciphertext {
	return &Ciphertext{params: ct.params, E: ct.E.CopyNew()}
}

// Equal returns true if the ciphertexts have the same parameters and the same e.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.params.Equal(&other.params) && ct.E.Equal(other.E)
}

// BinarySize returns the serialized size of the object in bytes.
func (ct *Ciphertext) BinarySize() int {
	return ct.params.EncLen()
}

// WriteTo writes the coefficients of e packed on log2(Q) bits.
// It implements the io.WriterTo interface.
//
// Unless w implements the buffer.Writer interface (see utils/buffer),
// it is wrapped into a bufio.Writer.
func (ct *Ciphertext) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		if n, err = buffer.WriteUint8Slice(w, ct.params.RingQ().Pack(&ct.E.Poly)); err != nil {
			return n, fmt.Errorf("buffer.WriteUint8Slice: %w", err)
		}

		return n, w.Flush()

	default:
		return ct.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads a ciphertext written by [Ciphertext.WriteTo] on the
// receiver, which must have been created with [NewCiphertext].
// It implements the io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer),
// it is wrapped into a bufio.Reader.
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		data := make([]byte, ct.params.EncLen())

		if n, err = buffer.ReadUint8Slice(r, data); err != nil {
			return n, fmt.Errorf("buffer.ReadUint8Slice: %w", err)
		}

		if err = ct.params.RingQ().Unpack(data, &ct.E.Poly); err != nil {
			return n, err
		}

		return n, nil

	default:
		return ct.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (ct *Ciphertext) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(ct.BinarySize())
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by [Ciphertext.MarshalBinary]
// on the object. The receiver must have been created with [NewCiphertext].
func (ct *Ciphertext) UnmarshalBinary(p []byte) (err error) {

	if len(p) != ct.BinarySize() {
		return fmt.Errorf("cannot UnmarshalBinary: expected %d bytes but got %d", ct.BinarySize(), len(p))
	}

	_, err = ct.ReadFrom(buffer.NewBuffer(p))
	return
}
