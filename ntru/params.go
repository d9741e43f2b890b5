package ntru

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/google/go-cmp/cmp"

	"github.com/tuneinsight/ntru/ring"
	"github.com/tuneinsight/ntru/utils"
	"github.com/tuneinsight/ntru/utils/buffer"
)

// DefaultP is the small modulus of all the parameter sets.
const DefaultP = 3

// MaxC is the largest number of bits per index of the index generator.
const MaxC = 31

// ParametersLiteral is a literal representation of NTRUEncrypt parameters. It has public fields and
// is used to express unchecked user-defined parameters literally into Go programs.
// The [NewParametersFromLiteral] function is used to generate the actual checked parameters
// from the literal representation.
//
// Ternary parameter sets set Df, the number of coefficients equal to 1 (and to -1) of the
// private polynomial T of f = 1 + p*T and of the blinding polynomial r. Product-form parameter
// sets set ProductForm and the weights Df1, Df2 and Df3 of the factors of T = T1*T2 + T3.
//
// The catalog of the EES parameter sets is available through [ParametersByName],
// [ParametersByOID] and [DefaultParameters].
type ParametersLiteral struct {
	Name         string
	OID          [3]byte
	Security     int    `json:",omitempty"`
	N            int
	P            uint64 `json:",omitempty"`
	Q            uint64
	ProductForm  bool `json:",omitempty"`
	Df           int  `json:",omitempty"`
	Df1          int  `json:",omitempty"`
	Df2          int  `json:",omitempty"`
	Df3          int  `json:",omitempty"`
	Dg           int
	Dm0          int
	Db           int
	C            int
	MinCallsR    int
	MinCallsMask int
	Hash         HashID
	PkLen        int
	Deprecated   bool `json:",omitempty"`
}

// Parameters represents a checked set of NTRUEncrypt parameters. Its fields are private and
// immutable, a Parameters can be shared between goroutines. See [ParametersLiteral] for
// user-specified parameters.
type Parameters struct {
	name         string
	oid          [3]byte
	security     int
	productForm  bool
	df           [3]int
	dg           int
	dm0          int
	db           int
	c            int
	minCallsR    int
	minCallsMask int
	hash         HashID
	pkLen        int
	deprecated   bool
	ringQ        *ring.Ring
	ringP        *ring.Ring
}

// NewParametersFromLiteral instantiates a set of NTRUEncrypt parameters from a [ParametersLiteral].
// It returns the empty parameters [Parameters]{} and an error wrapping
// [ErrInvalidParameters] if the specified parameters are invalid.
//
// If the small modulus P is left unset, it defaults to [DefaultP].
func NewParametersFromLiteral(pl ParametersLiteral) (params Parameters, err error) {

	if pl.P == 0 {
		pl.P = DefaultP
	}

	if err = pl.check(); err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	params = Parameters{
		name:         pl.Name,
		oid:          pl.OID,
		security:     pl.Security,
		productForm:  pl.ProductForm,
		dg:           pl.Dg,
		dm0:          pl.Dm0,
		db:           pl.Db,
		c:            pl.C,
		minCallsR:    pl.MinCallsR,
		minCallsMask: pl.MinCallsMask,
		hash:         pl.Hash,
		pkLen:        pl.PkLen,
		deprecated:   pl.Deprecated,
	}

	if pl.ProductForm {
		params.df = [3]int{pl.Df1, pl.Df2, pl.Df3}
	} else {
		params.df = [3]int{pl.Df, 0, 0}
	}

	if params.ringQ, err = ring.NewRing(pl.N, pl.Q); err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	if params.ringP, err = ring.NewRing(pl.N, pl.P); err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	return
}

func (pl ParametersLiteral) check() error {

	switch {
	case !utils.IsPrime(pl.N) || pl.N > ring.MaxN:
		return fmt.Errorf("N=%d must be a prime smaller than %d", pl.N, ring.MaxN)
	case pl.P != DefaultP:
		return fmt.Errorf("P=%d is not supported, the message encoding requires P=%d", pl.P, DefaultP)
	case !utils.IsPowerOfTwo(pl.Q) || pl.Q <= pl.P || pl.Q > math.MaxUint16:
		// N and Q are serialized on 16 bits in the key headers.
		return fmt.Errorf("Q=%d must be a power of two in (%d, %d]", pl.Q, pl.P, math.MaxUint16)
	}

	if pl.ProductForm {
		for i, d := range []int{pl.Df1, pl.Df2, pl.Df3} {
			if d < 1 || 2*d > pl.N {
				return fmt.Errorf("Df%d=%d must be in [1, N/2]", i+1, d)
			}
		}
	} else {
		if pl.Df < 1 || 2*pl.Df > pl.N {
			return fmt.Errorf("Df=%d must be in [1, N/2]", pl.Df)
		}
		if pl.P*uint64(2*pl.Df+1) >= pl.Q {
			return fmt.Errorf("Q=%d must be larger than P*(2*Df+1)=%d", pl.Q, pl.P*uint64(2*pl.Df+1))
		}
	}

	switch {
	case pl.Dg < 1 || 2*pl.Dg-1 > pl.N:
		return fmt.Errorf("Dg=%d must be in [1, (N+1)/2]", pl.Dg)
	case pl.Dm0 < 0 || 3*pl.Dm0 > pl.N:
		return fmt.Errorf("Dm0=%d must be in [0, N/3]", pl.Dm0)
	case pl.Db <= 0 || pl.Db&7 != 0:
		return fmt.Errorf("Db=%d must be a positive multiple of 8", pl.Db)
	case pl.C < 1 || pl.C > MaxC || 1<<pl.C < pl.N:
		return fmt.Errorf("C=%d must be in [log2(N), %d]", pl.C, MaxC)
	case pl.MinCallsR < 1 || pl.MinCallsMask < 1:
		return fmt.Errorf("MinCallsR=%d and MinCallsMask=%d must be positive", pl.MinCallsR, pl.MinCallsMask)
	case pl.Hash.Size() == 0:
		return fmt.Errorf("unknown hash function %q", string(pl.Hash))
	}

	encLen := utils.CeilDiv(pl.N*utils.Log2Ceil(pl.Q), 8)

	if pl.PkLen < 8 || pl.PkLen>>3 > encLen {
		return fmt.Errorf("PkLen=%d must be in [8, %d]", pl.PkLen, 8*encLen+7)
	}

	if maxMsgLen := maxMsgLen(pl.N, pl.Db); maxMsgLen < 1 || maxMsgLen > 255 {
		return fmt.Errorf("maximum message length %d must be in [1, 255]", maxMsgLen)
	}

	return nil
}

func maxMsgLen(N, db int) int {
	return N/2*3/8 - 1 - db/8
}

// ParametersLiteral returns the [ParametersLiteral] of the target [Parameters].
func (p Parameters) ParametersLiteral() ParametersLiteral {

	pl := ParametersLiteral{
		Name:         p.name,
		OID:          p.oid,
		Security:     p.security,
		N:            p.N(),
		P:            p.P(),
		Q:            p.Q(),
		ProductForm:  p.productForm,
		Dg:           p.dg,
		Dm0:          p.dm0,
		Db:           p.db,
		C:            p.c,
		MinCallsR:    p.minCallsR,
		MinCallsMask: p.minCallsMask,
		Hash:         p.hash,
		PkLen:        p.pkLen,
		Deprecated:   p.deprecated,
	}

	if p.productForm {
		pl.Df1, pl.Df2, pl.Df3 = p.df[0], p.df[1], p.df[2]
	} else {
		pl.Df = p.df[0]
	}

	return pl
}

// Name returns the name of the parameter set.
func (p Parameters) Name() string {
	return p.name
}

// OID returns the object identifier of the parameter set.
func (p Parameters) OID() [3]byte {
	return p.oid
}

// Security returns the targeted security level in bits, or 0 if unset.
func (p Parameters) Security() int {
	return p.security
}

// N returns the ring degree.
func (p Parameters) N() int {
	if p.ringQ == nil {
		return 0
	}
	return p.ringQ.N()
}

// P returns the small modulus.
func (p Parameters) P() uint64 {
	if p.ringP == nil {
		return 0
	}
	return p.ringP.Modulus()
}

// Q returns the large modulus.
func (p Parameters) Q() uint64 {
	if p.ringQ == nil {
		return 0
	}
	return p.ringQ.Modulus()
}

// LogQ returns log2(Q).
func (p Parameters) LogQ() int {
	return p.ringQ.LogModulus()
}

// RingQ returns the ring Z_Q[X]/(X^N - 1).
func (p Parameters) RingQ() *ring.Ring {
	return p.ringQ
}

// RingP returns the ring Z_P[X]/(X^N - 1).
func (p Parameters) RingP() *ring.Ring {
	return p.ringP
}

// ProductForm returns true if the private and blinding polynomials are in product form.
func (p Parameters) ProductForm() bool {
	return p.productForm
}

// Df returns the weight of the ternary private and blinding polynomials.
// It returns 0 for product-form parameters, see [Parameters.DfProduct].
func (p Parameters) Df() int {
	if p.productForm {
		return 0
	}
	return p.df[0]
}

// DfProduct returns the weights of the three factors of product-form parameters.
func (p Parameters) DfProduct() (df1, df2, df3 int) {
	if !p.productForm {
		return 0, 0, 0
	}
	return p.df[0], p.df[1], p.df[2]
}

// Dg returns the number of coefficients equal to 1 of g. g has Dg-1 coefficients equal to -1.
func (p Parameters) Dg() int {
	return p.dg
}

// Dm0 returns the minimum number of each of -1, 0 and 1 in a masked message.
func (p Parameters) Dm0() int {
	return p.dm0
}

// Db returns the number of random bits prepended to a message.
func (p Parameters) Db() int {
	return p.db
}

// C returns the number of bits per index of the index generator.
func (p Parameters) C() int {
	return p.c
}

// MinCallsR returns the minimum number of hash calls of the index generator.
func (p Parameters) MinCallsR() int {
	return p.minCallsR
}

// MinCallsMask returns the minimum number of hash calls of the mask generator.
func (p Parameters) MinCallsMask() int {
	return p.minCallsMask
}

// Hash returns the hash function of the index and mask generators.
func (p Parameters) Hash() HashID {
	return p.hash
}

// PkLen returns the number of bits of the packed public key included in the seed of r.
// Only the PkLen/8 first bytes are used.
func (p Parameters) PkLen() int {
	return p.pkLen
}

// Deprecated returns true for parameter sets kept for compatibility only.
func (p Parameters) Deprecated() bool {
	return p.deprecated
}

// MaxMsgLen returns the maximum length in bytes of a plaintext message.
func (p Parameters) MaxMsgLen() int {
	return maxMsgLen(p.N(), p.db)
}

// EncLen returns the size in bytes of a serialized ciphertext.
func (p Parameters) EncLen() int {
	return p.ringQ.PackedSize()
}

// PublicKeyLen returns the size in bytes of a serialized public key.
func (p Parameters) PublicKeyLen() int {
	return keyHeaderLen + p.EncLen()
}

// PrivateKeyLen returns the size in bytes of a serialized private key.
func (p Parameters) PrivateKeyLen() (size int) {
	size = keyHeaderLen + 1
	if p.productForm {
		for _, d := range p.df {
			size += ternaryLen(p.N(), 2*d)
		}
		return
	}
	return size + ternaryLen(p.N(), 2*p.df[0])
}

// messageLen returns the size in bytes of the formatted message b | len | m | p0.
func (p Parameters) messageLen() int {
	return p.db>>3 + 1 + p.MaxMsgLen() + 1
}

// Equal checks two Parameter structs for equality.
func (p Parameters) Equal(other *Parameters) bool {
	return cmp.Equal(p.ParametersLiteral(), other.ParametersLiteral())
}

// String returns the name of the parameter set.
func (p Parameters) String() string {
	if p.name == "" {
		return fmt.Sprintf("N=%d/Q=%d", p.N(), p.Q())
	}
	return p.name
}

// MarshalBinary returns a []byte representation of the parameter set.
func (p Parameters) MarshalBinary() ([]byte, error) {

	data, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}

	buf := buffer.NewBufferSize(4 + len(data))
	if _, err = p.WriteTo(buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a []byte into a parameter set struct.
func (p *Parameters) UnmarshalBinary(data []byte) (err error) {
	_, err = p.ReadFrom(buffer.NewBuffer(data))
	return
}

// MarshalJSON returns a JSON representation of this parameter set. See Marshal from the [encoding/json] package.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver Parameter. See Unmarshal from the [encoding/json] package.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var params ParametersLiteral
	if err = json.Unmarshal(data, &params); err != nil {
		return err
	}
	*p, err = NewParametersFromLiteral(params)
	return
}

// WriteTo writes the JSON representation of the parameters on w, prefixed
// by its length. It implements the io.WriterTo interface.
//
// Unless w implements the buffer.Writer interface (see utils/buffer),
// it is wrapped into a bufio.Writer.
func (p Parameters) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		data, err := p.MarshalJSON()
		if err != nil {
			return 0, err
		}

		if n, err = buffer.WriteUint32(w, uint32(len(data))); err != nil {
			return n, fmt.Errorf("buffer.WriteUint32: %w", err)
		}

		var inc int64
		if inc, err = buffer.WriteUint8Slice(w, data); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint8Slice: %w", err)
		}

		return n + inc, w.Flush()

	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// MaxParametersJSONSize is the largest encoded parameter set accepted by
// [Parameters.ReadFrom].
const MaxParametersJSONSize = 1 << 12

// ReadFrom reads the parameters from r. It implements the io.ReaderFrom interface.
// Length prefixes above [MaxParametersJSONSize] return an error wrapping
// [ErrInvalidParameters] before anything is allocated.
//
// Unless r implements the buffer.Reader interface (see utils/buffer),
// it is wrapped into a bufio.Reader. When reading from a []byte, prefer
// passing buffer.NewBuffer(b).
func (p *Parameters) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var size uint32
		if n, err = buffer.ReadUint32(r, &size); err != nil {
			return n, fmt.Errorf("buffer.ReadUint32: %w", err)
		}

		if size > MaxParametersJSONSize {
			return n, fmt.Errorf("cannot ReadFrom: %w: encoded parameters of %d bytes exceed %d bytes", ErrInvalidParameters, size, MaxParametersJSONSize)
		}

		data := make([]byte, size)

		var inc int64
		if inc, err = buffer.ReadUint8Slice(r, data); err != nil {
			return n + inc, fmt.Errorf("buffer.ReadUint8Slice: %w", err)
		}

		return n + inc, p.UnmarshalJSON(data)

	default:
		return p.ReadFrom(bufio.NewReader(r))
	}
}

// BinarySize returns the size in bytes of the marshalled [Parameters] object.
//
// The literal only holds strings, integers, booleans and a byte array, which
// encoding/json always marshals: the method panics if it ever fails to.
func (p Parameters) BinarySize() int {
	data, err := p.MarshalJSON()
	if err != nil {
		panic(fmt.Errorf("cannot BinarySize: %w", err))
	}
	return 4 + len(data)
}
