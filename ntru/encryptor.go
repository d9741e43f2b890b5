package ntru

import (
	"fmt"

	"github.com/tuneinsight/ntru/ring"
	"github.com/tuneinsight/ntru/utils/sampling"
)

// MaxEncodingAttempts is the default number of random prefixes b that an
// [Encryptor] tries before giving up on a masked message satisfying the
// dm0 constraint.
const MaxEncodingAttempts = 64

// Encryptor encrypts messages under a public key with the SVES padding.
// An Encryptor is not safe for concurrent use, see [Encryptor.ShallowCopy].
type Encryptor struct {
	params      Parameters
	pk          *PublicKey
	packedH     []byte
	source      *sampling.Source
	maxAttempts int

	// scratch space
	mTrits PolyP
	mQ     PolyQ
	bigR   PolyQ
}

// NewEncryptor creates a new Encryptor for the public key pk, drawing the
// random prefixes of the messages from prng. If prng is nil, a
// [sampling.ThreadSafePRNG] reading from crypto/rand is used.
//
// The method panics if pk is nil or was not generated for params.
func NewEncryptor(params Parameters, pk *PublicKey, prng sampling.PRNG) *Encryptor {

	if prng == nil {
		var err error
		if prng, err = sampling.NewPRNG(); err != nil {
			panic(err)
		}
	}

	enc := &Encryptor{
		params:      params,
		source:      sampling.NewSource(prng),
		maxAttempts: MaxEncodingAttempts,
		mTrits:      NewPolyP(params),
		mQ:          NewPolyQ(params),
		bigR:        NewPolyQ(params),
	}

	return enc.setKey(pk)
}

func (enc *Encryptor) setKey(pk *PublicKey) *Encryptor {
	if pk == nil {
		panic(fmt.Errorf("cannot NewEncryptor: %w: nil public key", ErrInvalidKey))
	}
	if !enc.params.Equal(&pk.params) {
		panic(fmt.Errorf("cannot NewEncryptor: public key parameters %s do not match %s", pk.params, enc.params))
	}
	enc.pk = pk
	enc.packedH = enc.params.RingQ().Pack(&pk.H.Poly)
	return enc
}

// ShallowCopy creates a shallow copy of the Encryptor in which all the
// read-only data-structures are shared with the receiver and the scratch
// space is reallocated. The copy shares the PRNG of the receiver, which
// must then be safe for concurrent use.
func (enc *Encryptor) ShallowCopy() *Encryptor {
	return enc.WithPRNG(enc.source.PRNG())
}

// WithKey returns a copy of the Encryptor encrypting under pk.
func (enc *Encryptor) WithKey(pk *PublicKey) *Encryptor {
	cpy := enc.ShallowCopy()
	return cpy.setKey(pk)
}

// WithPRNG returns a copy of the Encryptor drawing its randomness from prng.
func (enc *Encryptor) WithPRNG(prng sampling.PRNG) *Encryptor {
	return &Encryptor{
		params:      enc.params,
		pk:          enc.pk,
		packedH:     enc.packedH,
		source:      sampling.NewSource(prng),
		maxAttempts: enc.maxAttempts,
		mTrits:      NewPolyP(enc.params),
		mQ:          NewPolyQ(enc.params),
		bigR:        NewPolyQ(enc.params),
	}
}

// WithMaxAttempts returns a copy of the Encryptor trying at most attempts
// random prefixes per message.
func (enc *Encryptor) WithMaxAttempts(attempts int) *Encryptor {
	cpy := enc.ShallowCopy()
	cpy.source = enc.source
	cpy.maxAttempts = max(attempts, 1)
	return cpy
}

// EncryptNew encrypts msg and returns the result on a newly allocated [Ciphertext].
func (enc *Encryptor) EncryptNew(msg []byte) (ct *Ciphertext, err error) {
	ct = NewCiphertext(enc.params)
	if err = enc.Encrypt(msg, ct); err != nil {
		return nil, err
	}
	return
}

// Encrypt encrypts msg on ct.
//
// The message is formatted as M = b | len | msg | p0 with b random, and
// embedded into a ternary polynomial. The blinding polynomial r is derived
// from msg, b and the public key, R = r*h mod Q and the masked message m'
// is the sum of the embedding and of a mask derived from R. If m' does not
// hold at least dm0 coefficients equal to each of -1, 0 and 1, a new b is
// drawn. The ciphertext is e = R + m' mod Q.
//
// It returns an error wrapping [ErrMessageTooLong] if msg is longer than
// [Parameters.MaxMsgLen], [ErrEncodingFailed] if no valid m' was found
// within the attempt budget and [sampling.ErrEntropyUnavailable] if the
// PRNG failed.
func (enc *Encryptor) Encrypt(msg []byte, ct *Ciphertext) (err error) {

	params := enc.params
	ringQ := params.RingQ()

	if len(msg) > params.MaxMsgLen() {
		return fmt.Errorf("cannot Encrypt: %w: %d > %d bytes", ErrMessageTooLong, len(msg), params.MaxMsgLen())
	}

	if !params.Equal(&ct.params) {
		return fmt.Errorf("cannot Encrypt: ciphertext parameters %s do not match %s", ct.params, params)
	}

	b := make([]byte, params.db>>3)
	defer clear(b)

	for attempt := 0; attempt < enc.maxAttempts; attempt++ {

		if err = enc.source.Read(b); err != nil {
			return fmt.Errorf("cannot Encrypt: %w", err)
		}

		M := formatMessage(params, b, msg)

		var r ring.Sparse
		if r, err = blindingPoly(params, seedData(params, msg, b, enc.packedH)); err != nil {
			return fmt.Errorf("cannot Encrypt: %w", err)
		}

		ringQ.MulSparse(&enc.pk.H.Poly, r, &enc.bigR.Poly)
		r.Zero()

		var mask []uint8
		if mask, err = generateMask(params, &enc.bigR.Poly); err != nil {
			return fmt.Errorf("cannot Encrypt: %w", err)
		}

		bytesToTrits(M, &enc.mTrits.Poly)
		clear(M)

		for i, m := range mask {
			enc.mTrits.Coeffs[i] = (enc.mTrits.Coeffs[i] + uint64(m)) % 3
		}

		if !checkDm0(params, &enc.mTrits.Poly) {
			continue
		}

		liftPToQ(params, enc.mTrits, enc.mQ)
		ringQ.Add(&enc.bigR.Poly, &enc.mQ.Poly, &ct.E.Poly)

		return nil
	}

	return fmt.Errorf("cannot Encrypt: %w: dm0 constraint not met after %d attempts", ErrEncodingFailed, enc.maxAttempts)
}
