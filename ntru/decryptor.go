package ntru

import (
	"fmt"
	"slices"
)

// Decryptor decrypts ciphertexts with a private key. The matching public
// key is required to check that a decrypted message re-encrypts to the
// ciphertext. A Decryptor is not safe for concurrent use, see
// [Decryptor.ShallowCopy].
type Decryptor struct {
	params  Parameters
	sk      *PrivateKey
	pk      *PublicKey
	packedH []byte

	// scratch space
	a      PolyQ
	aP     PolyP
	c      PolyP
	cQ     PolyQ
	cR     PolyQ
	check  PolyP
	checkR PolyQ
}

// NewDecryptor creates a new Decryptor for the key pair (sk, pk).
//
// The method panics if a key is nil or was not generated for params.
func NewDecryptor(params Parameters, sk *PrivateKey, pk *PublicKey) *Decryptor {

	dec := &Decryptor{
		params: params,
		a:      NewPolyQ(params),
		aP:     NewPolyP(params),
		c:      NewPolyP(params),
		cQ:     NewPolyQ(params),
		cR:     NewPolyQ(params),
		check:  NewPolyP(params),
		checkR: NewPolyQ(params),
	}

	return dec.setKey(sk, pk)
}

func (dec *Decryptor) setKey(sk *PrivateKey, pk *PublicKey) *Decryptor {

	if sk == nil || pk == nil {
		panic(fmt.Errorf("cannot NewDecryptor: %w: both the private and the public key are required", ErrInvalidKey))
	}

	if !dec.params.Equal(&sk.params) {
		panic(fmt.Errorf("cannot NewDecryptor: private key parameters %s do not match %s", sk.params, dec.params))
	}

	if !dec.params.Equal(&pk.params) {
		panic(fmt.Errorf("cannot NewDecryptor: public key parameters %s do not match %s", pk.params, dec.params))
	}

	dec.sk = sk
	dec.pk = pk
	dec.packedH = dec.params.RingQ().Pack(&pk.H.Poly)

	return dec
}

// ShallowCopy creates a shallow copy of the Decryptor in which all the
// read-only data-structures are shared with the receiver and the scratch
// space is reallocated.
func (dec *Decryptor) ShallowCopy() *Decryptor {
	return NewDecryptor(dec.params, dec.sk, dec.pk)
}

// WithKey returns a copy of the Decryptor decrypting with the key pair (sk, pk).
func (dec *Decryptor) WithKey(sk *PrivateKey, pk *PublicKey) *Decryptor {
	return NewDecryptor(dec.params, sk, pk)
}

// DecryptNew decrypts ct and returns the message on a newly allocated slice.
//
// It returns an error wrapping [ErrDecryptionFailed] if ct does not decrypt
// to a well-formed message that re-encrypts to ct. No information about
// the cause of the failure is returned.
func (dec *Decryptor) DecryptNew(ct *Ciphertext) (msg []byte, err error) {

	params := dec.params
	ringQ := params.RingQ()
	ringP := params.RingP()

	if !params.Equal(&ct.params) {
		return nil, fmt.Errorf("cannot DecryptNew: ciphertext parameters %s do not match %s", ct.params, params)
	}

	// a = f*e = e + p*(T*e) mod Q, then c = Fp*a mod p
	ringQ.MulSparse(&ct.E.Poly, dec.sk.T, &dec.a.Poly)
	ringQ.MulScalar(&dec.a.Poly, params.P(), &dec.a.Poly)
	ringQ.Add(&dec.a.Poly, &ct.E.Poly, &dec.a.Poly)
	liftQToP(params, dec.a, dec.aP)
	ringP.Mul(&dec.aP.Poly, &dec.sk.Fp.Poly, &dec.c.Poly)

	defer func() {
		dec.a.Zero()
		dec.aP.Zero()
		dec.c.Zero()
	}()

	if !checkDm0(params, &dec.c.Poly) {
		return nil, ErrDecryptionFailed
	}

	// R = e - m' mod Q
	liftPToQ(params, dec.c, dec.cQ)
	ringQ.Sub(&ct.E.Poly, &dec.cQ.Poly, &dec.cR.Poly)

	mask, err := generateMask(params, &dec.cR.Poly)
	if err != nil {
		return nil, fmt.Errorf("cannot DecryptNew: %w", err)
	}

	for i, m := range mask {
		dec.c.Coeffs[i] = (dec.c.Coeffs[i] + 3 - uint64(m)) % 3
	}

	M, ok := tritsToBytes(&dec.c.Poly, params.messageLen())
	defer clear(M)

	if !ok {
		return nil, ErrDecryptionFailed
	}

	b, m, ok := parseMessage(params, M)
	if !ok {
		return nil, ErrDecryptionFailed
	}

	// The embedding of M must be exactly the unmasked polynomial.
	bytesToTrits(M, &dec.check.Poly)
	if !ringP.EqualMod(&dec.check.Poly, &dec.c.Poly) {
		return nil, ErrDecryptionFailed
	}

	r, err := blindingPoly(params, seedData(params, m, b, dec.packedH))
	if err != nil {
		return nil, fmt.Errorf("cannot DecryptNew: %w", err)
	}

	ringQ.MulSparse(&dec.pk.H.Poly, r, &dec.checkR.Poly)
	r.Zero()

	if !ringQ.EqualMod(&dec.checkR.Poly, &dec.cR.Poly) {
		return nil, ErrDecryptionFailed
	}

	return slices.Clone(m), nil
}
