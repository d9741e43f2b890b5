package ntru

import (
	"errors"
	"fmt"

	"github.com/tuneinsight/ntru/ring"
	"github.com/tuneinsight/ntru/utils/sampling"
)

// MaxKeyGenAttempts is the default number of polynomials f, and then g,
// that a [KeyGenerator] samples before giving up on finding an invertible one.
const MaxKeyGenAttempts = 64

// KeyGenerator is a structure that stores the elements required to create new keys.
// A KeyGenerator is not safe for concurrent use, see [KeyGenerator.ShallowCopy].
type KeyGenerator struct {
	params      Parameters
	source      *sampling.Source
	maxAttempts int
}

// NewKeyGenerator creates a new KeyGenerator drawing its randomness from prng.
// If prng is nil, a [sampling.ThreadSafePRNG] reading from crypto/rand is used.
// Key generation is deterministic for a deterministic prng, such as a
// [sampling.KeyedPRNG].
func NewKeyGenerator(params Parameters, prng sampling.PRNG) *KeyGenerator {

	if prng == nil {
		var err error
		if prng, err = sampling.NewPRNG(); err != nil {
			panic(err)
		}
	}

	return &KeyGenerator{
		params:      params,
		source:      sampling.NewSource(prng),
		maxAttempts: MaxKeyGenAttempts,
	}
}

// ShallowCopy creates a shallow copy of the KeyGenerator in which all the
// read-only data-structures are shared with the receiver. The copy shares
// the PRNG of the receiver, which must then be safe for concurrent use.
func (kgen *KeyGenerator) ShallowCopy() *KeyGenerator {
	return &KeyGenerator{
		params:      kgen.params,
		source:      sampling.NewSource(kgen.source.PRNG()),
		maxAttempts: kgen.maxAttempts,
	}
}

// WithPRNG returns a copy of the KeyGenerator drawing its randomness from prng.
func (kgen *KeyGenerator) WithPRNG(prng sampling.PRNG) *KeyGenerator {
	return &KeyGenerator{
		params:      kgen.params,
		source:      sampling.NewSource(prng),
		maxAttempts: kgen.maxAttempts,
	}
}

// WithMaxAttempts returns a copy of the KeyGenerator sampling at most
// attempts candidates for each of f and g.
func (kgen *KeyGenerator) WithMaxAttempts(attempts int) *KeyGenerator {
	return &KeyGenerator{
		params:      kgen.params,
		source:      kgen.source,
		maxAttempts: max(attempts, 1),
	}
}

// GenKeyPairNew generates a new private key f = 1 + p*T and its public key
// h = p * Fq * g, where Fq is the inverse of f modulo Q.
//
// It returns an error wrapping [ErrKeyGenerationFailed] if no invertible
// f or g was found within the attempt budget, and an error wrapping
// [sampling.ErrEntropyUnavailable] if the PRNG failed.
func (kgen *KeyGenerator) GenKeyPairNew() (kp *KeyPair, err error) {

	sk, err := kgen.genPrivateKey()
	if err != nil {
		return nil, err
	}

	pk := NewPublicKey(kgen.params)

	if err = kgen.genPublicKey(sk, pk); err != nil {
		sk.Zero()
		return nil, err
	}

	return &KeyPair{Private: sk, Public: pk}, nil
}

// GenPublicKeyNew generates an additional public key for sk, using a fresh
// polynomial g. All the public keys of sk decrypt with it.
//
// The method panics if sk was not generated for the parameters of the KeyGenerator.
func (kgen *KeyGenerator) GenPublicKeyNew(sk *PrivateKey) (pk *PublicKey, err error) {

	if !kgen.params.Equal(&sk.params) {
		panic(fmt.Errorf("cannot GenPublicKeyNew: private key parameters %s do not match %s", sk.params, kgen.params))
	}

	pk = NewPublicKey(kgen.params)

	if err = kgen.genPublicKey(sk, pk); err != nil {
		return nil, err
	}

	return
}

// GenMultipleKeyPairsNew generates a private key and count public keys
// for it.
func (kgen *KeyGenerator) GenMultipleKeyPairsNew(count int) (sk *PrivateKey, pks []*PublicKey, err error) {

	if count < 1 {
		return nil, nil, fmt.Errorf("cannot GenMultipleKeyPairsNew: count=%d must be positive", count)
	}

	if sk, err = kgen.genPrivateKey(); err != nil {
		return nil, nil, err
	}

	pks = make([]*PublicKey, count)
	for i := range pks {
		pks[i] = NewPublicKey(kgen.params)
		if err = kgen.genPublicKey(sk, pks[i]); err != nil {
			sk.Zero()
			return nil, nil, err
		}
	}

	return
}

// genPrivateKey samples T until f = 1 + p*T is invertible modulo p and Q.
func (kgen *KeyGenerator) genPrivateKey() (sk *PrivateKey, err error) {

	params := kgen.params

	for attempt := 0; attempt < kgen.maxAttempts; attempt++ {

		var T ring.Sparse
		if T, err = sampleSparse(params, kgen.source); err != nil {
			return nil, fmt.Errorf("cannot GenKeyPairNew: %w", err)
		}

		if sk, err = NewPrivateKey(params, T); err != nil {
			T.Zero()
			if errors.Is(err, ring.ErrNotInvertible) {
				continue
			}
			return nil, fmt.Errorf("cannot GenKeyPairNew: %w", err)
		}

		return sk, nil
	}

	return nil, fmt.Errorf("%w: no invertible f after %d attempts", ErrKeyGenerationFailed, kgen.maxAttempts)
}

// genPublicKey samples g, with Dg coefficients equal to 1 and Dg-1 equal
// to -1, until it is invertible modulo Q, and writes h = p * Fq * g on pk.
// g is erased before returning.
func (kgen *KeyGenerator) genPublicKey(sk *PrivateKey, pk *PublicKey) (err error) {

	params := kgen.params
	ringQ := params.RingQ()

	ts, err := ring.NewTernarySampler(kgen.source, params.N(), params.dg, params.dg-1)
	if err != nil {
		return fmt.Errorf("cannot GenKeyPairNew: %w", err)
	}

	g := &ring.Ternary{}
	defer g.Zero()

	gDense := ringQ.NewPoly()
	defer gDense.Zero()

	for attempt := 0; attempt < kgen.maxAttempts; attempt++ {

		if err = ts.Read(g); err != nil {
			return fmt.Errorf("cannot GenKeyPairNew: %w", err)
		}

		g.Dense(ringQ, gDense)

		var gInv *ring.Poly
		if gInv, err = ringQ.InverseNew(gDense); err != nil {
			if errors.Is(err, ring.ErrNotInvertible) {
				continue
			}
			return fmt.Errorf("cannot GenKeyPairNew: %w", err)
		}
		gInv.Zero()

		ringQ.MulTernary(&sk.Fq.Poly, g, &pk.H.Poly)
		ringQ.MulScalar(&pk.H.Poly, params.P(), &pk.H.Poly)

		return nil
	}

	return fmt.Errorf("%w: no invertible g after %d attempts", ErrKeyGenerationFailed, kgen.maxAttempts)
}
