package ntru

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/ntru/ring"
	"github.com/tuneinsight/ntru/utils/buffer"
	"github.com/tuneinsight/ntru/utils/sampling"
)

var flagParamString = flag.String("params", "", "specify the test cryptographic parameters as a JSON string. Overrides -short and the default catalog sets.")

// testToy is a small insecure parameter set for fast tests.
var testToy = ParametersLiteral{
	Name:         "Toy107",
	OID:          [3]byte{0xff, 0, 1},
	N:            107,
	Q:            2048,
	Df:           15,
	Dg:           36,
	Dm0:          10,
	Db:           64,
	C:            8,
	MinCallsR:    8,
	MinCallsMask: 5,
	Hash:         SHA256,
	PkLen:        64,
}

// testShortSets are the catalog sets tested in -short mode.
var testShortSets = []string{EES401EP1, EES401EP2, EES613EP1}

func testString(params Parameters, opname string) string {
	return fmt.Sprintf("%s/%s/N=%d/Q=%d/ProductForm=%t", opname, params, params.N(), params.Q(), params.ProductForm())
}

type failingReader struct {
	budget int
}

func (r *failingReader) Read(p []byte) (n int, err error) {
	if r.budget <= 0 {
		return 0, errors.New("entropy source closed")
	}
	n = min(len(p), r.budget)
	r.budget -= n
	return n, nil
}

func newKeyedPRNG(t *testing.T, seed string) *sampling.KeyedPRNG {
	prng, err := sampling.NewKeyedPRNG([]byte(seed))
	require.NoError(t, err)
	return prng
}

func testParametersSets(t *testing.T) (params []Parameters) {

	if *flagParamString != "" {
		var pl ParametersLiteral
		require.NoError(t, json.Unmarshal([]byte(*flagParamString), &pl))
		p, err := NewParametersFromLiteral(pl)
		require.NoError(t, err)
		return []Parameters{p}
	}

	toy, err := NewParametersFromLiteral(testToy)
	require.NoError(t, err)
	params = append(params, toy)

	if testing.Short() {
		for _, name := range testShortSets {
			p, err := ParametersByName(name)
			require.NoError(t, err)
			params = append(params, p)
		}
		return
	}

	return append(params, Catalog()...)
}

type testContext struct {
	params Parameters
	kgen   *KeyGenerator
	kp     *KeyPair
	enc    *Encryptor
	dec    *Decryptor
}

func newTestContext(t *testing.T, params Parameters) (tc *testContext) {

	tc = &testContext{params: params}

	tc.kgen = NewKeyGenerator(params, newKeyedPRNG(t, "keygen/"+params.String()))

	var err error
	tc.kp, err = tc.kgen.GenKeyPairNew()
	require.NoError(t, err)

	tc.enc = NewEncryptor(params, tc.kp.Public, newKeyedPRNG(t, "encrypt/"+params.String()))
	tc.dec = NewDecryptor(params, tc.kp.Private, tc.kp.Public)

	return
}

func TestNTRU(t *testing.T) {

	for _, params := range testParametersSets(t) {

		tc := newTestContext(t, params)

		for _, testSet := range []func(tc *testContext, t *testing.T){
			testKeyGenerator,
			testEncryptDecrypt,
			testDeterminism,
			testTamper,
			testSerialization,
		} {
			testSet(tc, t)
		}
	}
}

func testKeyGenerator(tc *testContext, t *testing.T) {

	params := tc.params
	ringQ := params.RingQ()
	ringP := params.RingP()

	t.Run(testString(params, "KeyGenerator/Inverses"), func(t *testing.T) {

		sk := tc.kp.Private

		one := ringP.NewPoly()
		ringP.Mul(sk.F(ringP), &sk.Fp.Poly, one)
		require.True(t, ringP.IsOne(one))

		one = ringQ.NewPoly()
		ringQ.Mul(sk.F(ringQ), &sk.Fq.Poly, one)
		require.True(t, ringQ.IsOne(one))
	})

	// h * f = p * g mod Q, with g of weights (Dg, Dg-1).
	requireKeyRelation := func(t *testing.T, sk *PrivateKey, pk *PublicKey) {

		hf := ringQ.NewPoly()
		ringQ.Mul(&pk.H.Poly, sk.F(ringQ), hf)

		var ones, negOnes int
		for _, c := range ringQ.Centered(hf) {
			switch c {
			case 3:
				ones++
			case -3:
				negOnes++
			case 0:
			default:
				t.Fatalf("h*f has coefficient %d not in {-3, 0, 3}", c)
			}
		}

		require.Equal(t, params.Dg(), ones)
		require.Equal(t, params.Dg()-1, negOnes)
	}

	t.Run(testString(params, "KeyGenerator/KeyRelation"), func(t *testing.T) {
		requireKeyRelation(t, tc.kp.Private, tc.kp.Public)
	})

	t.Run(testString(params, "KeyGenerator/PrivateKeyShape"), func(t *testing.T) {
		switch T := tc.kp.Private.T.(type) {
		case *ring.Ternary:
			require.False(t, params.ProductForm())
			require.Len(t, T.Ones, params.Df())
			require.Len(t, T.NegOnes, params.Df())
		case *ring.ProductForm:
			require.True(t, params.ProductForm())
			df1, df2, df3 := params.DfProduct()
			require.Equal(t, 2*df1, T.F1.Weight())
			require.Equal(t, 2*df2, T.F2.Weight())
			require.Equal(t, 2*df3, T.F3.Weight())
		default:
			t.Fatalf("unexpected private polynomial type %T", T)
		}
	})

	t.Run(testString(params, "KeyGenerator/MultiplePublicKeys"), func(t *testing.T) {

		sk, pks, err := tc.kgen.GenMultipleKeyPairsNew(3)
		require.NoError(t, err)
		require.Len(t, pks, 3)

		pk, err := tc.kgen.GenPublicKeyNew(sk)
		require.NoError(t, err)
		pks = append(pks, pk)

		msg := []byte("one private key")[:min(15, params.MaxMsgLen())]

		for i, pk := range pks {

			requireKeyRelation(t, sk, pk)

			if i > 0 {
				require.False(t, pk.Equal(pks[i-1]))
			}

			ct, err := tc.enc.WithKey(pk).EncryptNew(msg)
			require.NoError(t, err)

			have, err := NewDecryptor(params, sk, pk).DecryptNew(ct)
			require.NoError(t, err)
			require.Equal(t, msg, have)
		}

		_, _, err = tc.kgen.GenMultipleKeyPairsNew(0)
		require.Error(t, err)
	})

	t.Run(testString(params, "KeyGenerator/EntropyUnavailable"), func(t *testing.T) {
		_, err := tc.kgen.WithPRNG(&failingReader{budget: 16}).GenKeyPairNew()
		require.ErrorIs(t, err, sampling.ErrEntropyUnavailable)
	})
}

func testEncryptDecrypt(tc *testContext, t *testing.T) {

	params := tc.params

	t.Run(testString(params, "Encrypt/RoundTrip"), func(t *testing.T) {

		prng := newKeyedPRNG(t, "messages")
		plain := make([]byte, params.MaxMsgLen())
		_, err := prng.Read(plain)
		require.NoError(t, err)

		for _, length := range []int{0, 1, params.MaxMsgLen() / 2, params.MaxMsgLen() - 1, params.MaxMsgLen()} {

			msg := plain[:length]

			ct, err := tc.enc.EncryptNew(msg)
			require.NoError(t, err)

			have, err := tc.dec.DecryptNew(ct)
			require.NoError(t, err)
			require.Equal(t, msg, have)
			require.Len(t, have, length)
		}
	})

	t.Run(testString(params, "Encrypt/ZeroByte"), func(t *testing.T) {

		ct, err := tc.enc.EncryptNew([]byte{0x00})
		require.NoError(t, err)

		have, err := tc.dec.DecryptNew(ct)
		require.NoError(t, err)
		require.Equal(t, []byte{0x00}, have)
	})

	t.Run(testString(params, "Encrypt/Bytes"), func(t *testing.T) {

		msg := []byte("hello")[:min(5, params.MaxMsgLen())]

		data, err := Encrypt(tc.kp.Public, msg, nil)
		require.NoError(t, err)
		require.Len(t, data, params.EncLen())

		have, err := Decrypt(tc.kp, data)
		require.NoError(t, err)
		require.Equal(t, msg, have)

		_, err = Decrypt(tc.kp, data[1:])
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run(testString(params, "Encrypt/MissingKey"), func(t *testing.T) {

		data, err := Encrypt(tc.kp.Public, []byte{7}, nil)
		require.NoError(t, err)

		for _, kp := range []*KeyPair{nil, {Private: tc.kp.Private}, {Public: tc.kp.Public}} {
			_, err = Decrypt(kp, data)
			require.ErrorIs(t, err, ErrInvalidKey)
		}

		_, err = Encrypt(nil, []byte{7}, nil)
		require.ErrorIs(t, err, ErrInvalidKey)

		require.Panics(t, func() { NewDecryptor(params, tc.kp.Private, nil) })
		require.Panics(t, func() { NewDecryptor(params, nil, tc.kp.Public) })
		require.Panics(t, func() { NewEncryptor(params, nil, nil) })
	})

	t.Run(testString(params, "Encrypt/MessageTooLong"), func(t *testing.T) {

		_, err := tc.enc.EncryptNew(make([]byte, params.MaxMsgLen()))
		require.NoError(t, err)

		_, err = tc.enc.EncryptNew(make([]byte, params.MaxMsgLen()+1))
		require.ErrorIs(t, err, ErrMessageTooLong)
	})

	t.Run(testString(params, "Encrypt/EntropyUnavailable"), func(t *testing.T) {
		_, err := tc.enc.WithPRNG(&failingReader{budget: 1}).EncryptNew([]byte{1})
		require.ErrorIs(t, err, sampling.ErrEntropyUnavailable)
	})

	t.Run(testString(params, "Encrypt/EncodingFailed"), func(t *testing.T) {

		// No masked message can hold N coefficients equal to each of -1, 0 and 1.
		strict := params
		strict.dm0 = params.N()

		pk := &PublicKey{params: strict, H: tc.kp.Public.H}

		_, err := NewEncryptor(strict, pk, newKeyedPRNG(t, "dm0")).WithMaxAttempts(3).EncryptNew(nil)
		require.ErrorIs(t, err, ErrEncodingFailed)
	})

	t.Run(testString(params, "Decrypt/WrongKey"), func(t *testing.T) {

		other, err := tc.kgen.WithPRNG(newKeyedPRNG(t, "other key")).GenKeyPairNew()
		require.NoError(t, err)

		ct, err := tc.enc.EncryptNew([]byte{1, 2, 3}[:min(3, params.MaxMsgLen())])
		require.NoError(t, err)

		_, err = tc.dec.WithKey(other.Private, other.Public).DecryptNew(ct)
		require.ErrorIs(t, err, ErrDecryptionFailed)

		_, err = tc.dec.WithKey(other.Private, tc.kp.Public).DecryptNew(ct)
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run(testString(params, "Decrypt/ShallowCopy"), func(t *testing.T) {

		ct, err := tc.enc.ShallowCopy().EncryptNew([]byte{42})
		require.NoError(t, err)

		have, err := tc.dec.ShallowCopy().DecryptNew(ct)
		require.NoError(t, err)
		require.Equal(t, []byte{42}, have)
	})
}

func testDeterminism(tc *testContext, t *testing.T) {

	params := tc.params

	t.Run(testString(params, "Determinism/KeyGenerator"), func(t *testing.T) {

		kpA, err := NewKeyGenerator(params, newKeyedPRNG(t, "my test password")).GenKeyPairNew()
		require.NoError(t, err)

		kpB, err := GenerateKeyPair(params, newKeyedPRNG(t, "my test password"))
		require.NoError(t, err)

		require.True(t, kpA.Private.Equal(kpB.Private))
		require.True(t, kpA.Public.Equal(kpB.Public))

		kpC, err := GenerateKeyPair(params, newKeyedPRNG(t, "another password"))
		require.NoError(t, err)
		require.False(t, kpA.Public.Equal(kpC.Public))
	})

	t.Run(testString(params, "Determinism/Encryptor"), func(t *testing.T) {

		msg := []byte{0xde, 0xad, 0xbe, 0xef}[:min(4, params.MaxMsgLen())]

		ctA, err := tc.enc.WithPRNG(newKeyedPRNG(t, "encryption seed")).EncryptNew(msg)
		require.NoError(t, err)

		ctB, err := tc.enc.WithPRNG(newKeyedPRNG(t, "encryption seed")).EncryptNew(msg)
		require.NoError(t, err)

		require.True(t, ctA.Equal(ctB))

		ctC, err := tc.enc.EncryptNew(msg)
		require.NoError(t, err)
		require.False(t, ctA.Equal(ctC))
	})
}

func testTamper(tc *testContext, t *testing.T) {

	params := tc.params
	ringQ := params.RingQ()

	t.Run(testString(params, "Decrypt/Tamper"), func(t *testing.T) {

		msg := []byte("tamper")[:min(6, params.MaxMsgLen())]

		ct, err := tc.enc.EncryptNew(msg)
		require.NoError(t, err)

		src := sampling.NewSource(newKeyedPRNG(t, "positions"))

		trials := 64
		if !testing.Short() {
			trials = 256
		}

		for trial := 0; trial < trials; trial++ {

			i, err := src.NextIndex(params.N())
			require.NoError(t, err)

			tampered := ct.CopyNew()
			tampered.E.Coeffs[i] = (tampered.E.Coeffs[i] + 1 + uint64(trial)) % ringQ.Modulus()

			have, err := tc.dec.DecryptNew(tampered)
			if err != nil {
				require.ErrorIs(t, err, ErrDecryptionFailed)
				continue
			}

			require.False(t, bytes.Equal(msg, have), "tampered ciphertext decrypted to the original message")
		}
	})
}

func testSerialization(tc *testContext, t *testing.T) {

	params := tc.params

	t.Run(testString(params, "Serialization/PublicKey"), func(t *testing.T) {

		buffer.RequireSerializerCorrectWith(t, tc.kp.Public, func() *PublicKey { return NewPublicKey(params) })

		data, err := tc.kp.Public.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, params.PublicKeyLen())

		// Only catalog sets can be recovered from the key header.
		pk := new(PublicKey)
		if err = pk.UnmarshalBinary(data); err == nil {
			require.True(t, pk.Equal(tc.kp.Public))
		} else {
			require.ErrorIs(t, err, ErrUnknownParameters)
		}

		require.ErrorIs(t, NewPublicKey(params).UnmarshalBinary(data[:len(data)-1]), ErrInvalidKey)
	})

	t.Run(testString(params, "Serialization/PrivateKey"), func(t *testing.T) {

		buffer.RequireSerializerCorrectWith(t, tc.kp.Private, func() *PrivateKey { return &PrivateKey{params: params} })

		data, err := tc.kp.Private.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, params.PrivateKeyLen())

		sk := new(PrivateKey)
		if err = sk.UnmarshalBinary(data); err == nil {
			require.True(t, sk.Equal(tc.kp.Private))
			require.True(t, sk.Fq.Equal(tc.kp.Private.Fq))
		} else {
			require.ErrorIs(t, err, ErrUnknownParameters)
		}

		require.ErrorIs(t, (&PrivateKey{params: params}).UnmarshalBinary(data[:len(data)-1]), ErrInvalidKey)
	})

	t.Run(testString(params, "Serialization/Ciphertext"), func(t *testing.T) {

		ct, err := tc.enc.EncryptNew([]byte{7})
		require.NoError(t, err)

		buffer.RequireSerializerCorrectWith(t, ct, func() *Ciphertext { return NewCiphertext(params) })

		data, err := ct.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, params.EncLen())
	})

	t.Run(testString(params, "Serialization/Parameters"), func(t *testing.T) {

		buffer.RequireSerializerCorrect(t, &params)

		data, err := json.Marshal(params)
		require.NoError(t, err)

		var have Parameters
		require.NoError(t, json.Unmarshal(data, &have))
		require.True(t, params.Equal(&have))
	})
}

// TestRoundTripRandomMessages encrypts and decrypts random messages of
// random lengths under every catalog set. Decryption failures of the EES
// sets are far too rare to show up: any failure is a bug.
func TestRoundTripRandomMessages(t *testing.T) {

	if testing.Short() {
		t.Skip("skipping random round trips in short mode")
	}

	const trials = 128

	for _, params := range Catalog() {

		t.Run(testString(params, "RoundTrip/Random"), func(t *testing.T) {

			kp, err := GenerateKeyPair(params, newKeyedPRNG(t, "random/keygen/"+params.String()))
			require.NoError(t, err)

			enc := NewEncryptor(params, kp.Public, newKeyedPRNG(t, "random/encrypt/"+params.String()))
			dec := NewDecryptor(params, kp.Private, kp.Public)

			src := sampling.NewSource(newKeyedPRNG(t, "random/messages/"+params.String()))

			var failures int
			for trial := 0; trial < trials; trial++ {

				length, err := src.NextIndex(params.MaxMsgLen() + 1)
				require.NoError(t, err)

				msg, err := src.Bytes(length)
				require.NoError(t, err)

				ct, err := enc.EncryptNew(msg)
				require.NoError(t, err)

				have, err := dec.DecryptNew(ct)
				if err != nil || !bytes.Equal(msg, have) {
					failures++
				}
			}

			require.Zero(t, failures, "%d/%d round trips failed", failures, trials)
		})
	}
}

func TestKeyGenerationFailed(t *testing.T) {

	// g has no zero coefficient: g = 1 + X + ... + X^(N-1) mod 2 is never invertible.
	pl := testToy
	pl.Dg = (pl.N + 1) / 2

	params, err := NewParametersFromLiteral(pl)
	require.NoError(t, err)

	_, err = NewKeyGenerator(params, newKeyedPRNG(t, "g")).WithMaxAttempts(4).GenKeyPairNew()
	require.ErrorIs(t, err, ErrKeyGenerationFailed)
}
