package ntru

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParameters(t *testing.T) {

	t.Run("Literal/Default", func(t *testing.T) {

		params, err := NewParametersFromLiteral(testToy)
		require.NoError(t, err)

		require.Equal(t, uint64(DefaultP), params.P())
		require.Equal(t, 11, params.LogQ())
		require.Equal(t, 10, params.MaxMsgLen())
		require.Equal(t, 148, params.EncLen())
		require.Equal(t, 152, params.PublicKeyLen())
		require.Equal(t, params.Db()/8+1+params.MaxMsgLen()+1, params.messageLen())

		have, err := NewParametersFromLiteral(params.ParametersLiteral())
		require.NoError(t, err)
		require.True(t, params.Equal(&have))
	})

	t.Run("Literal/Invalid", func(t *testing.T) {

		for name, update := range map[string]func(pl *ParametersLiteral){
			"N/NotPrime":       func(pl *ParametersLiteral) { pl.N = 108 },
			"N/TooSmall":       func(pl *ParametersLiteral) { pl.N = 1 },
			"P/Unsupported":    func(pl *ParametersLiteral) { pl.P = 5 },
			"Q/NotPowerOfTwo":  func(pl *ParametersLiteral) { pl.Q = 2000 },
			"Q/TooLarge":       func(pl *ParametersLiteral) { pl.Q = 1 << 16 },
			"Q/TooSmallForDf":  func(pl *ParametersLiteral) { pl.Q = 64 },
			"Df/Zero":          func(pl *ParametersLiteral) { pl.Df = 0 },
			"Df/TooLarge":      func(pl *ParametersLiteral) { pl.Df = pl.N },
			"Df/ProductForm":   func(pl *ParametersLiteral) { pl.ProductForm = true },
			"Dg/Zero":          func(pl *ParametersLiteral) { pl.Dg = 0 },
			"Dg/TooLarge":      func(pl *ParametersLiteral) { pl.Dg = pl.N },
			"Dm0/TooLarge":     func(pl *ParametersLiteral) { pl.Dm0 = pl.N/3 + 1 },
			"Db/NotByte":       func(pl *ParametersLiteral) { pl.Db = 60 },
			"Db/NoRoom":        func(pl *ParametersLiteral) { pl.Db = 160 },
			"C/Zero":           func(pl *ParametersLiteral) { pl.C = 0 },
			"C/TooSmallForN":   func(pl *ParametersLiteral) { pl.C = 6 },
			"MinCallsR/Zero":   func(pl *ParametersLiteral) { pl.MinCallsR = 0 },
			"Hash/Unknown":     func(pl *ParametersLiteral) { pl.Hash = HashID("MD5") },
			"PkLen/TooSmall":   func(pl *ParametersLiteral) { pl.PkLen = 7 },
			"PkLen/TooLarge":   func(pl *ParametersLiteral) { pl.PkLen = 8 * 149 },
			"MinCallsMask/Neg": func(pl *ParametersLiteral) { pl.MinCallsMask = -1 },
		} {
			t.Run(name, func(t *testing.T) {
				pl := testToy
				update(&pl)
				params, err := NewParametersFromLiteral(pl)
				require.ErrorIs(t, err, ErrInvalidParameters)
				require.Zero(t, params.N())
			})
		}
	})

	t.Run("JSON", func(t *testing.T) {

		params, err := ParametersByName(EES401EP2)
		require.NoError(t, err)

		data, err := json.Marshal(params)
		require.NoError(t, err)

		var pl ParametersLiteral
		require.NoError(t, json.Unmarshal(data, &pl))
		require.True(t, pl.ProductForm)
		require.Zero(t, pl.Df)
		require.Equal(t, [3]int{8, 8, 6}, [3]int{pl.Df1, pl.Df2, pl.Df3})

		var have Parameters
		require.NoError(t, json.Unmarshal(data, &have))
		require.True(t, params.Equal(&have))

		require.Error(t, json.Unmarshal([]byte(`{"N":108,"Q":2048}`), &have))
	})

	t.Run("Binary", func(t *testing.T) {

		params, err := ParametersByName(EES1087EP2)
		require.NoError(t, err)

		data, err := params.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, params.BinarySize())

		var have Parameters
		require.NoError(t, have.UnmarshalBinary(data))
		require.True(t, params.Equal(&have))

		// The length prefix is checked before the allocation.
		oversized := make([]byte, 4)
		binary.LittleEndian.PutUint32(oversized, math.MaxUint32)
		require.ErrorIs(t, have.UnmarshalBinary(oversized), ErrInvalidParameters)

		binary.LittleEndian.PutUint32(oversized, MaxParametersJSONSize+1)
		require.ErrorIs(t, have.UnmarshalBinary(oversized), ErrInvalidParameters)

		require.Error(t, have.UnmarshalBinary(data[:len(data)-1]))
	})
}

func TestCatalog(t *testing.T) {

	catalog := Catalog()
	require.Len(t, catalog, 18)

	t.Run("Unique", func(t *testing.T) {
		names := map[string]bool{}
		oids := map[[3]byte]bool{}
		for _, p := range catalog {
			require.False(t, names[p.Name()], p.Name())
			require.False(t, oids[p.OID()], p.Name())
			names[p.Name()] = true
			oids[p.OID()] = true
		}
	})

	t.Run("Sizes", func(t *testing.T) {
		for name, want := range map[string]int{
			EES401EP1:  60,
			EES613EP1:  97,
			EES1499EP1: 247,
		} {
			p, err := ParametersByName(name)
			require.NoError(t, err)
			require.Equal(t, want, p.MaxMsgLen(), name)
		}

		p, err := ParametersByName(EES613EP1)
		require.NoError(t, err)
		require.Equal(t, 843, p.EncLen())
		require.Equal(t, 847, p.PublicKeyLen())
	})

	t.Run("ByName", func(t *testing.T) {
		p, err := ParametersByName("ees613ep1")
		require.NoError(t, err)
		require.Equal(t, EES613EP1, p.Name())
		require.Equal(t, 613, p.N())
		require.Equal(t, uint64(2048), p.Q())

		_, err = ParametersByName("EES000EP1")
		require.ErrorIs(t, err, ErrUnknownParameters)
	})

	t.Run("ByOID", func(t *testing.T) {
		for _, p := range catalog {
			have, err := ParametersByOID(p.OID())
			require.NoError(t, err)
			require.True(t, p.Equal(&have))
		}

		_, err := ParametersByOID([3]byte{0xff, 0xff, 0xff})
		require.ErrorIs(t, err, ErrUnknownParameters)
	})

	t.Run("Default", func(t *testing.T) {
		for security, name := range map[int]string{
			112: EES541EP1,
			128: EES613EP1,
			192: EES887EP1,
			256: EES1171EP1,
		} {
			p, err := DefaultParameters(security)
			require.NoError(t, err)
			require.Equal(t, name, p.Name())
			require.Equal(t, security, p.Security())
			require.False(t, p.Deprecated())
		}

		_, err := DefaultParameters(80)
		require.ErrorIs(t, err, ErrUnknownParameters)
	})

	t.Run("Deprecated", func(t *testing.T) {
		for _, name := range []string{EES439EP1, EES593EP1} {
			p, err := ParametersByName(name)
			require.NoError(t, err)
			require.True(t, p.Deprecated())
			require.True(t, p.ProductForm())
		}
	})

	t.Run("FromPublicKey", func(t *testing.T) {

		count := map[int]int{}
		for _, p := range catalog {
			count[p.N()]++
		}

		for _, p := range catalog {

			data := make([]byte, keyHeaderLen)
			binary.LittleEndian.PutUint16(data, uint16(p.N()))
			binary.LittleEndian.PutUint16(data[2:], uint16(p.Q()))

			have, err := ParametersFromPublicKey(data)

			if count[p.N()] > 1 {
				require.ErrorIs(t, err, ErrUnknownParameters, p.Name())
				continue
			}

			require.NoError(t, err, p.Name())
			require.True(t, p.Equal(&have), p.Name())
		}

		_, err := ParametersFromPublicKey([]byte{1, 2})
		require.ErrorIs(t, err, ErrInvalidKey)

		_, err = ParametersFromPublicKey([]byte{107, 0, 0, 8})
		require.ErrorIs(t, err, ErrUnknownParameters)
	})

	t.Run("FromPrivateKey", func(t *testing.T) {

		for _, p := range catalog {

			flags := byte(flagTernary)
			if p.ProductForm() {
				flags |= flagProductForm
			}

			data := make([]byte, keyHeaderLen+3)
			binary.LittleEndian.PutUint16(data, uint16(p.N()))
			binary.LittleEndian.PutUint16(data[2:], uint16(p.Q()))
			data[4] = flags
			binary.LittleEndian.PutUint16(data[5:], uint16(p.df[0]))

			have, err := ParametersFromPrivateKey(data)
			require.NoError(t, err, p.Name())
			require.True(t, p.Equal(&have), p.Name())
		}

		_, err := ParametersFromPrivateKey([]byte{1, 2, 3, 4})
		require.ErrorIs(t, err, ErrInvalidKey)
	})
}
