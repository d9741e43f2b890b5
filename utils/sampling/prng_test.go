package sampling_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/ntru/utils/sampling"
)

type failingReader struct {
	budget int
}

func (r *failingReader) Read(p []byte) (n int, err error) {
	if r.budget <= 0 {
		return 0, errors.New("device closed")
	}
	n = min(len(p), r.budget)
	r.budget -= n
	return n, nil
}

func Test_PRNG(t *testing.T) {

	key := []byte{0x49, 0x0a, 0x42, 0x3d, 0x97, 0x9d, 0xc1, 0x07, 0xa1, 0xd7, 0xe9, 0x7b, 0x3b, 0xce, 0xa1, 0xdb,
		0x42, 0xf3, 0xa6, 0xd5, 0x75, 0xd2, 0x0c, 0x92, 0xb7, 0x35, 0xce, 0x0c, 0xee, 0x09, 0x7c, 0x98}

	t.Run("KeyedPRNG", func(t *testing.T) {

		Ha, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)
		Hb, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)

		sum0 := make([]byte, 512)
		sum1 := make([]byte, 512)

		for i := 0; i < 128; i++ {
			_, err = Hb.Read(sum1)
			require.NoError(t, err)
		}

		Hb.Reset()

		_, err = Ha.Read(sum0)
		require.NoError(t, err)
		_, err = Hb.Read(sum1)
		require.NoError(t, err)

		require.Equal(t, sum0, sum1)
		require.Equal(t, key, Ha.Key())
	})

	t.Run("XOFPRNG", func(t *testing.T) {

		Ha, err := sampling.NewXOFPRNG([]byte("seed"))
		require.NoError(t, err)
		Hb, err := sampling.NewXOFPRNG([]byte("seed"))
		require.NoError(t, err)
		Hc, err := sampling.NewXOFPRNG([]byte("other seed"))
		require.NoError(t, err)

		sum0 := make([]byte, 256)
		sum1 := make([]byte, 256)
		sum2 := make([]byte, 256)

		_, err = Hb.Read(sum1)
		require.NoError(t, err)
		Hb.Reset()

		_, err = Ha.Read(sum0)
		require.NoError(t, err)
		_, err = Hb.Read(sum1)
		require.NoError(t, err)
		_, err = Hc.Read(sum2)
		require.NoError(t, err)

		require.Equal(t, sum0, sum1)
		require.NotEqual(t, sum0, sum2)
		require.Equal(t, []byte("seed"), Ha.Seed())
	})

	t.Run("EmptySeed", func(t *testing.T) {
		_, err := sampling.NewKeyedPRNG(nil)
		require.ErrorIs(t, err, sampling.ErrEntropyUnavailable)
		_, err = sampling.NewXOFPRNG([]byte{})
		require.ErrorIs(t, err, sampling.ErrEntropyUnavailable)
	})

	t.Run("ThreadSafePRNG", func(t *testing.T) {
		prng, err := sampling.NewPRNG()
		require.NoError(t, err)
		b, err := sampling.NewSource(prng).Bytes(64)
		require.NoError(t, err)
		require.Len(t, b, 64)
	})
}

func TestSource(t *testing.T) {

	t.Run("Uniform/Bounds", func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte("uniform"))
		require.NoError(t, err)
		src := sampling.NewSource(prng)

		for _, bound := range []uint64{1, 2, 3, 401, 1171, 1 << 16, 1<<64 - 1} {
			for i := 0; i < 256; i++ {
				v, err := src.Uniform(bound)
				require.NoError(t, err)
				require.Less(t, v, bound)
			}
		}

		_, err = src.Uniform(0)
		require.Error(t, err)
		_, err = src.NextIndex(-1)
		require.Error(t, err)
	})

	t.Run("Uniform/Coverage", func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte("coverage"))
		require.NoError(t, err)
		src := sampling.NewSource(prng)

		seen := make([]bool, 7)
		for i := 0; i < 512; i++ {
			v, err := src.NextIndex(7)
			require.NoError(t, err)
			seen[v] = true
		}

		for i := range seen {
			require.True(t, seen[i], "value %d never sampled", i)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		prngA, _ := sampling.NewKeyedPRNG([]byte("determinism"))
		prngB, _ := sampling.NewKeyedPRNG([]byte("determinism"))
		srcA, srcB := sampling.NewSource(prngA), sampling.NewSource(prngB)

		for i := 0; i < 128; i++ {
			a, err := srcA.NextIndex(613)
			require.NoError(t, err)
			b, err := srcB.NextIndex(613)
			require.NoError(t, err)
			require.Equal(t, a, b)
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		src := sampling.NewSource(&failingReader{budget: 3})

		_, err := src.Bytes(3)
		require.NoError(t, err)

		_, err = src.Bytes(1)
		require.ErrorIs(t, err, sampling.ErrEntropyUnavailable)

		_, err = src.Uniform(1000)
		require.ErrorIs(t, err, sampling.ErrEntropyUnavailable)
	})
}
