package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPowerOfTwo(t *testing.T) {
	for _, x := range []uint64{1, 2, 4, 2048, 1 << 16} {
		require.True(t, IsPowerOfTwo(x), x)
	}
	for _, x := range []uint64{0, 3, 6, 2047, 2049} {
		require.False(t, IsPowerOfTwo(x), x)
	}
	require.False(t, IsPowerOfTwo(-4))
}

func TestIsPrime(t *testing.T) {
	for _, x := range []int{2, 3, 107, 401, 613, 1087, 1499} {
		require.True(t, IsPrime(x), x)
	}
	for _, x := range []int{-7, 0, 1, 4, 9, 108, 1001} {
		require.False(t, IsPrime(x), x)
	}
}

func TestBitLen(t *testing.T) {
	require.Equal(t, 0, BitLen(uint64(0)))
	require.Equal(t, 1, BitLen(uint64(1)))
	require.Equal(t, 9, BitLen(uint64(400)))
	require.Equal(t, 11, BitLen(uint64(1498)))

	require.Equal(t, 0, Log2Ceil(uint64(1)))
	require.Equal(t, 2, Log2Ceil(uint64(3)))
	require.Equal(t, 11, Log2Ceil(uint64(2048)))
	require.Equal(t, 12, Log2Ceil(uint64(2049)))
}

func TestCeilDiv(t *testing.T) {
	require.Equal(t, 0, CeilDiv(0, 8))
	require.Equal(t, 1, CeilDiv(1, 8))
	require.Equal(t, 1, CeilDiv(8, 8))
	require.Equal(t, 843, CeilDiv(613*11, 8))
}

func TestModInverse(t *testing.T) {

	for _, p := range []uint64{2, 3, 7, 65537} {
		for a := uint64(1); a < min(p, 100); a++ {
			inv, ok := ModInverse(a, p)
			require.True(t, ok)
			require.Equal(t, uint64(1), a*inv%p, "a=%d p=%d", a, p)
		}
	}

	_, ok := ModInverse(uint64(6), 3)
	require.False(t, ok)
}

func TestSlices(t *testing.T) {

	s := []uint64{1, 2, 3}
	require.True(t, EqualSlice(s, []uint64{1, 2, 3}))
	require.False(t, EqualSlice(s, []uint64{1, 2}))
	require.False(t, EqualSlice(s, []uint64{1, 2, 4}))

	Zero(s)
	require.Equal(t, []uint64{0, 0, 0}, s)
}
