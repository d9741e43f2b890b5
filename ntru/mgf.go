package ntru

import (
	"fmt"

	"github.com/tuneinsight/ntru/ring"
	"github.com/tuneinsight/ntru/utils"
)

// maskSeed returns the coefficients of R reduced mod 4, packed four per
// byte, most significant bits first.
func maskSeed(R *ring.Poly) []byte {
	N := R.N()
	values := make([]uint64, N)
	for i, c := range R.Coeffs[:N] {
		values[i] = c & 3
	}
	seed := make([]byte, utils.CeilDiv(N, 4))
	ring.PackBits(values, 2, seed)
	return seed
}

// generateMask is the mask generation function MGF-TP-1: it expands the
// seed derived from R into N trits in {0, 1, 2}. Each byte O < 243 of the
// hash stream yields five trits, the base-3 digits of O, least significant
// first. Bytes >= 243 are discarded.
func generateMask(params Parameters, R *ring.Poly) (mask []uint8, err error) {

	stream, err := newHashStream(params.hash, maskSeed(R), params.minCallsMask)
	if err != nil {
		return nil, fmt.Errorf("cannot generateMask: %w", err)
	}

	N := params.N()
	mask = make([]uint8, 0, N+4)

	for pos := 0; len(mask) < N; pos++ {

		if pos == len(stream.buf) {
			stream.extend()
		}

		O := stream.buf[pos]
		if O >= 243 {
			continue
		}

		for j := 0; j < 4; j++ {
			mask = append(mask, O%3)
			O /= 3
		}
		mask = append(mask, O)
	}

	return mask[:N], nil
}
