package ring

import (
	"fmt"

	"github.com/tuneinsight/ntru/utils"
)

// PackedSize returns the size in bytes of a packed polynomial of the ring,
// that is ceil(N * ceil(log2(m)) / 8).
func (r *Ring) PackedSize() int {
	return utils.CeilDiv(r.n*r.logModulus, 8)
}

// Pack returns the coefficients of a, each packed on ceil(log2(m)) bits.
// The coefficients must be reduced.
func (r *Ring) Pack(a *Poly) []byte {
	out := make([]byte, r.PackedSize())
	PackBits(a.Coeffs[:r.n], r.logModulus, out)
	return out
}

// Unpack decodes data, as produced by [Ring.Pack], on out.
// It returns an error if data has the wrong size or if a decoded
// coefficient is not reduced modulo m.
func (r *Ring) Unpack(data []byte, out *Poly) error {

	if len(data) != r.PackedSize() {
		return fmt.Errorf("cannot Unpack: expected %d bytes but got %d", r.PackedSize(), len(data))
	}

	UnpackBits(data, r.logModulus, out.Coeffs[:r.n])

	for i, c := range out.Coeffs[:r.n] {
		if c >= r.modulus {
			return fmt.Errorf("cannot Unpack: coefficient %d is %d >= %d", i, c, r.modulus)
		}
	}

	return nil
}

// PackBits writes each value on width bits of dst, most significant bit
// first, starting at the most significant bit of dst[0]. Trailing bits of
// the last byte are set to zero. dst must hold ceil(len(values)*width/8) bytes.
func PackBits(values []uint64, width int, dst []byte) {

	clear(dst)

	var acc uint64
	var accBits, j int

	for _, v := range values {

		acc = acc<<width | v&(1<<width-1)
		accBits += width

		for accBits >= 8 {
			accBits -= 8
			dst[j] = byte(acc >> accBits)
			j++
		}

		acc &= 1<<accBits - 1
	}

	if accBits > 0 {
		dst[j] = byte(acc << (8 - accBits))
	}
}

// UnpackBits is the inverse of [PackBits]: it reads len(values) values of
// width bits each from src.
func UnpackBits(src []byte, width int, values []uint64) {

	var acc uint64
	var accBits, j int

	for i := range values {

		for accBits < width {
			acc = acc<<8 | uint64(src[j])
			accBits += 8
			j++
		}

		accBits -= width
		values[i] = acc >> accBits
		acc &= 1<<accBits - 1
	}
}
