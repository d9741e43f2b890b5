package ntru

import (
	"github.com/tuneinsight/ntru/ring"
)

// Messages are embedded into the ring as ternary polynomials: each group of
// three bits, most significant first, is mapped to a pair of trits
//
//	000 -> ( 0,  0)   001 -> ( 0,  1)   010 -> ( 0, -1)   011 -> ( 1,  0)
//	100 -> ( 1,  1)   101 -> ( 1, -1)   110 -> (-1,  0)   111 -> (-1,  1)
//
// so that three bytes give 16 trits. The pair (-1, -1) has no preimage.
// Trits are stored as polynomials modulo 3, with -1 represented by 2.

// formatMessage returns M = b | len(msg) | msg | p0, where p0 is the zero
// padding up to the maximum message length plus one byte.
func formatMessage(params Parameters, b, msg []byte) (M []byte) {
	M = make([]byte, params.messageLen())
	n := copy(M, b)
	M[n] = byte(len(msg))
	copy(M[n+1:], msg)
	return
}

// parseMessage checks the format of a decoded M and returns its random
// prefix b and its message. It returns false if the length byte exceeds
// the maximum message length or if the padding is not zero.
func parseMessage(params Parameters, M []byte) (b, msg []byte, ok bool) {

	bLen := params.db >> 3
	b = M[:bLen]

	msgLen := int(M[bLen])
	if msgLen > params.MaxMsgLen() {
		return nil, nil, false
	}

	msg = M[bLen+1 : bLen+1+msgLen]

	var acc byte
	for _, c := range M[bLen+1+msgLen:] {
		acc |= c
	}

	return b, msg, acc == 0
}

// bytesToTrits writes the trits of data on out, a polynomial modulo 3.
// Trits beyond the degree of out are dropped and missing trailing trits
// are set to zero.
func bytesToTrits(data []byte, out *ring.Poly) {

	out.Zero()

	N := out.N()
	coeffs := out.Coeffs

	for i, j := 0, 0; i < len(data) && j < N; i += 3 {

		var block uint32
		for k := 0; k < 3; k++ {
			block <<= 8
			if i+k < len(data) {
				block |= uint32(data[i+k])
			}
		}

		for shift := 21; shift >= 0 && j < N; shift -= 3 {
			v := uint64(block>>shift) & 7
			coeffs[j] = v / 3
			if j+1 < N {
				coeffs[j+1] = v % 3
			}
			j += 2
		}
	}
}

// tritsToBytes is the inverse of [bytesToTrits]: it decodes n bytes from
// the trits of in, treating trits beyond its degree as zero. It returns
// false if a pair of trits is (-1, -1).
func tritsToBytes(in *ring.Poly, n int) (data []byte, ok bool) {

	N := in.N()
	trit := func(j int) uint64 {
		if j < N {
			return in.Coeffs[j] % 3
		}
		return 0
	}

	data = make([]byte, n+2)
	ok = true

	for i, j := 0, 0; i < n; i += 3 {

		var block uint32
		for k := 0; k < 8; k++ {
			v := 3*trit(j) + trit(j+1)
			j += 2
			if v > 7 {
				ok = false
				v = 0
			}
			block = block<<3 | uint32(v)
		}

		data[i] = byte(block >> 16)
		data[i+1] = byte(block >> 8)
		data[i+2] = byte(block)
	}

	return data[:n], ok
}

// seedData returns sData = OID | msg | b | hTrunc, the seed of the
// blinding polynomial, where hTrunc is the first PkLen/8 bytes of the
// packed public key.
func seedData(params Parameters, msg, b, packedH []byte) []byte {
	hTrunc := packedH[:params.pkLen>>3]
	sData := make([]byte, 0, len(params.oid)+len(msg)+len(b)+len(hTrunc))
	sData = append(sData, params.oid[:]...)
	sData = append(sData, msg...)
	sData = append(sData, b...)
	return append(sData, hTrunc...)
}

// checkDm0 returns true if the polynomial modulo 3 has at least dm0
// coefficients equal to each of 0, 1 and -1.
func checkDm0(params Parameters, m *ring.Poly) bool {
	var counts [3]int
	for _, c := range m.Coeffs[:params.N()] {
		counts[c%3]++
	}
	return counts[0] >= params.dm0 && counts[1] >= params.dm0 && counts[2] >= params.dm0
}
