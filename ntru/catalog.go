package ntru

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"
)

const (
	// EES401EP1 is the ternary parameter set for 112 bits of security with the smallest keys.
	EES401EP1 = "EES401EP1"
	// EES449EP1 is the ternary parameter set for 128 bits of security with the smallest keys.
	EES449EP1 = "EES449EP1"
	// EES677EP1 is the ternary parameter set for 192 bits of security with the smallest keys.
	EES677EP1 = "EES677EP1"
	// EES1087EP2 is the ternary parameter set for 256 bits of security with the smallest keys.
	EES1087EP2 = "EES1087EP2"
	// EES541EP1 is the ternary parameter set for 112 bits of security balancing size and speed.
	EES541EP1 = "EES541EP1"
	// EES613EP1 is the ternary parameter set for 128 bits of security balancing size and speed.
	EES613EP1 = "EES613EP1"
	// EES887EP1 is the ternary parameter set for 192 bits of security balancing size and speed.
	EES887EP1 = "EES887EP1"
	// EES1171EP1 is the ternary parameter set for 256 bits of security balancing size and speed.
	EES1171EP1 = "EES1171EP1"
	// EES659EP1 is the ternary parameter set for 112 bits of security with the fastest operations.
	EES659EP1 = "EES659EP1"
	// EES761EP1 is the ternary parameter set for 128 bits of security with the fastest operations.
	EES761EP1 = "EES761EP1"
	// EES1087EP1 is the ternary parameter set for 192 bits of security with the fastest operations.
	EES1087EP1 = "EES1087EP1"
	// EES1499EP1 is the ternary parameter set for 256 bits of security with the fastest operations.
	EES1499EP1 = "EES1499EP1"

	// EES401EP2 is the product-form parameter set for 112 bits of security.
	EES401EP2 = "EES401EP2"
	// EES439EP1 is a deprecated product-form parameter set for 128 bits of security.
	EES439EP1 = "EES439EP1"
	// EES443EP1 is the product-form parameter set for 128 bits of security.
	EES443EP1 = "EES443EP1"
	// EES593EP1 is a deprecated product-form parameter set for 192 bits of security.
	EES593EP1 = "EES593EP1"
	// EES587EP1 is the product-form parameter set for 192 bits of security.
	EES587EP1 = "EES587EP1"
	// EES743EP1 is the product-form parameter set for 256 bits of security.
	EES743EP1 = "EES743EP1"
)

func ternaryLiteral(name string, oid [3]byte, security, N, df, dg, dm0, db, c, minCallsR, minCallsMask int, h HashID, pkLen int) ParametersLiteral {
	return ParametersLiteral{
		Name:         name,
		OID:          oid,
		Security:     security,
		N:            N,
		P:            DefaultP,
		Q:            2048,
		Df:           df,
		Dg:           dg,
		Dm0:          dm0,
		Db:           db,
		C:            c,
		MinCallsR:    minCallsR,
		MinCallsMask: minCallsMask,
		Hash:         h,
		PkLen:        pkLen,
	}
}

func productFormLiteral(name string, oid [3]byte, security, N, df1, df2, df3, dg, dm0, db, c, minCallsR, minCallsMask int, h HashID, pkLen int, deprecated bool) ParametersLiteral {
	return ParametersLiteral{
		Name:         name,
		OID:          oid,
		Security:     security,
		N:            N,
		P:            DefaultP,
		Q:            2048,
		ProductForm:  true,
		Df1:          df1,
		Df2:          df2,
		Df3:          df3,
		Dg:           dg,
		Dm0:          dm0,
		Db:           db,
		C:            c,
		MinCallsR:    minCallsR,
		MinCallsMask: minCallsMask,
		Hash:         h,
		PkLen:        pkLen,
		Deprecated:   deprecated,
	}
}

// catalogLiterals lists the EES parameter sets of IEEE 1363.1 and X9.98.
var catalogLiterals = []ParametersLiteral{
	ternaryLiteral(EES401EP1, [3]byte{0, 2, 4}, 112, 401, 113, 133, 113, 112, 11, 32, 9, SHA1, 114),
	ternaryLiteral(EES449EP1, [3]byte{0, 3, 3}, 128, 449, 134, 149, 134, 128, 9, 31, 9, SHA1, 128),
	ternaryLiteral(EES677EP1, [3]byte{0, 5, 3}, 192, 677, 157, 225, 157, 192, 11, 27, 9, SHA256, 192),
	ternaryLiteral(EES1087EP2, [3]byte{0, 6, 3}, 256, 1087, 120, 362, 120, 256, 13, 25, 14, SHA256, 256),
	ternaryLiteral(EES541EP1, [3]byte{0, 2, 5}, 112, 541, 49, 180, 49, 112, 12, 15, 11, SHA1, 112),
	ternaryLiteral(EES613EP1, [3]byte{0, 3, 4}, 128, 613, 55, 204, 55, 128, 11, 16, 13, SHA1, 128),
	ternaryLiteral(EES887EP1, [3]byte{0, 5, 4}, 192, 887, 81, 295, 81, 192, 10, 13, 12, SHA256, 192),
	ternaryLiteral(EES1171EP1, [3]byte{0, 6, 4}, 256, 1171, 106, 390, 106, 256, 12, 20, 15, SHA256, 256),
	ternaryLiteral(EES659EP1, [3]byte{0, 2, 6}, 112, 659, 38, 219, 38, 112, 11, 11, 14, SHA1, 112),
	ternaryLiteral(EES761EP1, [3]byte{0, 3, 5}, 128, 761, 42, 253, 42, 128, 12, 13, 16, SHA1, 128),
	ternaryLiteral(EES1087EP1, [3]byte{0, 5, 5}, 192, 1087, 63, 362, 63, 192, 13, 13, 14, SHA256, 192),
	ternaryLiteral(EES1499EP1, [3]byte{0, 6, 5}, 256, 1499, 79, 499, 79, 256, 13, 17, 19, SHA256, 256),

	productFormLiteral(EES401EP2, [3]byte{0, 2, 16}, 112, 401, 8, 8, 6, 133, 101, 112, 11, 10, 6, SHA1, 112, false),
	productFormLiteral(EES439EP1, [3]byte{0, 3, 16}, 128, 439, 9, 8, 5, 146, 112, 128, 9, 15, 6, SHA1, 128, true),
	productFormLiteral(EES443EP1, [3]byte{0, 3, 17}, 128, 443, 9, 8, 5, 148, 115, 128, 9, 8, 5, SHA256, 128, false),
	productFormLiteral(EES593EP1, [3]byte{0, 5, 16}, 192, 593, 10, 10, 8, 197, 158, 192, 11, 12, 5, SHA256, 192, true),
	productFormLiteral(EES587EP1, [3]byte{0, 5, 17}, 192, 587, 10, 10, 8, 196, 157, 192, 11, 13, 7, SHA256, 192, false),
	productFormLiteral(EES743EP1, [3]byte{0, 6, 16}, 256, 743, 11, 11, 15, 247, 204, 256, 13, 12, 7, SHA256, 256, false),
}

// defaultSets maps a security level to its recommended parameter set.
var defaultSets = map[int]string{
	112: EES541EP1,
	128: EES613EP1,
	192: EES887EP1,
	256: EES1171EP1,
}

// catalog holds the checked parameters of catalogLiterals, in the same order.
var catalog = func() (params []Parameters) {
	params = make([]Parameters, len(catalogLiterals))
	for i, pl := range catalogLiterals {
		var err error
		if params[i], err = NewParametersFromLiteral(pl); err != nil {
			// Sanity check, this error should not happen.
			panic(fmt.Errorf("invalid catalog entry %s: %w", pl.Name, err))
		}
	}
	return
}()

// Catalog returns all the parameter sets of the catalog, deprecated ones included.
func Catalog() []Parameters {
	return slices.Clone(catalog)
}

// ParametersByName returns the catalog parameter set with the given name.
// The lookup is case-insensitive. It returns an error wrapping
// [ErrUnknownParameters] if no set has this name.
func ParametersByName(name string) (Parameters, error) {
	for _, p := range catalog {
		if strings.EqualFold(p.name, name) {
			return p, nil
		}
	}
	return Parameters{}, fmt.Errorf("%w: no parameter set named %q", ErrUnknownParameters, name)
}

// ParametersByOID returns the catalog parameter set with the given object identifier.
// It returns an error wrapping [ErrUnknownParameters] if no set has this OID.
func ParametersByOID(oid [3]byte) (Parameters, error) {
	for _, p := range catalog {
		if p.oid == oid {
			return p, nil
		}
	}
	return Parameters{}, fmt.Errorf("%w: no parameter set with OID %v", ErrUnknownParameters, oid)
}

// DefaultParameters returns the recommended parameter set for a security
// level of 112, 128, 192 or 256 bits.
func DefaultParameters(security int) (Parameters, error) {
	name, ok := defaultSets[security]
	if !ok {
		return Parameters{}, fmt.Errorf("%w: no default parameter set for %d bits of security", ErrUnknownParameters, security)
	}
	return ParametersByName(name)
}

// ParametersFromPublicKey returns the catalog parameter set matching the
// header of a serialized public key. Some sets share N and Q and cannot be
// told apart from a public key alone, in which case an error wrapping
// [ErrUnknownParameters] is returned.
func ParametersFromPublicKey(data []byte) (Parameters, error) {

	if len(data) < keyHeaderLen {
		return Parameters{}, fmt.Errorf("%w: public key shorter than its header", ErrInvalidKey)
	}

	N := int(binary.LittleEndian.Uint16(data))
	Q := uint64(binary.LittleEndian.Uint16(data[2:]))

	var match []Parameters
	for _, p := range catalog {
		if p.N() == N && p.Q() == Q {
			match = append(match, p)
		}
	}

	switch len(match) {
	case 0:
		return Parameters{}, fmt.Errorf("%w: no parameter set with N=%d and Q=%d", ErrUnknownParameters, N, Q)
	case 1:
		return match[0], nil
	default:
		return Parameters{}, fmt.Errorf("%w: N=%d and Q=%d match %d parameter sets", ErrUnknownParameters, N, Q, len(match))
	}
}

// ParametersFromPrivateKey returns the catalog parameter set matching a
// serialized private key. Its header and the weight of its first factor
// identify the set uniquely.
func ParametersFromPrivateKey(data []byte) (Parameters, error) {

	if len(data) < keyHeaderLen+3 {
		return Parameters{}, fmt.Errorf("%w: private key shorter than its header", ErrInvalidKey)
	}

	N := int(binary.LittleEndian.Uint16(data))
	Q := uint64(binary.LittleEndian.Uint16(data[2:]))
	productForm := data[4]&flagProductForm != 0
	df := int(binary.LittleEndian.Uint16(data[5:]))

	for _, p := range catalog {
		if p.N() == N && p.Q() == Q && p.productForm == productForm && p.df[0] == df {
			return p, nil
		}
	}

	return Parameters{}, fmt.Errorf("%w: no parameter set with N=%d, Q=%d and df=%d", ErrUnknownParameters, N, Q, df)
}
