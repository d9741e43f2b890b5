package ntru

import (
	"crypto/sha1" // #nosec G505 -- SHA-1 is part of the definition of the EES parameter sets.
	"crypto/sha256"
	"fmt"
	"hash"
)

// HashID identifies the hash function used by the index generator and the
// mask generator of a parameter set.
type HashID string

const (
	// SHA1 is used by the EES sets targeting 112 and 128 bits of security.
	SHA1 = HashID("SHA-1")
	// SHA256 is used by the EES sets targeting 192 and 256 bits of security.
	SHA256 = HashID("SHA-256")
)

// New returns a new hash.Hash for the identifier.
func (h HashID) New() (hash.Hash, error) {
	switch h {
	case SHA1:
		return sha1.New(), nil // #nosec G401
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("unknown hash function %q", string(h))
	}
}

// Size returns the digest size in bytes, or 0 for an unknown identifier.
func (h HashID) Size() int {
	switch h {
	case SHA1:
		return sha1.Size
	case SHA256:
		return sha256.Size
	default:
		return 0
	}
}
