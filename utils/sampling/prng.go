package sampling

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// ErrEntropyUnavailable is returned when a random source cannot deliver the
// requested bytes, either because the underlying generator failed or because
// it was given an invalid seed.
var ErrEntropyUnavailable = errors.New("entropy unavailable")

// PRNG is an interface for secure generation of random bytes
type PRNG interface {
	io.Reader
}

// ThreadSafePRNG reads from the system entropy source.
type ThreadSafePRNG struct {
}

// NewPRNG returns a new PRNG that is thread-safe
func NewPRNG() (*ThreadSafePRNG, error) {
	return &ThreadSafePRNG{}, nil
}

// Read fills sum with bytes from the system entropy source.
func (prng *ThreadSafePRNG) Read(sum []byte) (n int, err error) {
	if n, err = rand.Read(sum); err != nil {
		return n, fmt.Errorf("%w: %w", ErrEntropyUnavailable, err)
	}
	return
}

// KeyedPRNG is a structure storing the parameters used to securely and *deterministically* generate
// sequences of random bytes using the hash function blake2b. Two KeyedPRNG built from the same key
// produce the same stream, which makes key pairs and ciphertexts reproducible.
// WARNING: KeyedPRNG should NOT be called by multiple threads. It does not make sense to do so as the resulting
// sequence will not be deterministic for a given key. For a PRNG seeded by the system use [ThreadSafePRNG].
type KeyedPRNG struct {
	mutex sync.Mutex
	key   []byte
	xof   blake2b.XOF
}

// NewKeyedPRNG creates a new instance of KeyedPRNG.
// The key must be non-empty and at most 64 bytes long.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {

	if len(key) == 0 {
		return nil, fmt.Errorf("cannot NewKeyedPRNG: %w: empty seed", ErrEntropyUnavailable)
	}

	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	if err != nil {
		return nil, fmt.Errorf("cannot NewKeyedPRNG: %w: %w", ErrEntropyUnavailable, err)
	}

	prng := &KeyedPRNG{xof: xof}
	prng.key = make([]byte, len(key))
	copy(prng.key, key)

	return prng, nil
}

// Key returns a copy of the key used to seed the PRNG.
// This value can be used with `NewKeyedPRNG` to instantiate
// a new PRNG that will produce the same stream of bytes.
func (prng *KeyedPRNG) Key() (key []byte) {
	key = make([]byte, len(prng.key))
	copy(key, prng.key)
	return
}

// Read reads bytes from the KeyedPRNG on sum.
// WARNING: Read() should NOT be called concurrently by multiple threads. If that occurs, the generated sequence will not be deterministic.
func (prng *KeyedPRNG) Read(sum []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	if n, err = prng.xof.Read(sum); err != nil {
		return n, fmt.Errorf("%w: %w", ErrEntropyUnavailable, err)
	}
	return
}

// Reset resets the PRNG to its initial state.
func (prng *KeyedPRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	prng.xof.Reset()
}

// XOFPRNG is a deterministic PRNG reading the extendable output of blake3
// keyed by an arbitrary-length seed. It follows the same contract as [KeyedPRNG]
// and is mostly useful to derive test vectors from human-readable seeds.
type XOFPRNG struct {
	mutex  sync.Mutex
	seed   []byte
	digest *blake3.Digest
}

// NewXOFPRNG creates a new XOFPRNG from a non-empty seed.
func NewXOFPRNG(seed []byte) (*XOFPRNG, error) {

	if len(seed) == 0 {
		return nil, fmt.Errorf("cannot NewXOFPRNG: %w: empty seed", ErrEntropyUnavailable)
	}

	prng := &XOFPRNG{seed: make([]byte, len(seed))}
	copy(prng.seed, seed)
	prng.reset()

	return prng, nil
}

func (prng *XOFPRNG) reset() {
	hasher := blake3.New()
	// blake3.Hasher.Write never returns an error.
	_, _ = hasher.Write(prng.seed)
	prng.digest = hasher.Digest()
}

// Seed returns a copy of the seed of the PRNG.
func (prng *XOFPRNG) Seed() (seed []byte) {
	seed = make([]byte, len(prng.seed))
	copy(seed, prng.seed)
	return
}

// Read reads bytes from the XOFPRNG on sum.
func (prng *XOFPRNG) Read(sum []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	if n, err = prng.digest.Read(sum); err != nil {
		return n, fmt.Errorf("%w: %w", ErrEntropyUnavailable, err)
	}
	return
}

// Reset rewinds the PRNG to the start of its stream.
func (prng *XOFPRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	prng.reset()
}
