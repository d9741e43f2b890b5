package ntru

import (
	"errors"
)

var (
	// ErrInvalidParameters is returned when a ParametersLiteral does not
	// describe a usable parameter set.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrUnknownParameters is returned when a name, OID or key blob does
	// not match any parameter set of the catalog.
	ErrUnknownParameters = errors.New("unknown parameter set")

	// ErrKeyGenerationFailed is returned when no invertible polynomial was
	// sampled within the attempt budget of the KeyGenerator.
	ErrKeyGenerationFailed = errors.New("key generation failed")

	// ErrMessageTooLong is returned when a message is longer than the
	// maximum message length of the parameter set.
	ErrMessageTooLong = errors.New("message too long")

	// ErrEncodingFailed is returned when no masked message satisfying the
	// dm0 constraint was found within the attempt budget of the Encryptor.
	ErrEncodingFailed = errors.New("message encoding failed")

	// ErrDecryptionFailed is returned when a ciphertext does not decrypt to
	// a well-formed message: it was corrupted, it was produced for another
	// key, or the intrinsic decryption failure of the scheme occurred.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKey is returned when a serialized key cannot be decoded,
	// or when a required key is missing.
	ErrInvalidKey = errors.New("invalid key")
)
