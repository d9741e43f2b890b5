// Package ntru implements the NTRUEncrypt public-key cryptosystem over the ring Z_Q[X]/(X^N - 1), with the
// SVES message encoding of IEEE 1363.1 and the EES parameter sets of IEEE 1363.1 and X9.98. It provides key generation,
// encryption and decryption of messages of bounded length, and the serialization of keys and ciphertexts.
package ntru

import (
	"fmt"

	"github.com/tuneinsight/ntru/utils/sampling"
)

// GenerateKeyPair generates a new key pair for params, see [KeyGenerator.GenKeyPairNew].
// If prng is nil, the system entropy source is used.
func GenerateKeyPair(params Parameters, prng sampling.PRNG) (*KeyPair, error) {
	return NewKeyGenerator(params, prng).GenKeyPairNew()
}

// Encrypt encrypts msg under pk and returns the serialized ciphertext,
// see [Encryptor.Encrypt]. If prng is nil, the system entropy source is used.
func Encrypt(pk *PublicKey, msg []byte, prng sampling.PRNG) ([]byte, error) {

	if pk == nil {
		return nil, fmt.Errorf("cannot Encrypt: %w: nil public key", ErrInvalidKey)
	}

	ct, err := NewEncryptor(pk.params, pk, prng).EncryptNew(msg)
	if err != nil {
		return nil, err
	}

	return ct.MarshalBinary()
}

// Decrypt decrypts a serialized ciphertext with the key pair kp, see
// [Decryptor.DecryptNew]. Ciphertexts of the wrong size and ciphertexts
// with non-reduced coefficients return an error wrapping [ErrDecryptionFailed].
// A key pair missing one of its keys returns an error wrapping [ErrInvalidKey].
func Decrypt(kp *KeyPair, data []byte) ([]byte, error) {

	if kp == nil || kp.Private == nil || kp.Public == nil {
		return nil, fmt.Errorf("cannot Decrypt: %w: the key pair must hold both keys", ErrInvalidKey)
	}

	params := kp.Private.params

	ct := NewCiphertext(params)
	if err := ct.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return NewDecryptor(params, kp.Private, kp.Public).DecryptNew(ct)
}
