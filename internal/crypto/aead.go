package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// NonceSize is the AES-GCM IV length used throughout the envelope codec and
// keystore.
const NonceSize = 12

// Seal encrypts plaintext under key with AES-256-GCM, returning a fresh IV
// and the ciphertext with its authentication tag appended.
func Seal(key, plaintext, aad []byte) (iv, sealed []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("new aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("new gcm: %w", err)
	}
	iv = make([]byte, NonceSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("generate iv: %w", err)
	}
	sealed = gcm.Seal(nil, iv, plaintext, aad)
	return iv, sealed, nil
}

// Open decrypts sealed (ciphertext with trailing GCM tag) produced by Seal.
func Open(key, iv, sealed, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return gcm.Open(nil, iv, sealed, aad)
}

// SplitTag separates a GCM-sealed blob into its raw ciphertext and trailing
// tag, matching the envelope wire layout where Ciphertext and Tag travel as
// distinct fields.
func SplitTag(sealed []byte) (ciphertext, tag []byte, err error) {
	const tagLen = 16
	if len(sealed) < tagLen {
		return nil, nil, fmt.Errorf("sealed blob shorter than gcm tag: %d bytes", len(sealed))
	}
	split := len(sealed) - tagLen
	return sealed[:split], sealed[split:], nil
}

// JoinTag reassembles ciphertext and tag into the form AES-GCM's Open expects.
func JoinTag(ciphertext, tag []byte) []byte {
	out := make([]byte, 0, len(ciphertext)+len(tag))
	out = append(out, ciphertext...)
	out = append(out, tag...)
	return out
}
