package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// KEKIterations is the PBKDF2 iteration count used to derive a keystore
// key-encryption-key from a password.
const KEKIterations = 600_000

// SaltSize is the random salt length generated for a new keystore record.
const SaltSize = 16

// KEKSize is the derived key-encryption-key length, suitable for AES-256-GCM.
const KEKSize = 32

// DeriveKEK derives the AES-256 key-encryption-key that wraps a user's
// keystore secrets, using PBKDF2-HMAC-SHA256 over the password and salt.
func DeriveKEK(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, KEKIterations, KEKSize, sha256.New)
}
