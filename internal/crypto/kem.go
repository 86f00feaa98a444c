package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"

	"quantumshield/internal/domain"
)

// GenerateKEM returns a fresh ML-KEM-1024 encapsulation key pair.
func GenerateKEM() (pub domain.KEMPublicKey, priv domain.KEMPrivateKey, err error) {
	pk, sk, err := mlkem1024.GenerateKeyPair(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate kem keypair: %w", err)
	}

	pubBytes, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("marshal kem public key: %w", err)
	}
	privBytes, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("marshal kem private key: %w", err)
	}
	return domain.KEMPublicKey(pubBytes), domain.KEMPrivateKey(privBytes), nil
}

// Encapsulate derives a fresh shared secret against pub, returning the
// ciphertext to send alongside the encrypted payload.
func Encapsulate(pub domain.KEMPublicKey) (ct domain.KEMCiphertext, ss domain.SharedSecret, err error) {
	pk := new(mlkem1024.PublicKey)
	if err := pk.Unpack(pub); err != nil {
		return nil, nil, fmt.Errorf("unpack kem public key: %w", err)
	}

	ctBytes := make([]byte, mlkem1024.CiphertextSize)
	ssBytes := make([]byte, mlkem1024.SharedKeySize)
	seed := make([]byte, mlkem1024.EncapsulationSeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, nil, fmt.Errorf("generate encapsulation seed: %w", err)
	}

	pk.EncapsulateTo(ctBytes, ssBytes, seed)
	return domain.KEMCiphertext(ctBytes), domain.SharedSecret(ssBytes), nil
}

// Decapsulate recovers the shared secret encapsulated in ct using priv.
func Decapsulate(priv domain.KEMPrivateKey, ct domain.KEMCiphertext) (domain.SharedSecret, error) {
	sk := new(mlkem1024.PrivateKey)
	if err := sk.Unpack(priv); err != nil {
		return nil, fmt.Errorf("unpack kem private key: %w", err)
	}
	if len(ct) != mlkem1024.CiphertextSize {
		return nil, fmt.Errorf("kem ciphertext: want %d bytes, got %d", mlkem1024.CiphertextSize, len(ct))
	}

	ss := make([]byte, mlkem1024.SharedKeySize)
	sk.DecapsulateTo(ss, ct)
	return domain.SharedSecret(ss), nil
}
