package crypto

import (
	"crypto/rand"
	"fmt"

	fndsa "github.com/benjivesterby/go-fn-dsa"

	"quantumshield/internal/domain"
)

// fndsaLogN selects the FN-DSA (Falcon) parameter set. Degree = 2^logn;
// logn=10 is degree 1024, i.e. Falcon-1024.
const fndsaLogN = 10

// fndsaRawMessage is the fn-dsa pre-hash identifier meaning "the message
// bytes are signed as-is", since the canonical envelope payload is already
// a small, fixed-shape structure with nothing upstream to pre-hash.
const fndsaRawMessage = 0

// FalconPubKeySize and FalconSignatureMaxSize are Falcon-1024's documented
// wire sizes: a fixed-size verifying key and a signature bounded above
// (Falcon signatures are not fixed-length, but never exceed this bound).
const (
	FalconPubKeySize       = 1793
	FalconSignatureMaxSize = 1280
)

// GenerateSigning returns a fresh Falcon-1024 (FN-DSA, logn=10) signing key
// pair.
func GenerateSigning() (pub domain.SigPublicKey, priv domain.SigPrivateKey, err error) {
	sk, vk, err := fndsa.KeyGen(fndsaLogN, rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate fn-dsa keypair: %w", err)
	}
	return domain.SigPublicKey(vk), domain.SigPrivateKey(sk), nil
}

// Sign signs msg with priv and returns a detached Falcon-1024 signature.
// The message is signed raw (no separate pre-hash step); the empty context
// string means no domain-separation beyond what the envelope format already
// provides.
func Sign(priv domain.SigPrivateKey, msg []byte) (domain.Signature, error) {
	sig, err := fndsa.Sign(rand.Reader, []byte(priv), fndsaLogN, nil, fndsaRawMessage, msg)
	if err != nil {
		return nil, fmt.Errorf("fn-dsa sign: %w", err)
	}
	return domain.Signature(sig), nil
}

// Verify reports whether sig is a valid Falcon-1024 signature over msg
// under pub.
func Verify(pub domain.SigPublicKey, msg []byte, sig domain.Signature) bool {
	return fndsa.Verify([]byte(pub), fndsaLogN, nil, fndsaRawMessage, msg, []byte(sig))
}
