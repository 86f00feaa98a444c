// Package envelope builds and opens the per-message cryptographic bundle:
// an ML-KEM-1024 encapsulation, an AES-256-GCM ciphertext, and a Falcon-1024
// signature over a canonical payload.
package envelope

import (
	"encoding/base64"
	"errors"

	"quantumshield/internal/crypto"
	"quantumshield/internal/domain"
)

// ErrDecryptionFailed is the single generic failure surfaced to callers on
// the receive path, regardless of whether verification, decapsulation, or
// AEAD authentication is what actually failed.
var ErrDecryptionFailed = errors.New("decryption failed")

// canonicalPayload builds the fixed-order, whitespace-free JSON object that
// is signed and verified: {"c":...,"i":...,"t":...}. It is built by hand
// rather than through encoding/json so the key order and absence of
// whitespace can never drift across Go versions or refactors.
func canonicalPayload(ciphertext, iv, tag []byte) []byte {
	b64 := base64.StdEncoding.EncodeToString

	var buf []byte
	buf = append(buf, `{"c":"`...)
	buf = append(buf, b64(ciphertext)...)
	buf = append(buf, `","i":"`...)
	buf = append(buf, b64(iv)...)
	buf = append(buf, `","t":"`...)
	buf = append(buf, b64(tag)...)
	buf = append(buf, `"}`...)
	return buf
}

// Build encapsulates a fresh shared secret to recipientKEMPub, encrypts
// plaintext under it with AES-256-GCM, and signs the canonical payload with
// senderSigSec.
func Build(recipientKEMPub domain.KEMPublicKey, senderSigSec domain.SigPrivateKey, plaintext []byte) (domain.Envelope, error) {
	ct, ss, err := crypto.Encapsulate(recipientKEMPub)
	if err != nil {
		return domain.Envelope{}, err
	}
	defer crypto.Wipe(ss)

	iv, sealed, err := crypto.Seal(ss, plaintext, nil)
	if err != nil {
		return domain.Envelope{}, err
	}
	ciphertext, tag, err := crypto.SplitTag(sealed)
	if err != nil {
		return domain.Envelope{}, err
	}

	sig, err := crypto.Sign(senderSigSec, canonicalPayload(ciphertext, iv, tag))
	if err != nil {
		return domain.Envelope{}, err
	}

	return domain.Envelope{
		KEMCiphertext: ct,
		IV:            iv,
		Ciphertext:    ciphertext,
		Tag:           tag,
		Signature:     sig,
	}, nil
}

// Open verifies env's signature under senderSigPub and, only if that
// succeeds, decapsulates and decrypts the payload with recipientKEMSec.
// Every failure mode — bad signature, decapsulation failure, AEAD tag
// mismatch — collapses to ErrDecryptionFailed.
func Open(env domain.Envelope, senderSigPub domain.SigPublicKey, recipientKEMSec domain.KEMPrivateKey) ([]byte, error) {
	payload := canonicalPayload(env.Ciphertext, env.IV, env.Tag)
	if !crypto.Verify(senderSigPub, payload, env.Signature) {
		return nil, ErrDecryptionFailed
	}

	ss, err := crypto.Decapsulate(recipientKEMSec, env.KEMCiphertext)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	defer crypto.Wipe(ss)

	sealed := crypto.JoinTag(env.Ciphertext, env.Tag)
	plaintext, err := crypto.Open(ss, env.IV, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// VerifySignature reconstructs the canonical payload from env's ciphertext,
// iv, and tag and reports whether sig verifies under senderSigPub. It never
// looks at env.KEMCiphertext and never decapsulates; callers that only need
// to authenticate a sender (the relay, in particular) use this instead of
// Open so they never touch a recipient secret key.
func VerifySignature(env domain.Envelope, senderSigPub domain.SigPublicKey) bool {
	payload := canonicalPayload(env.Ciphertext, env.IV, env.Tag)
	return crypto.Verify(senderSigPub, payload, env.Signature)
}

// BuildFile is the file-transfer counterpart of Build: plaintext is
// base64(file bytes) and metadata rides alongside the bundle unauthenticated.
func BuildFile(recipientKEMPub domain.KEMPublicKey, senderSigSec domain.SigPrivateKey, fileBytes []byte, meta domain.FileMetadata) (domain.FileEnvelope, error) {
	encoded := []byte(base64.StdEncoding.EncodeToString(fileBytes))
	env, err := Build(recipientKEMPub, senderSigSec, encoded)
	if err != nil {
		return domain.FileEnvelope{}, err
	}
	return domain.FileEnvelope{Envelope: env, Metadata: meta}, nil
}

// OpenFile is the file-transfer counterpart of Open.
func OpenFile(fenv domain.FileEnvelope, senderSigPub domain.SigPublicKey, recipientKEMSec domain.KEMPrivateKey) ([]byte, error) {
	encoded, err := Open(fenv.Envelope, senderSigPub, recipientKEMSec)
	if err != nil {
		return nil, err
	}
	fileBytes, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return fileBytes, nil
}
