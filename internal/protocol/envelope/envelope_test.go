package envelope_test

import (
	"bytes"
	"testing"

	"quantumshield/internal/crypto"
	"quantumshield/internal/domain"
	"quantumshield/internal/protocol/envelope"
)

func makeSigningPair(t *testing.T) (domain.SigPublicKey, domain.SigPrivateKey) {
	t.Helper()
	pub, priv, err := crypto.GenerateSigning()
	if err != nil {
		t.Fatalf("GenerateSigning: %v", err)
	}
	return pub, priv
}

func makeKEMPair(t *testing.T) (domain.KEMPublicKey, domain.KEMPrivateKey) {
	t.Helper()
	pub, priv, err := crypto.GenerateKEM()
	if err != nil {
		t.Fatalf("GenerateKEM: %v", err)
	}
	return pub, priv
}

func TestBuildOpen_RoundTrip(t *testing.T) {
	recipientPub, recipientSec := makeKEMPair(t)
	senderSigPub, senderSigSec := makeSigningPair(t)

	plaintext := []byte("the eagle has landed")
	env, err := envelope.Build(recipientPub, senderSigSec, plaintext)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, err := envelope.Open(env, senderSigPub, recipientSec)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("plaintext mismatch: got %q want %q", got, plaintext)
	}
}

func TestOpen_WrongSignerRejected(t *testing.T) {
	recipientPub, recipientSec := makeKEMPair(t)
	_, senderSigSec := makeSigningPair(t)
	imposterSigPub, _ := makeSigningPair(t)

	env, err := envelope.Build(recipientPub, senderSigSec, []byte("hello"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := envelope.Open(env, imposterSigPub, recipientSec); err != envelope.ErrDecryptionFailed {
		t.Fatalf("want ErrDecryptionFailed for wrong signer, got %v", err)
	}
}

func TestOpen_TamperedCiphertextRejected(t *testing.T) {
	recipientPub, recipientSec := makeKEMPair(t)
	senderSigPub, senderSigSec := makeSigningPair(t)

	env, err := envelope.Build(recipientPub, senderSigSec, []byte("hello"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	env.Ciphertext[0] ^= 0xFF

	if _, err := envelope.Open(env, senderSigPub, recipientSec); err != envelope.ErrDecryptionFailed {
		t.Fatalf("want ErrDecryptionFailed for tampered ciphertext, got %v", err)
	}
}

func TestOpen_WrongRecipientRejected(t *testing.T) {
	recipientPub, _ := makeKEMPair(t)
	_, otherSec := makeKEMPair(t)
	senderSigPub, senderSigSec := makeSigningPair(t)

	env, err := envelope.Build(recipientPub, senderSigSec, []byte("hello"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := envelope.Open(env, senderSigPub, otherSec); err != envelope.ErrDecryptionFailed {
		t.Fatalf("want ErrDecryptionFailed for wrong recipient, got %v", err)
	}
}

func TestBuildOpenFile_RoundTrip(t *testing.T) {
	recipientPub, recipientSec := makeKEMPair(t)
	senderSigPub, senderSigSec := makeSigningPair(t)

	data := []byte("file contents go here")
	meta := domain.FileMetadata{FileName: "notes.txt", FileSize: int64(len(data)), FileType: "text/plain"}

	fenv, err := envelope.BuildFile(recipientPub, senderSigSec, data, meta)
	if err != nil {
		t.Fatalf("BuildFile: %v", err)
	}
	if fenv.Metadata != meta {
		t.Fatalf("metadata not carried through unchanged")
	}

	got, err := envelope.OpenFile(fenv, senderSigPub, recipientSec)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("file contents mismatch")
	}
}

func TestSign_IsRandomizedButVerifiable(t *testing.T) {
	pub, priv := makeSigningPair(t)
	msg := []byte("same message signed twice")

	sig1, err := crypto.Sign(priv, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sig2, err := crypto.Sign(priv, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if bytes.Equal(sig1, sig2) {
		t.Fatal("expected two signatures over the same message to differ")
	}
	if !crypto.Verify(pub, msg, sig1) || !crypto.Verify(pub, msg, sig2) {
		t.Fatal("both signatures should verify")
	}
}
