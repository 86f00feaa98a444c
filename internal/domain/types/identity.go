package types

// Identity holds your long-term ML-KEM-1024 and signature key pairs.
//
// This is the plaintext in-memory form. At rest the secret halves only ever
// exist inside a KeystoreRecord's AES-256-GCM ciphertext; the public halves
// are kept in a plaintext PublicKeyRecord (see internal/services/keystore).
type Identity struct {
	KEMPub KEMPublicKey
	KEMSec KEMPrivateKey
	SigPub SigPublicKey
	SigSec SigPrivateKey
}

// User is the core's read-only projection of a registered account.
//
// The external auth/registration system owns the durable record; the core
// only reads it, apart from store.UserFileStore.Register, which seeds the
// local projection for tests and `qsctl register`. (user_id, kem_public_key,
// sig_public_key) is immutable post-registration.
type User struct {
	UserID UserID
	Username Username
	KEMPub KEMPublicKey
	SigPub SigPublicKey
}
