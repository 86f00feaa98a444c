package types

// SessionState is the client keystore's process-local unlocked state.
// The struct itself is not written to disk, but the keystore service
// mirrors its username, KEK and a timestamp into a session file so a new
// process can resume an unexpired session.
type SessionState struct {
	Username Username
	KEK []byte // AES-256 key, 32 bytes
	LastActivityAt int64 // unix seconds
}

// KeystoreRecord is the on-disk, per-user persistent record.
// Ciphertext is the AES-256-GCM ciphertext of the user's
// {kem_secret, sig_secret}; Salt and the KDF parameters it was derived
// with are stored alongside so the KEK can be re-derived on unlock.
type KeystoreRecord struct {
	Username Username
	Salt []byte
	IV []byte
	Ciphertext []byte
	KDFName string
	Iterations int
}

// PublicKeyRecord is the plaintext, unsigned record of a user's own or a
// peer's public keys, cached locally for signing/display.
type PublicKeyRecord struct {
	Username Username
	KEMPub KEMPublicKey
	SigPub SigPublicKey
}

// QueuedEnvelope is one row of the optional client-side offline queue.
// It stores only already-encrypted envelopes.
type QueuedEnvelope struct {
	RecipientID UserID
	Envelope Envelope
	QueuedAt int64
}
