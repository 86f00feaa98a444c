package types

// KEMPublicKey is an ML-KEM-1024 encapsulation public key (1568 bytes).
type KEMPublicKey []byte

// KEMPrivateKey is an ML-KEM-1024 decapsulation secret key.
type KEMPrivateKey []byte

// KEMCiphertext is an ML-KEM-1024 encapsulated ciphertext (1568 bytes).
type KEMCiphertext []byte

// SharedSecret is the 32-byte secret produced by encapsulation/decapsulation.
type SharedSecret []byte

// SigPublicKey is a post-quantum signature verification key.
type SigPublicKey []byte

// SigPrivateKey is a post-quantum signature signing key.
type SigPrivateKey []byte

// Signature is a post-quantum signature over a canonical payload.
type Signature []byte
