// Package crypto exposes the post-quantum primitives used throughout
// quantumshield.
//
// Contents
//
// - ML-KEM-1024 key generation, encapsulation and decapsulation (GenerateKEM,
// Encapsulate, Decapsulate)
// - Falcon-1024 key generation, signing and verification (GenerateSigning,
// Sign, Verify)
// - AES-256-GCM sealing and opening for the bulk ciphertext (Seal, Open)
// - PBKDF2-HMAC-SHA256 key-encryption-key derivation for the local keystore
// (DeriveKEK)
// - Best-effort memory wiping for sensitive byte slices (Wipe)
// - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Callers should treat returned secrets as sensitive and rely on Wipe when
// practical to reduce their lifetime in memory.
package crypto
