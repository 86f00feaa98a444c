// Package store provides file-based persistence for quantumshield's core
// data.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files typically live under the user's configured
// home directory.
//
// The package includes stores for:
// - The local keystore's encrypted secrets and cached public keys (KeystoreFileStore)
// - The registered-user projection (UserFileStore)
// - Friendships and friend requests (FriendshipFileStore)
// - The optional client-side offline delivery queue (QueueFileStore)
package store
