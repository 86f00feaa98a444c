package interfaces

import domaintypes "quantumshield/internal/domain/types"

// KeystoreStore persists the encrypted-at-rest secret key blob, salt, and
// plaintext public keys for a single local user.
type KeystoreStore interface {
	SaveRecord(rec domaintypes.KeystoreRecord) error
	LoadRecord(username domaintypes.Username) (domaintypes.KeystoreRecord, bool, error)

	SavePublicKeys(pub domaintypes.PublicKeyRecord) error
	LoadPublicKeys(username domaintypes.Username) (domaintypes.PublicKeyRecord, bool, error)
}

// UserStore is the core's read-only projection over the external user
// store.
type UserStore interface {
	LookupByID(id domaintypes.UserID) (domaintypes.User, bool, error)
	LookupByUsername(username domaintypes.Username) (domaintypes.User, bool, error)
}

// FriendshipStore persists Friendship and FriendRequest rows and performs
// the accept transition atomically.
type FriendshipStore interface {
	Exists(u, v domaintypes.UserID) (bool, error)
	Create(f domaintypes.Friendship) error
	Remove(u, v domaintypes.UserID) (bool, error)
	ListForUser(u domaintypes.UserID) ([]domaintypes.Friendship, error)

	CreateRequest(req domaintypes.FriendRequest) error
	LoadRequest(id domaintypes.FriendRequestID) (domaintypes.FriendRequest, bool, error)
	FindPending(sender, receiver domaintypes.UserID) (domaintypes.FriendRequest, bool, error)
	ListPendingForReceiver(receiver domaintypes.UserID) ([]domaintypes.FriendRequest, error)

	// AcceptRequest atomically transitions req to accepted and creates the
	// corresponding Friendship row, failing cleanly if either the request is
	// no longer pending or the friendship already exists.
	AcceptRequest(id domaintypes.FriendRequestID, respondedAt int64) (domaintypes.Friendship, error)
	// RejectRequest transitions req to rejected.
	RejectRequest(id domaintypes.FriendRequestID, respondedAt int64) error
}

// OfflineQueueStore is the optional client-side convenience queue (C3').
// The relay never reads it.
type OfflineQueueStore interface {
	Enqueue(entry domaintypes.QueuedEnvelope) error
	Drain(recipient domaintypes.UserID) ([]domaintypes.QueuedEnvelope, error)
	// Sweep deletes entries older than ttlSeconds and returns how many were removed.
	Sweep(nowUnix int64, ttlSeconds int64) (int, error)
}
