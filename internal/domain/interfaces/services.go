package interfaces

import (
	"context"

	domaintypes "quantumshield/internal/domain/types"
)

// KeystoreService implements the client-side keystore lifecycle.
type KeystoreService interface {
	Initialize(username domaintypes.Username, password string, id domaintypes.Identity) error
	Unlock(username domaintypes.Username, password string) error
	GetSecretKeys(username domaintypes.Username) (domaintypes.Identity, error)
	GetPublicKeys(username domaintypes.Username) (domaintypes.PublicKeyRecord, error)
	ClearSession(username domaintypes.Username)
}

// FriendshipService implements the friendship state machine.
type FriendshipService interface {
	Create(ctx context.Context, sender, receiver domaintypes.UserID) (domaintypes.FriendRequest, error)
	Accept(ctx context.Context, caller domaintypes.UserID, requestID domaintypes.FriendRequestID) (domaintypes.Friendship, error)
	Reject(ctx context.Context, caller domaintypes.UserID, requestID domaintypes.FriendRequestID) error
	Remove(ctx context.Context, caller, other domaintypes.UserID) error
	ListPending(ctx context.Context, receiver domaintypes.UserID) ([]domaintypes.FriendRequest, error)
	ListFriends(ctx context.Context, user domaintypes.UserID) ([]domaintypes.Friendship, error)
	AreFriends(ctx context.Context, u, v domaintypes.UserID) (bool, error)
}

// TokenVerifier validates the opaque bearer credential issued at login.
type TokenVerifier interface {
	Verify(token string) (Claims, error)
}

// Claims is the decoded, validated content of an auth token.
type Claims struct {
	UserID domaintypes.UserID
	Username domaintypes.Username
	ExpUnix int64
}
