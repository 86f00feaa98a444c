package domain

import (
	interfaces "quantumshield/internal/domain/interfaces"
	types "quantumshield/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID = types.UserID
	Username = types.Username
	Fingerprint = types.Fingerprint
	MessageID = types.MessageID
	FileID = types.FileID

	KEMPublicKey = types.KEMPublicKey
	KEMPrivateKey = types.KEMPrivateKey
	KEMCiphertext = types.KEMCiphertext
	SharedSecret = types.SharedSecret
	SigPublicKey = types.SigPublicKey
	SigPrivateKey = types.SigPrivateKey
	Signature = types.Signature

	Identity = types.Identity
	User = types.User

	Envelope = types.Envelope
	FileMetadata = types.FileMetadata
	FileEnvelope = types.FileEnvelope
	DecryptedMessage = types.DecryptedMessage
	DecryptedFile = types.DecryptedFile
	DecryptedMessageWire = types.DecryptedMessageWire
	FileTransferWire = types.FileTransferWire

	RequestStatus = types.RequestStatus
	Friendship = types.Friendship
	FriendRequestID = types.FriendRequestID
	FriendRequest = types.FriendRequest

	SessionState = types.SessionState
	KeystoreRecord = types.KeystoreRecord
	PublicKeyRecord = types.PublicKeyRecord
	QueuedEnvelope = types.QueuedEnvelope
)

const (
	RequestPending = types.RequestPending
	RequestAccepted = types.RequestAccepted
	RequestRejected = types.RequestRejected
)

// Pair returns the friendship's canonical (min, max) tuple.
func Pair(u, v UserID) (a, b UserID) { return types.Pair(u, v) }

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KeystoreService = interfaces.KeystoreService
	FriendshipService = interfaces.FriendshipService
	TokenVerifier = interfaces.TokenVerifier
	Claims = interfaces.Claims

	KeystoreStore = interfaces.KeystoreStore
	UserStore = interfaces.UserStore
	FriendshipStore = interfaces.FriendshipStore
	OfflineQueueStore = interfaces.OfflineQueueStore

	RelayConn = interfaces.RelayConn
	InboundEvent = interfaces.InboundEvent
	MessageAck = interfaces.MessageAck
	FileAck = interfaces.FileAck
	RelayError = interfaces.RelayError
)
