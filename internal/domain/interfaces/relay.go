package interfaces

import (
	"context"

	domaintypes "quantumshield/internal/domain/types"
)

// RelayConn is one authenticated, bidirectional connection to the relay.
// Implementations deliver inbound events on Events()
// until the connection is closed or reading from it fails.
type RelayConn interface {
	SendMessage(ctx context.Context, senderID, receiverID domaintypes.UserID, env domaintypes.Envelope) error
	SendFile(ctx context.Context, senderID, receiverID domaintypes.UserID, env domaintypes.FileEnvelope) error
	Events() <-chan InboundEvent
	Close() error
}

// InboundEvent is a single server-to-client event.
type InboundEvent struct {
	Kind string // "receive_message" | "message_sent" | "message_error" | "receive_file" | "file_delivered" | "file_error" | "friend_request_received"
	Message *domaintypes.DecryptedMessageWire
	Ack *MessageAck
	Err *RelayError
	File *domaintypes.FileTransferWire
	FileAck *FileAck
	FriendReq *domaintypes.FriendRequest
}

// MessageAck mirrors the S->C "message_sent" payload.
type MessageAck struct {
	MessageID domaintypes.MessageID
}

// FileAck mirrors the S->C "file_delivered" payload.
type FileAck struct {
	FileID domaintypes.FileID
}

// RelayError mirrors the S->C "message_error"/"file_error" payload; Code is
// one of the error-code strings the relay enumerates.
type RelayError struct {
	Code string
}
