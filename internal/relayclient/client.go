// Package relayclient implements domain.RelayConn: a persistent,
// authenticated connection to a relayserver.Server. It mirrors the
// transport half of internal/relayserver — newline-terminated JSON frames
// over a TCP socket, a dedicated read loop feeding a buffered channel of
// InboundEvent — the client-side counterpart of zkc's session read loop.
package relayclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"

	"quantumshield/internal/domain"
	"quantumshield/internal/domain/interfaces"
)

// Conn is a dialed, handshaken connection to the relay.
type Conn struct {
	nc     net.Conn
	enc    *json.Encoder
	dec    *json.Decoder
	events chan interfaces.InboundEvent
	closed chan struct{}
}

const eventBacklog = 64

// Dial connects to addr, writes the {token, user_id} handshake, and starts
// the background read loop. It returns an error only if dialing or writing
// the handshake fails; it does not wait for the relay's verdict. A rejected
// handshake shows up as a message_error event ("authentication error") on
// Events(), after which the channel is closed.
func Dial(ctx context.Context, addr string, userID domain.UserID, token string) (*Conn, error) {
	d := net.Dialer{}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}

	c := &Conn{
		nc:     nc,
		enc:    json.NewEncoder(nc),
		dec:    json.NewDecoder(nc),
		events: make(chan interfaces.InboundEvent, eventBacklog),
		closed: make(chan struct{}),
	}

	if err := c.enc.Encode(wireFrame{Token: token, UserID: int64(userID)}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}

	go c.readLoop()
	return c, nil
}

// wireFrame mirrors relayserver's flat message shape closely enough to
// round-trip every event this client sends or receives.
type wireFrame struct {
	Type string `json:"type"`

	Token  string `json:"token,omitempty"`
	UserID int64  `json:"user_id,omitempty"`

	SenderID   int64  `json:"sender_id,omitempty"`
	ReceiverID int64  `json:"receiver_id,omitempty"`
	KEMCipher  string `json:"kem_ciphertext,omitempty"`
	IV         string `json:"iv,omitempty"`
	Ciphertext string `json:"ciphertext,omitempty"`
	AuthTag    string `json:"auth_tag,omitempty"`
	Signature  string `json:"signature,omitempty"`
	MessageID  string `json:"id,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`

	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	FileType string `json:"file_type,omitempty"`
	FileData string `json:"file_data,omitempty"`
	FileID   string `json:"file_id,omitempty"`

	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`

	RequestID string `json:"request_id,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func unb64(s string) []byte {
	b, _ := base64.StdEncoding.DecodeString(s)
	return b
}

// SendMessage transmits a send_message event. The server's reply (ack or
// error) arrives asynchronously on Events().
func (c *Conn) SendMessage(ctx context.Context, senderID, receiverID domain.UserID, env domain.Envelope) error {
	return c.enc.Encode(wireFrame{
		Type:       "send_message",
		SenderID:   int64(senderID),
		ReceiverID: int64(receiverID),
		KEMCipher:  b64(env.KEMCiphertext),
		IV:         b64(env.IV),
		Ciphertext: b64(env.Ciphertext),
		AuthTag:    b64(env.Tag),
		Signature:  b64(env.Signature),
	})
}

// SendFile transmits a send_file event. file_data carries the envelope's
// AEAD ciphertext directly; there is no separate "ciphertext" key for file
// transfers, unlike send_message.
func (c *Conn) SendFile(ctx context.Context, senderID, receiverID domain.UserID, env domain.FileEnvelope) error {
	return c.enc.Encode(wireFrame{
		Type:       "send_file",
		SenderID:   int64(senderID),
		ReceiverID: int64(receiverID),
		FileName:   env.Metadata.FileName,
		FileSize:   env.Metadata.FileSize,
		FileType:   env.Metadata.FileType,
		FileData:   b64(env.Ciphertext),
		KEMCipher:  b64(env.KEMCiphertext),
		IV:         b64(env.IV),
		AuthTag:    b64(env.Tag),
		Signature:  b64(env.Signature),
	})
}

// Events returns the channel of server-to-client notifications.
func (c *Conn) Events() <-chan interfaces.InboundEvent { return c.events }

// Close shuts down the connection and its read loop.
func (c *Conn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	return c.nc.Close()
}

func (c *Conn) readLoop() {
	defer close(c.events)
	for {
		var f wireFrame
		if err := c.dec.Decode(&f); err != nil {
			return
		}
		ev, ok := translate(f)
		if !ok {
			continue
		}
		select {
		case c.events <- ev:
		case <-c.closed:
			return
		}
	}
}

func translate(f wireFrame) (interfaces.InboundEvent, bool) {
	switch f.Type {
	case "receive_message":
		return interfaces.InboundEvent{
			Kind: "receive_message",
			Message: &domain.DecryptedMessageWire{
				MessageID: domain.MessageID(f.MessageID),
				From:      domain.UserID(f.SenderID),
				To:        domain.UserID(f.ReceiverID),
				Timestamp: f.Timestamp,
				Envelope: domain.Envelope{
					KEMCiphertext: domain.KEMCiphertext(unb64(f.KEMCipher)),
					IV:            unb64(f.IV),
					Ciphertext:    unb64(f.Ciphertext),
					Tag:           unb64(f.AuthTag),
					Signature:     domain.Signature(unb64(f.Signature)),
				},
			},
		}, true
	case "message_sent":
		return interfaces.InboundEvent{Kind: "message_sent", Ack: &interfaces.MessageAck{MessageID: domain.MessageID(f.MessageID)}}, true
	case "message_error":
		return interfaces.InboundEvent{Kind: "message_error", Err: &interfaces.RelayError{Code: f.Error}}, true
	case "receive_file":
		return interfaces.InboundEvent{
			Kind: "receive_file",
			File: &domain.FileTransferWire{
				FileID:    domain.FileID(f.FileID),
				From:      domain.UserID(f.SenderID),
				To:        domain.UserID(f.ReceiverID),
				Timestamp: f.Timestamp,
				Envelope: domain.FileEnvelope{
					Envelope: domain.Envelope{
						KEMCiphertext: domain.KEMCiphertext(unb64(f.KEMCipher)),
						IV:            unb64(f.IV),
						Ciphertext:    unb64(f.FileData),
						Tag:           unb64(f.AuthTag),
						Signature:     domain.Signature(unb64(f.Signature)),
					},
					Metadata: domain.FileMetadata{FileName: f.FileName, FileSize: f.FileSize, FileType: f.FileType},
				},
			},
		}, true
	case "file_delivered":
		return interfaces.InboundEvent{Kind: "file_delivered", FileAck: &interfaces.FileAck{FileID: domain.FileID(f.FileID)}}, true
	case "file_error":
		return interfaces.InboundEvent{Kind: "file_error", Err: &interfaces.RelayError{Code: f.Error}}, true
	case "friend_request_received":
		return interfaces.InboundEvent{
			Kind: "friend_request_received",
			FriendReq: &domain.FriendRequest{
				ID:        domain.FriendRequestID(f.RequestID),
				SenderID:  domain.UserID(f.SenderID),
				Status:    domain.RequestPending,
				CreatedAt: f.CreatedAt,
			},
		}, true
	default:
		return interfaces.InboundEvent{}, false
	}
}

var _ domain.RelayConn = (*Conn)(nil)
