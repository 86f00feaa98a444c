package relayserver

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"quantumshield/internal/domain"
	"quantumshield/internal/protocol/envelope"
)

// handleSendMessage runs the send_message authorization pipeline:
// checks run in a fixed order, failing on the first one that doesn't hold,
// each with a distinct error code. Nothing is emitted to the receiver, and
// nothing is persisted, until every check has passed.
func (s *Server) handleSendMessage(c *conn, msg wireMessage) {
	if s.limiter != nil && !s.limiter.Allow(c.userID) {
		c.send(wireMessage{Type: typeMessageError, Error: ErrRateLimited})
		return
	}

	senderID := domain.UserID(msg.SenderID)
	receiverID := domain.UserID(msg.ReceiverID)

	if senderID != c.userID {
		c.send(wireMessage{Type: typeMessageError, Error: ErrUnauthorizedSender})
		return
	}

	env, ok := decodeEnvelope(msg, msg.Ciphertext)
	if !ok {
		c.send(wireMessage{Type: typeMessageError, Error: ErrIncompleteEnvelope})
		return
	}
	if len(env.Ciphertext) > maxPlaintextBytes {
		c.send(wireMessage{Type: typeMessageError, Error: ErrPayloadTooLarge})
		return
	}

	friends, err := s.friendships.Exists(senderID, receiverID)
	if err != nil || !friends {
		c.send(wireMessage{Type: typeMessageError, Error: ErrNotFriend})
		return
	}

	sender, ok, err := s.users.LookupByID(senderID)
	if err != nil || !ok || !envelope.VerifySignature(env, sender.SigPub) {
		c.send(wireMessage{Type: typeMessageError, Error: ErrBadSignature})
		return
	}

	peers := s.room(receiverID)
	if len(peers) == 0 {
		c.send(wireMessage{Type: typeMessageError, Error: ErrRecipientOffline})
		return
	}

	messageID := uuid.NewString()
	now := time.Now().Unix()
	out := msg
	out.Type = typeReceiveMessage
	out.MessageID = messageID
	out.Timestamp = now
	for _, peer := range peers {
		peer.send(out)
	}
	c.send(wireMessage{Type: typeMessageSent, Success: true, MessageID: messageID})
}

// handleSendFile mirrors handleSendMessage with file-transfer event names
// and a generated file_id instead of a message id.
func (s *Server) handleSendFile(c *conn, msg wireMessage) {
	if s.limiter != nil && !s.limiter.Allow(c.userID) {
		c.send(wireMessage{Type: typeFileError, Error: ErrRateLimited})
		return
	}

	senderID := domain.UserID(msg.SenderID)
	receiverID := domain.UserID(msg.ReceiverID)

	if senderID != c.userID {
		c.send(wireMessage{Type: typeFileError, Error: ErrUnauthorizedSender})
		return
	}

	env, ok := decodeEnvelope(msg, msg.FileData)
	if !ok {
		c.send(wireMessage{Type: typeFileError, Error: ErrIncompleteEnvelope})
		return
	}
	if len(env.Ciphertext) > maxPlaintextBytes {
		c.send(wireMessage{Type: typeFileError, Error: ErrPayloadTooLarge})
		return
	}

	friends, err := s.friendships.Exists(senderID, receiverID)
	if err != nil || !friends {
		c.send(wireMessage{Type: typeFileError, Error: ErrNotFriend})
		return
	}

	sender, ok, err := s.users.LookupByID(senderID)
	if err != nil || !ok || !envelope.VerifySignature(env, sender.SigPub) {
		c.send(wireMessage{Type: typeFileError, Error: ErrBadSignature})
		return
	}

	peers := s.room(receiverID)
	if len(peers) == 0 {
		c.send(wireMessage{Type: typeFileError, Error: ErrRecipientOffline})
		return
	}

	fileID := uuid.NewString()
	now := time.Now().Unix()
	out := msg
	out.Type = typeReceiveFile
	out.FileID = fileID
	out.Timestamp = now
	for _, peer := range peers {
		peer.send(out)
	}
	c.send(wireMessage{Type: typeFileDelivered, Success: true, FileID: fileID})
}

// decodeEnvelope builds a domain.Envelope from the base64 wire fields of
// msg, taking ciphertext from the given field ("ciphertext" for
// send_message, "file_data" for send_file, which carries the envelope
// ciphertext directly rather than repeating it under a separate key).
// ok=false if any required field is missing or malformed (both collapse to
// incomplete_envelope — the relay never distinguishes the two to a caller).
func decodeEnvelope(msg wireMessage, ciphertextB64 string) (domain.Envelope, bool) {
	if msg.KEMCipher == "" || msg.IV == "" || ciphertextB64 == "" || msg.AuthTag == "" || msg.Signature == "" {
		return domain.Envelope{}, false
	}
	kemCt, err1 := base64.StdEncoding.DecodeString(msg.KEMCipher)
	iv, err2 := base64.StdEncoding.DecodeString(msg.IV)
	ciphertext, err3 := base64.StdEncoding.DecodeString(ciphertextB64)
	tag, err4 := base64.StdEncoding.DecodeString(msg.AuthTag)
	sig, err5 := base64.StdEncoding.DecodeString(msg.Signature)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return domain.Envelope{}, false
	}
	return domain.Envelope{
		KEMCiphertext: domain.KEMCiphertext(kemCt),
		IV:            iv,
		Ciphertext:    ciphertext,
		Tag:           tag,
		Signature:     domain.Signature(sig),
	}, true
}
