package relayserver

// wireMessage is the single flat JSON frame shape used for every event in
// both directions. Only the fields relevant to Type are populated; a
// discriminator plus payload fields avoid a second decode pass per message.
type wireMessage struct {
	Type string `json:"type"`

	// handshake (C->S, no Type needed on the wire but accepted if present)
	Token  string `json:"token,omitempty"`
	UserID int64  `json:"user_id,omitempty"`

	// send_message / receive_message
	SenderID     int64  `json:"sender_id,omitempty"`
	ReceiverID   int64  `json:"receiver_id,omitempty"`
	KEMCipher    string `json:"kem_ciphertext,omitempty"`
	IV           string `json:"iv,omitempty"`
	Ciphertext   string `json:"ciphertext,omitempty"`
	AuthTag      string `json:"auth_tag,omitempty"`
	Signature    string `json:"signature,omitempty"`
	MessageID    string `json:"id,omitempty"`
	Timestamp    int64  `json:"timestamp,omitempty"`

	// send_file / receive_file
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	FileType string `json:"file_type,omitempty"`
	FileData string `json:"file_data,omitempty"`
	FileID   string `json:"file_id,omitempty"`

	// message_sent / file_delivered acks
	Success bool `json:"success,omitempty"`

	// message_error / file_error
	Error string `json:"error,omitempty"`

	// friend_request_received
	RequestID string `json:"request_id,omitempty"`
	Username  string `json:"username,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

const (
	typeSendMessage          = "send_message"
	typeReceiveMessage       = "receive_message"
	typeMessageSent          = "message_sent"
	typeMessageError         = "message_error"
	typeSendFile             = "send_file"
	typeReceiveFile          = "receive_file"
	typeFileDelivered        = "file_delivered"
	typeFileError            = "file_error"
	typeFriendRequestRecvd   = "friend_request_received"
)

// Error codes returned verbatim in message_error / file_error frames.
const (
	ErrUnauthorizedSender = "unauthorized_sender"
	ErrIncompleteEnvelope = "incomplete_envelope"
	ErrNotFriend          = "not_friend"
	ErrBadSignature       = "bad_signature"
	ErrRecipientOffline   = "recipient_offline"
	ErrPayloadTooLarge    = "payload_too_large"
	ErrRateLimited        = "rate_limited"
)

// maxPlaintextBytes bounds envelope plaintext at 10 MiB. file_data is
// base64, so the wire size is larger; the check is applied to the decoded
// byte length.
const maxPlaintextBytes = 10 * 1024 * 1024
