package relayserver_test

import (
	"encoding/base64"
	"encoding/json"
	"net"
	"testing"
	"time"

	"quantumshield/internal/auth"
	"quantumshield/internal/crypto"
	"quantumshield/internal/domain"
	"quantumshield/internal/protocol/envelope"
	"quantumshield/internal/relayserver"
	"quantumshield/internal/store"
)

type harness struct {
	t           *testing.T
	ln          net.Listener
	verifier    *auth.JWTVerifier
	users       *store.UserFileStore
	friendships *store.FriendshipFileStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	h := &harness{
		t:           t,
		ln:          ln,
		verifier:    auth.NewJWTVerifier([]byte("test-secret")),
		users:       store.NewUserFileStore(t.TempDir()),
		friendships: store.NewFriendshipFileStore(t.TempDir()),
	}

	srv := relayserver.New(h.verifier, h.users, h.friendships, nil)
	go srv.Serve(ln)
	return h
}

type testUser struct {
	id      domain.UserID
	name    domain.Username
	sigPub  domain.SigPublicKey
	sigSec  domain.SigPrivateKey
	kemPub  domain.KEMPublicKey
	kemSec  domain.KEMPrivateKey
	token   string
}

func (h *harness) register(id domain.UserID, name domain.Username) testUser {
	h.t.Helper()

	kemPub, kemSec, err := crypto.GenerateKEM()
	if err != nil {
		h.t.Fatalf("generate kem: %v", err)
	}
	sigPub, sigSec, err := crypto.GenerateSigning()
	if err != nil {
		h.t.Fatalf("generate signing: %v", err)
	}
	u := domain.User{UserID: id, Username: name, KEMPub: kemPub, SigPub: sigPub}
	if err := h.users.Register(u); err != nil {
		h.t.Fatalf("register user: %v", err)
	}
	token, err := h.verifier.Issue(id, name, time.Hour)
	if err != nil {
		h.t.Fatalf("issue token: %v", err)
	}
	return testUser{id: id, name: name, sigPub: sigPub, sigSec: sigSec, kemPub: kemPub, kemSec: kemSec, token: token}
}

func (h *harness) befriend(a, b testUser) {
	h.t.Helper()
	if err := h.friendships.Create(domain.Friendship{A: a.id, B: b.id, CreatedAt: time.Now().Unix()}); err != nil {
		h.t.Fatalf("create friendship: %v", err)
	}
}

// client wraps a raw TCP connection through the handshake.
type client struct {
	t   *testing.T
	nc  net.Conn
	enc *json.Encoder
	dec *json.Decoder
}

func (h *harness) dial(u testUser) *client {
	h.t.Helper()
	nc, err := net.Dial("tcp", h.ln.Addr().String())
	if err != nil {
		h.t.Fatalf("dial: %v", err)
	}
	c := &client{t: h.t, nc: nc, enc: json.NewEncoder(nc), dec: json.NewDecoder(nc)}
	if err := c.enc.Encode(map[string]any{"token": u.token, "user_id": int64(u.id)}); err != nil {
		h.t.Fatalf("handshake write: %v", err)
	}
	return c
}

func (c *client) close() { c.nc.Close() }

func (c *client) recv() map[string]any {
	c.t.Helper()
	c.nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m map[string]any
	if err := c.dec.Decode(&m); err != nil {
		c.t.Fatalf("recv: %v", err)
	}
	return m
}

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func sendMessage(t *testing.T, c *client, from, to testUser, plaintext []byte) {
	t.Helper()
	env, err := envelope.Build(to.kemPub, from.sigSec, plaintext)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	msg := map[string]any{
		"type":           "send_message",
		"sender_id":      int64(from.id),
		"receiver_id":    int64(to.id),
		"kem_ciphertext": b64(env.KEMCiphertext),
		"iv":             b64(env.IV),
		"ciphertext":     b64(env.Ciphertext),
		"auth_tag":       b64(env.Tag),
		"signature":      b64(env.Signature),
	}
	if err := c.enc.Encode(msg); err != nil {
		t.Fatalf("send: %v", err)
	}
}

// S1: happy path message.
func TestSendMessage_HappyPath(t *testing.T) {
	h := newHarness(t)
	alice := h.register(10, "alice")
	bob := h.register(11, "bob")
	h.befriend(alice, bob)

	aliceConn := h.dial(alice)
	defer aliceConn.close()
	bobConn := h.dial(bob)
	defer bobConn.close()

	time.Sleep(50 * time.Millisecond) // let both joins land before the send
	sendMessage(t, aliceConn, alice, bob, []byte("hello"))

	got := bobConn.recv()
	if got["type"] != "receive_message" {
		t.Fatalf("expected receive_message, got %+v", got)
	}
	ivBytes, _ := base64.StdEncoding.DecodeString(got["iv"].(string))
	tagBytes, _ := base64.StdEncoding.DecodeString(got["auth_tag"].(string))
	kemBytes, _ := base64.StdEncoding.DecodeString(got["kem_ciphertext"].(string))
	if len(ivBytes) != 12 || len(tagBytes) != 16 || len(kemBytes) != 1568 {
		t.Fatalf("unexpected field sizes: iv=%d tag=%d kem=%d", len(ivBytes), len(tagBytes), len(kemBytes))
	}

	ack := aliceConn.recv()
	if ack["type"] != "message_sent" || ack["success"] != true {
		t.Fatalf("expected message_sent ack, got %+v", ack)
	}
}

// S2: forged sender.
func TestSendMessage_ForgedSender(t *testing.T) {
	h := newHarness(t)
	alice := h.register(10, "alice")
	bob := h.register(11, "bob")
	h.befriend(alice, bob)

	aliceConn := h.dial(alice)
	defer aliceConn.close()

	env, err := envelope.Build(bob.kemPub, alice.sigSec, []byte("hi"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	msg := map[string]any{
		"type": "send_message", "sender_id": int64(bob.id), "receiver_id": int64(bob.id),
		"kem_ciphertext": b64(env.KEMCiphertext), "iv": b64(env.IV),
		"ciphertext": b64(env.Ciphertext), "auth_tag": b64(env.Tag), "signature": b64(env.Signature),
	}
	if err := aliceConn.enc.Encode(msg); err != nil {
		t.Fatalf("send: %v", err)
	}

	got := aliceConn.recv()
	if got["type"] != "message_error" || got["error"] != "unauthorized_sender" {
		t.Fatalf("expected unauthorized_sender, got %+v", got)
	}
}

// S3: broken signature.
func TestSendMessage_BadSignature(t *testing.T) {
	h := newHarness(t)
	alice := h.register(10, "alice")
	bob := h.register(11, "bob")
	h.befriend(alice, bob)

	aliceConn := h.dial(alice)
	defer aliceConn.close()

	env, err := envelope.Build(bob.kemPub, alice.sigSec, []byte("hi"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	sig := append([]byte(nil), env.Signature...)
	sig[len(sig)-1] ^= 0xFF

	msg := map[string]any{
		"type": "send_message", "sender_id": int64(alice.id), "receiver_id": int64(bob.id),
		"kem_ciphertext": b64(env.KEMCiphertext), "iv": b64(env.IV),
		"ciphertext": b64(env.Ciphertext), "auth_tag": b64(env.Tag), "signature": b64(sig),
	}
	if err := aliceConn.enc.Encode(msg); err != nil {
		t.Fatalf("send: %v", err)
	}

	got := aliceConn.recv()
	if got["type"] != "message_error" || got["error"] != "bad_signature" {
		t.Fatalf("expected bad_signature, got %+v", got)
	}
}

// S4: recipient offline.
func TestSendMessage_RecipientOffline(t *testing.T) {
	h := newHarness(t)
	alice := h.register(10, "alice")
	bob := h.register(11, "bob")
	h.befriend(alice, bob)

	aliceConn := h.dial(alice)
	defer aliceConn.close()

	sendMessage(t, aliceConn, alice, bob, []byte("hello?"))
	got := aliceConn.recv()
	if got["type"] != "message_error" || got["error"] != "recipient_offline" {
		t.Fatalf("expected recipient_offline, got %+v", got)
	}
}

// S5: friendship removed mid-conversation.
func TestSendMessage_NotFriendAfterRemoval(t *testing.T) {
	h := newHarness(t)
	alice := h.register(10, "alice")
	bob := h.register(11, "bob")
	h.befriend(alice, bob)

	aliceConn := h.dial(alice)
	defer aliceConn.close()
	bobConn := h.dial(bob)
	defer bobConn.close()
	time.Sleep(50 * time.Millisecond)

	sendMessage(t, aliceConn, alice, bob, []byte("first"))
	if got := bobConn.recv(); got["type"] != "receive_message" {
		t.Fatalf("expected first message to deliver, got %+v", got)
	}
	if got := aliceConn.recv(); got["type"] != "message_sent" {
		t.Fatalf("expected ack, got %+v", got)
	}

	if _, err := h.friendships.Remove(alice.id, bob.id); err != nil {
		t.Fatalf("remove friendship: %v", err)
	}

	sendMessage(t, aliceConn, alice, bob, []byte("second"))
	got := aliceConn.recv()
	if got["type"] != "message_error" || got["error"] != "not_friend" {
		t.Fatalf("expected not_friend after removal, got %+v", got)
	}
}

// Handshake: token for one user claiming a different user_id is rejected.
func TestHandshake_SubjectMismatchRejected(t *testing.T) {
	h := newHarness(t)
	alice := h.register(10, "alice")
	bob := h.register(11, "bob")

	nc, err := net.Dial("tcp", h.ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer nc.Close()

	enc := json.NewEncoder(nc)
	if err := enc.Encode(map[string]any{"token": alice.token, "user_id": int64(bob.id)}); err != nil {
		t.Fatalf("handshake write: %v", err)
	}

	dec := json.NewDecoder(nc)
	nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		t.Fatalf("recv: %v", err)
	}
	if m["error"] != "authentication error" {
		t.Fatalf("expected authentication error, got %+v", m)
	}
}
