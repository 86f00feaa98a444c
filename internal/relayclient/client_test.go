package relayclient_test

import (
	"context"
	"net"
	"testing"
	"time"

	"quantumshield/internal/auth"
	"quantumshield/internal/crypto"
	"quantumshield/internal/domain"
	"quantumshield/internal/protocol/envelope"
	"quantumshield/internal/relayclient"
	"quantumshield/internal/relayserver"
	"quantumshield/internal/store"
)

func TestConn_SendMessage_DeliversToPeer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	verifier := auth.NewJWTVerifier([]byte("test-secret"))
	users := store.NewUserFileStore(t.TempDir())
	friendships := store.NewFriendshipFileStore(t.TempDir())
	srv := relayserver.New(verifier, users, friendships, nil)
	go srv.Serve(ln)

	aliceKEMPub, aliceKEMSec, err := crypto.GenerateKEM()
	if err != nil {
		t.Fatalf("kem: %v", err)
	}
	aliceSigPub, aliceSigSec, err := crypto.GenerateSigning()
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	bobKEMPub, bobKEMSec, err := crypto.GenerateKEM()
	if err != nil {
		t.Fatalf("kem: %v", err)
	}
	_ = aliceKEMPub
	_ = aliceKEMSec

	if err := users.Register(domain.User{UserID: 1, Username: "alice", KEMPub: aliceKEMPub, SigPub: aliceSigPub}); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if err := users.Register(domain.User{UserID: 2, Username: "bob", KEMPub: bobKEMPub, SigPub: nil}); err != nil {
		t.Fatalf("register bob: %v", err)
	}
	if err := friendships.Create(domain.Friendship{A: 1, B: 2, CreatedAt: time.Now().Unix()}); err != nil {
		t.Fatalf("create friendship: %v", err)
	}

	aliceToken, err := verifier.Issue(1, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue alice token: %v", err)
	}
	bobToken, err := verifier.Issue(2, "bob", time.Hour)
	if err != nil {
		t.Fatalf("issue bob token: %v", err)
	}

	ctx := context.Background()
	aliceConn, err := relayclient.Dial(ctx, ln.Addr().String(), 1, aliceToken)
	if err != nil {
		t.Fatalf("dial alice: %v", err)
	}
	defer aliceConn.Close()
	bobConn, err := relayclient.Dial(ctx, ln.Addr().String(), 2, bobToken)
	if err != nil {
		t.Fatalf("dial bob: %v", err)
	}
	defer bobConn.Close()

	time.Sleep(50 * time.Millisecond)

	env, err := envelope.Build(bobKEMPub, aliceSigSec, []byte("hello bob"))
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if err := aliceConn.SendMessage(ctx, 1, 2, env); err != nil {
		t.Fatalf("send message: %v", err)
	}

	select {
	case ev := <-bobConn.Events():
		if ev.Kind != "receive_message" || ev.Message == nil {
			t.Fatalf("unexpected event: %+v", ev)
		}
		plaintext, err := envelope.Open(ev.Message.Envelope, aliceSigPub, bobKEMSec)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if string(plaintext) != "hello bob" {
			t.Fatalf("unexpected plaintext: %q", plaintext)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for receive_message")
	}

	select {
	case ev := <-aliceConn.Events():
		if ev.Kind != "message_sent" || ev.Ack == nil {
			t.Fatalf("unexpected ack event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message_sent ack")
	}
}
