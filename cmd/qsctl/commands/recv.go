package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"quantumshield/internal/domain"
	"quantumshield/internal/protocol/envelope"
)

func recvCmd() *cobra.Command {
	var saveDir string
	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Listen for incoming messages and files until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := unlockedIdentity()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conn, err := dialAndAuth(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			fmt.Println("listening, press ctrl-c to stop")
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-conn.Events():
					if !ok {
						return nil
					}
					handleInbound(ev, id, saveDir)
				}
			}
		},
	}
	cmd.Flags().StringVar(&saveDir, "save-dir", ".", "directory to write received files into")
	return cmd
}

func handleInbound(ev domain.InboundEvent, id domain.Identity, saveDir string) {
	switch ev.Kind {
	case "receive_message":
		plaintext, err := envelope.Open(ev.Message.Envelope, senderSigPub(ev.Message.From), id.KEMSec)
		if err != nil {
			fmt.Printf("[message from %d] decrypt failed: %v\n", ev.Message.From, err)
			return
		}
		fmt.Printf("[message from %d] %s\n", ev.Message.From, string(plaintext))
	case "receive_file":
		plaintext, err := envelope.OpenFile(ev.File.Envelope, senderSigPub(ev.File.From), id.KEMSec)
		if err != nil {
			fmt.Printf("[file from %d] decrypt failed: %v\n", ev.File.From, err)
			return
		}
		name := ev.File.Envelope.Metadata.FileName
		if name == "" {
			name = fmt.Sprintf("file-%s", ev.File.FileID)
		}
		out := filepath.Join(saveDir, name)
		if err := os.WriteFile(out, plaintext, 0o600); err != nil {
			fmt.Printf("[file from %d] saved failed: %v\n", ev.File.From, err)
			return
		}
		fmt.Printf("[file from %d] saved to %s\n", ev.File.From, out)
	case "message_sent":
		fmt.Printf("[ack] message %s delivered\n", ev.Ack.MessageID)
	case "file_delivered":
		fmt.Printf("[ack] file %s delivered\n", ev.FileAck.FileID)
	case "message_error", "file_error":
		fmt.Printf("[error] %s\n", ev.Err.Code)
	case "friend_request_received":
		fmt.Printf("[friend request] from %d (id=%s)\n", ev.FriendReq.SenderID, ev.FriendReq.ID)
	}
}

// senderSigPub looks up the signing public key the relay's sender claim is
// checked against. The relay already verified the envelope signature
// before delivery; this local re-verification inside envelope.Open guards
// against a compromised or buggy relay relaying an unauthenticated payload.
func senderSigPub(from domain.UserID) domain.SigPublicKey {
	u, ok, err := appCtx.Users.LookupByID(from)
	if err != nil || !ok {
		return domain.SigPublicKey{}
	}
	return u.SigPub
}
