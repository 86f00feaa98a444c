package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"quantumshield/internal/domain"
	"quantumshield/internal/protocol/envelope"
)

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message or file to a friend",
	}
	cmd.AddCommand(sendMessageCmd(), sendFileCmd())
	return cmd
}

func sendMessageCmd() *cobra.Command {
	var toID int64
	var text string
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send a text message",
		RunE: func(cmd *cobra.Command, args []string) error {
			if toID == 0 {
				return fmt.Errorf("--to required")
			}
			if text == "" {
				return fmt.Errorf("--text required")
			}
			id, err := unlockedIdentity()
			if err != nil {
				return err
			}
			peer, ok, err := appCtx.Users.LookupByID(domain.UserID(toID))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("send: unknown recipient %d", toID)
			}

			env, err := envelope.Build(peer.KEMPub, id.SigSec, []byte(text))
			if err != nil {
				return fmt.Errorf("build envelope: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			conn, err := dialAndAuth(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			flushQueued(ctx, conn, domain.UserID(toID))

			if err := conn.SendMessage(ctx, domain.UserID(userID), domain.UserID(toID), env); err != nil {
				return err
			}
			select {
			case ev := <-conn.Events():
				if ev.Kind == "message_error" && ev.Err != nil {
					if ev.Err.Code == "recipient_offline" {
						_ = wireCtx.OfflineQueue.Enqueue(domain.QueuedEnvelope{
							RecipientID: domain.UserID(toID),
							Envelope:    env,
							QueuedAt:    time.Now().Unix(),
						})
						fmt.Println("recipient offline, queued for next delivery attempt")
						return nil
					}
					return fmt.Errorf("relay rejected message: %s", ev.Err.Code)
				}
				fmt.Println("sent")
			case <-ctx.Done():
				return fmt.Errorf("timed out waiting for relay ack")
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&toID, "to", 0, "recipient's numeric user id")
	cmd.Flags().StringVar(&text, "text", "", "message plaintext")
	return cmd
}

// flushQueued resends any locally-queued messages addressed to recipient
// before a new send, giving previously-undeliverable messages another
// chance once the caller has a live connection. The relay itself never
// sees this queue; delivery still isn't guaranteed if the peer is offline
// again.
func flushQueued(ctx context.Context, conn domain.RelayConn, recipient domain.UserID) {
	entries, err := wireCtx.OfflineQueue.Drain(recipient)
	if err != nil || len(entries) == 0 {
		return
	}
	for _, e := range entries {
		if err := conn.SendMessage(ctx, domain.UserID(userID), recipient, e.Envelope); err != nil {
			continue
		}
		select {
		case ev := <-conn.Events():
			if ev.Kind == "message_error" {
				_ = wireCtx.OfflineQueue.Enqueue(e)
			}
		case <-ctx.Done():
			_ = wireCtx.OfflineQueue.Enqueue(e)
		}
	}
}

func sendFileCmd() *cobra.Command {
	var toID int64
	var path string
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Send a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if toID == 0 {
				return fmt.Errorf("--to required")
			}
			if path == "" {
				return fmt.Errorf("--path required")
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			id, err := unlockedIdentity()
			if err != nil {
				return err
			}
			peer, ok, err := appCtx.Users.LookupByID(domain.UserID(toID))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("send: unknown recipient %d", toID)
			}

			meta := domain.FileMetadata{FileName: filepath.Base(path), FileSize: int64(len(data)), FileType: "application/octet-stream"}
			env, err := envelope.BuildFile(peer.KEMPub, id.SigSec, data, meta)
			if err != nil {
				return fmt.Errorf("build file envelope: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			conn, err := dialAndAuth(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.SendFile(ctx, domain.UserID(userID), domain.UserID(toID), env); err != nil {
				return err
			}
			select {
			case ev := <-conn.Events():
				if ev.Kind == "file_error" && ev.Err != nil {
					return fmt.Errorf("relay rejected file: %s", ev.Err.Code)
				}
				fmt.Println("sent")
			case <-ctx.Done():
				return fmt.Errorf("timed out waiting for relay ack")
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&toID, "to", 0, "recipient's numeric user id")
	cmd.Flags().StringVar(&path, "path", "", "path of the file to send")
	return cmd
}

// unlockedIdentity unlocks the local keystore with --password and returns
// the caller's secret identity.
func unlockedIdentity() (domain.Identity, error) {
	if username == "" {
		return domain.Identity{}, fmt.Errorf("--username required")
	}
	if password == "" {
		return domain.Identity{}, fmt.Errorf("--password (-p) required")
	}
	if err := appCtx.Keystore.Unlock(domain.Username(username), password); err != nil {
		return domain.Identity{}, fmt.Errorf("unlock keystore: %w", err)
	}
	return appCtx.Keystore.GetSecretKeys(domain.Username(username))
}

// dialAndAuth mints a short-lived local dev token and dials the relay.
// A production deployment obtains this token from the external auth
// service instead of minting it locally.
func dialAndAuth(ctx context.Context) (domain.RelayConn, error) {
	if userID == 0 {
		return nil, fmt.Errorf("--user-id required")
	}
	token, err := wireCtx.JWT.Issue(domain.UserID(userID), domain.Username(username), 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return appCtx.DialRelay(ctx, domain.UserID(userID), token)
}
