package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantumshield/internal/domain"
	"quantumshield/internal/store"
)

// registerCmd publishes the local identity's public keys into the local
// user projection under --user-id. Real deployments populate this
// projection from an external registration/auth service; this command
// exists so the relay and other commands have something to look sender
// keys up against in local development.
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Publish your public keys to the local user projection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username required")
			}
			if userID == 0 {
				return fmt.Errorf("--user-id required")
			}
			pub, err := appCtx.Keystore.GetPublicKeys(domain.Username(username))
			if err != nil {
				return err
			}

			users, ok := appCtx.Users.(*store.UserFileStore)
			if !ok {
				return fmt.Errorf("register: user store does not support direct registration")
			}
			u := domain.User{UserID: domain.UserID(userID), Username: domain.Username(username), KEMPub: pub.KEMPub, SigPub: pub.SigPub}
			if err := users.Register(u); err != nil {
				return err
			}

			fmt.Printf("Registered %q as user %d\n", username, userID)
			return nil
		},
	}
}
