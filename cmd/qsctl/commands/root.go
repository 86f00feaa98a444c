package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"quantumshield/internal/app"
)

// queueTTLSeconds bounds how long an undelivered message sits in the local
// offline queue before a sweep (at startup, then every 5 minutes while the
// command runs) drops it.
const queueTTLSeconds = 24 * 60 * 60

var (
	home      string
	username  string
	password  string
	userID    int64
	relayAddr string
	jwtSecret string
	appCtx    *app.App
	wireCtx   *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "qsctl",
		Short: "End-to-end post-quantum encrypted chat CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".quantumshield")
			}

			secret := jwtSecret
			if secret == "" {
				secret = "qsctl-dev-secret"
			}

			w, err := app.NewWire(app.Config{
				Home:      home,
				RelayAddr: relayAddr,
				JWTSecret: []byte(secret),
			})
			if err != nil {
				return err
			}
			wireCtx = w
			appCtx = w.App(relayAddr)
			if _, err := wireCtx.OfflineQueue.Sweep(time.Now().Unix(), queueTTLSeconds); err != nil {
				return fmt.Errorf("sweep offline queue: %w", err)
			}
			go func() {
				ticker := time.NewTicker(5 * time.Minute)
				defer ticker.Stop()
				for range ticker.C {
					_, _ = wireCtx.OfflineQueue.Sweep(time.Now().Unix(), queueTTLSeconds)
				}
			}()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.quantumshield)")
	root.PersistentFlags().StringVarP(&password, "password", "p", "", "keystore password")
	root.PersistentFlags().StringVar(&username, "username", "", "your registered username")
	root.PersistentFlags().Int64Var(&userID, "user-id", 0, "your numeric user id")
	root.PersistentFlags().StringVar(&relayAddr, "relay", "127.0.0.1:8443", "relay TCP address")
	root.PersistentFlags().StringVar(&jwtSecret, "jwt-secret", "", "HMAC secret for local token issuance (dev only)")

	root.AddCommand(initCmd(), fingerprintCmd(), registerCmd(), friendCmd(), sendCmd(), recvCmd())
	return root.Execute()
}
