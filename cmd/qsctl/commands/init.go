package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantumshield/internal/crypto"
	"quantumshield/internal/domain"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a fresh identity and initialize the local keystore",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username required")
			}
			if password == "" {
				return fmt.Errorf("--password (-p) required")
			}

			kemPub, kemSec, err := crypto.GenerateKEM()
			if err != nil {
				return fmt.Errorf("generate kem keypair: %w", err)
			}
			sigPub, sigSec, err := crypto.GenerateSigning()
			if err != nil {
				return fmt.Errorf("generate signing keypair: %w", err)
			}

			id := domain.Identity{KEMPub: kemPub, KEMSec: kemSec, SigPub: sigPub, SigSec: sigSec}
			if err := appCtx.Keystore.Initialize(domain.Username(username), password, id); err != nil {
				return fmt.Errorf("initialize keystore: %w", err)
			}

			fmt.Printf("Identity created for %q.\nFingerprint: %s\n", username, crypto.Fingerprint(sigPub))
			return nil
		},
	}
}
