package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantumshield/internal/crypto"
	"quantumshield/internal/domain"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the local identity's signing-key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username required")
			}
			pub, err := appCtx.Keystore.GetPublicKeys(domain.Username(username))
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", crypto.Fingerprint(pub.SigPub))
			return nil
		},
	}
}
