package cmd

import (
	"fmt"

	"github.com/rangeid/bbctl/internal/credential"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Bitbucket credentials from the system keyring",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if err := credential.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), "Credentials removed.")
	return err
}
