package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rangeid/bbctl/internal/credential"
	"github.com/spf13/cobra"
)

var loginUsernameFlag string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store Bitbucket credentials in the system keyring",
	Long: `Store Bitbucket credentials in the system keyring.

The password is read from stdin. Credentials set through the
` + credential.EnvUsername + ` and ` + credential.EnvPassword + ` environment
variables take priority over the keyring.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginUsernameFlag, "username", "", "Bitbucket user name")
	_ = loginCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if err := credential.Store(loginUsernameFlag, password); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Credentials stored.")
	return err
}
