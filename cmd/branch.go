package cmd

import "github.com/spf13/cobra"

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage branches on the remote repository",
}

func init() {
	rootCmd.AddCommand(branchCmd)
}
