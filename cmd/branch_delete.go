package cmd

import "github.com/spf13/cobra"

var branchDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a branch",
	Long: `Delete a branch on the remote repository.

Deleting a branch that does not exist fails; absence is not treated as
already-satisfied.`,
	Args: cobra.ExactArgs(1),
	RunE: runBranchDelete,
}

func init() {
	branchCmd.AddCommand(branchDeleteCmd)
}

func runBranchDelete(cmd *cobra.Command, args []string) error {
	return runBranchDeleteWithDeps(cmd, args, nil)
}

func runBranchDeleteWithDeps(cmd *cobra.Command, args []string, deps *cmdDeps) error {
	bb, err := resolveBitbucket(deps)
	if err != nil {
		return err
	}

	if err := bb.DeleteBranch(cmd.Context(), args[0]); err != nil {
		return err
	}

	return printChanged(cmd, true)
}
