package cmd

import (
	"github.com/rangeid/bbctl/internal/bitbucket"
	"github.com/spf13/cobra"
)

var branchCreateFromFlag string

var branchCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a branch",
	Long: `Create a branch on the remote repository from a start point.

Creating a branch that already exists is a remote conflict and fails;
the server's message is reported as-is.`,
	Args: cobra.ExactArgs(1),
	RunE: runBranchCreate,
}

func init() {
	branchCreateCmd.Flags().StringVar(&branchCreateFromFlag, "from", "master", "Start-point branch")
	branchCmd.AddCommand(branchCreateCmd)
}

func runBranchCreate(cmd *cobra.Command, args []string) error {
	return runBranchCreateWithDeps(cmd, args, nil)
}

func runBranchCreateWithDeps(cmd *cobra.Command, args []string, deps *cmdDeps) error {
	bb, err := resolveBitbucket(deps)
	if err != nil {
		return err
	}

	spec := bitbucket.BranchSpec{
		Name:       args[0],
		StartPoint: branchCreateFromFlag,
	}
	if err := bb.CreateBranch(cmd.Context(), spec); err != nil {
		return err
	}

	return printChanged(cmd, true)
}
