package cmd

import (
	"github.com/rangeid/bbctl/internal/bitbucket"
	"github.com/spf13/cobra"
)

var (
	prApplyTitleFlag       string
	prApplyDescriptionFlag string
	prApplyFromFlag        string
	prApplyToFlag          string
	prApplyAuthorFlag      string
	prApplyActionsFlag     []string
	prApplyIgnoreExisting  bool
	prApplyDeleteExisting  bool // alias for --ignore-existing-on-create
)

var prApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile a pull request toward a desired state",
	Long: `Reconcile a pull request toward the desired state described by the
flags. Requested actions run in fixed order: create, approve, merge,
delete. The title is the identity key used to find the pull request for
approve, merge and delete.

With --ignore-existing-on-create, a create that conflicts with an
existing pull request deletes the conflicting one and retries the
create once.

The command prints "changed: true" when at least one mutating request
succeeded, even when a later action fails.`,
	Args: cobra.NoArgs,
	RunE: runPRApply,
}

func init() {
	prApplyCmd.Flags().StringVar(&prApplyTitleFlag, "title", "", "Pull request title (identity key)")
	prApplyCmd.Flags().StringVar(&prApplyDescriptionFlag, "description", "", "Pull request description")
	prApplyCmd.Flags().StringVar(&prApplyFromFlag, "from", "", "Source branch")
	prApplyCmd.Flags().StringVar(&prApplyToFlag, "to", "master", "Destination branch")
	prApplyCmd.Flags().StringVar(&prApplyAuthorFlag, "author", "bbctl", "Approval identity (user name)")
	prApplyCmd.Flags().StringArrayVar(&prApplyActionsFlag, "action", nil, "Action to perform (repeatable): create, approve, merge, delete")
	prApplyCmd.Flags().BoolVar(&prApplyIgnoreExisting, "ignore-existing-on-create", false, "Delete a conflicting pull request and retry create once")
	prApplyCmd.Flags().BoolVar(&prApplyDeleteExisting, "delete-existing-on-create", false, "Alias for --ignore-existing-on-create")
	_ = prApplyCmd.Flags().MarkHidden("delete-existing-on-create")
	_ = prApplyCmd.MarkFlagRequired("title")
	_ = prApplyCmd.MarkFlagRequired("from")
	_ = prApplyCmd.MarkFlagRequired("action")

	prCmd.AddCommand(prApplyCmd)
}

func runPRApply(cmd *cobra.Command, args []string) error {
	return runPRApplyWithDeps(cmd, args, nil)
}

func runPRApplyWithDeps(cmd *cobra.Command, _ []string, deps *cmdDeps) error {
	bb, err := resolveBitbucket(deps)
	if err != nil {
		return err
	}

	actions := make([]bitbucket.Action, 0, len(prApplyActionsFlag))
	for _, raw := range prApplyActionsFlag {
		action, err := bitbucket.ParseAction(raw)
		if err != nil {
			return err
		}
		actions = append(actions, action)
	}

	spec := bitbucket.PullRequestSpec{
		Title:                  prApplyTitleFlag,
		Description:            prApplyDescriptionFlag,
		SourceRef:              prApplyFromFlag,
		DestRef:                prApplyToFlag,
		Author:                 prApplyAuthorFlag,
		Actions:                actions,
		IgnoreExistingOnCreate: prApplyIgnoreExisting || prApplyDeleteExisting,
	}

	result, applyErr := bitbucket.NewReconciler(bb).Apply(cmd.Context(), spec)

	// Changed is reported truthfully even when a later action failed.
	if err := printChanged(cmd, result.Changed); err != nil {
		return err
	}
	return applyErr
}
