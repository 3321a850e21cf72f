package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/rangeid/bbctl/internal/bitbucket"
	"github.com/spf13/cobra"
)

var (
	prFindTitleFlag string
	prFindFromFlag  string
	prFindToFlag    string
)

var prFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Find pull requests by title",
	Long: `Find pull requests whose title contains the given text.

The server-side filter is a substring match; with --from and --to the
result is narrowed to the single OPEN pull request matching title,
source and destination exactly, the way approve and merge resolve their
target. Only the first page of results is consulted.`,
	Args: cobra.NoArgs,
	RunE: runPRFind,
}

func init() {
	prFindCmd.Flags().StringVar(&prFindTitleFlag, "title", "", "Pull request title to search for")
	prFindCmd.Flags().StringVar(&prFindFromFlag, "from", "", "Source branch (exact match)")
	prFindCmd.Flags().StringVar(&prFindToFlag, "to", "", "Destination branch (exact match)")
	_ = prFindCmd.MarkFlagRequired("title")

	prCmd.AddCommand(prFindCmd)
}

func runPRFind(cmd *cobra.Command, args []string) error {
	return runPRFindWithDeps(cmd, args, nil)
}

func runPRFindWithDeps(cmd *cobra.Command, _ []string, deps *cmdDeps) error {
	bb, err := resolveBitbucket(deps)
	if err != nil {
		return err
	}

	if prFindFromFlag != "" && prFindToFlag != "" {
		record, err := bb.FindPullRequest(cmd.Context(), prFindTitleFlag, prFindFromFlag, prFindToFlag)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("unable to find a PR that matches title <%s>", prFindTitleFlag)
		}
		return outputPRTable(cmd, []bitbucket.PullRequestRecord{*record})
	}

	records, err := bb.ListPullRequests(cmd.Context(), prFindTitleFlag)
	if err != nil {
		return err
	}
	return outputPRTable(cmd, records)
}

// outputPRTable renders a lipgloss table to stdout.
func outputPRTable(cmd *cobra.Command, records []bitbucket.PullRequestRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No matching pull requests found.")
		return err
	}

	// Define colors
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	// Define styles
	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddRowStyle := cellStyle.Foreground(gray)
	evenRowStyle := cellStyle.Foreground(lightGray)

	// Build rows
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			fmt.Sprintf("%d", record.ID),
			strings.ToLower(string(record.State)),
			truncateString(record.Title, 40),
			truncateString(record.SourceDisplayID, 30),
			truncateString(record.DestDisplayID, 30),
			humanize.Time(record.CreatedAt),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers("#", "State", "Title", "Source", "Dest", "Created").
		Rows(rows...)

	_, err := fmt.Fprintln(cmd.OutOrStdout(), t)
	return err
}

// truncateString shortens s to maxLen runes, appending an ellipsis when
// anything was cut.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
