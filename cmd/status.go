package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/joescharf/issues/internal/models"
	"github.com/joescharf/issues/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status [project]",
	Short: "Show server health and a project's issue summary",
	Long: `Check that the API at server.url answers its health check.

With a project name, also summarize its issues: open and closed
counts, and open issues per assignee.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var project string
		if len(args) == 1 {
			project = args[0]
		}
		return statusRun(cmd.Context(), project)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// issueSummary counts a project's issues.
type issueSummary struct {
	Open       int
	Closed     int
	ByAssignee map[string]int
}

func summarize(issues []*models.Issue) issueSummary {
	sum := issueSummary{ByAssignee: make(map[string]int)}
	for _, issue := range issues {
		if !issue.Open {
			sum.Closed++
			continue
		}
		sum.Open++
		sum.ByAssignee[issue.AssignedTo]++
	}
	return sum
}

func statusRun(ctx context.Context, project string) error {
	c := apiClient()
	if err := c.Health(ctx); err != nil {
		ui.Error("Server: %s", output.Red("unreachable"))
		return fmt.Errorf("health check: %w", err)
	}
	ui.Success("Server: %s", output.Green("ok"))

	if project == "" {
		return nil
	}

	issues, err := c.ListIssues(ctx, project, nil)
	if err != nil {
		return fmt.Errorf("list issues: %w", err)
	}
	sum := summarize(issues)

	fmt.Fprintf(ui.Out, "\n%s  %d open, %d closed\n", output.Cyan(project), sum.Open, sum.Closed)
	if sum.Open == 0 {
		return nil
	}

	assignees := make([]string, 0, len(sum.ByAssignee))
	for a := range sum.ByAssignee {
		assignees = append(assignees, a)
	}
	sort.Strings(assignees)

	table := ui.Table([]string{"Assigned To", "Open"})
	for _, a := range assignees {
		name := a
		if name == "" {
			name = "(unassigned)"
		}
		if err := table.Append([]string{name, fmt.Sprint(sum.ByAssignee[a])}); err != nil {
			return err
		}
	}
	return table.Render()
}
