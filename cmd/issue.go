package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/issues/internal/models"
	"github.com/joescharf/issues/internal/output"
	"github.com/joescharf/issues/internal/store"
)

var (
	issueTitle    string
	issueText     string
	issueAuthor   string
	issueAssignee string
	issueStatus   string
	issueOpen     bool
	issueFilters  []string
	issueJSON     bool
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage issues on a running server",
	Long: `Create, list, update and delete issues through the HTTP API.

The server URL comes from server.url (default http://localhost:8080).`,
}

var issueListCmd = &cobra.Command{
	Use:     "list <project>",
	Aliases: []string{"ls"},
	Short:   "List a project's issues",
	Long: `List a project's issues in creation order.

Filter with --filter key=value (repeatable). Keys are issue fields such as
open, assigned_to, created_by or _id; every filter must match exactly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseFilters(issueFilters)
		if err != nil {
			return err
		}
		return issueListRun(cmd.Context(), args[0], filter)
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show <project> <issue-id>",
	Short: "Show issue details",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueShowRun(cmd.Context(), args[0], args[1])
	},
}

var issueAddCmd = &cobra.Command{
	Use:   "add <project>",
	Short: "Create an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueAddRun(cmd.Context(), args[0], models.NewIssue{
			IssueTitle: issueTitle,
			IssueText:  issueText,
			CreatedBy:  issueAuthor,
			AssignedTo: issueAssignee,
			StatusText: issueStatus,
		})
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <project> <issue-id>",
	Short: "Update an issue",
	Long: `Update an issue. Only flags that are given are sent, so
--assignee "" clears the assignee.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueUpdateRun(cmd.Context(), args[0], args[1], updateFromFlags(cmd))
	},
}

var issueCloseCmd = &cobra.Command{
	Use:   "close <project> <issue-id>",
	Short: "Close an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueUpdateRun(cmd.Context(), args[0], args[1], models.IssueUpdate{Open: models.Bool(false)})
	},
}

var issueReopenCmd = &cobra.Command{
	Use:   "reopen <project> <issue-id>",
	Short: "Reopen a closed issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueUpdateRun(cmd.Context(), args[0], args[1], models.IssueUpdate{Open: models.Bool(true)})
	},
}

var issueDeleteCmd = &cobra.Command{
	Use:     "delete <project> <issue-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an issue",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueDeleteRun(cmd.Context(), args[0], args[1])
	},
}

func init() {
	issueCmd.PersistentFlags().BoolVar(&issueJSON, "json", false, "Print JSON instead of tables")

	issueListCmd.Flags().StringArrayVarP(&issueFilters, "filter", "f", nil, "Filter as key=value (repeatable)")

	issueAddCmd.Flags().StringVar(&issueTitle, "title", "", "Issue title (required)")
	issueAddCmd.Flags().StringVar(&issueText, "text", "", "Issue text (required)")
	issueAddCmd.Flags().StringVar(&issueAuthor, "by", "", "Author (required)")
	issueAddCmd.Flags().StringVar(&issueAssignee, "assignee", "", "Assignee")
	issueAddCmd.Flags().StringVar(&issueStatus, "status", "", "Status text")
	_ = issueAddCmd.MarkFlagRequired("title")
	_ = issueAddCmd.MarkFlagRequired("text")
	_ = issueAddCmd.MarkFlagRequired("by")

	issueUpdateCmd.Flags().StringVar(&issueTitle, "title", "", "New title")
	issueUpdateCmd.Flags().StringVar(&issueText, "text", "", "New text")
	issueUpdateCmd.Flags().StringVar(&issueAuthor, "by", "", "New author")
	issueUpdateCmd.Flags().StringVar(&issueAssignee, "assignee", "", "New assignee")
	issueUpdateCmd.Flags().StringVar(&issueStatus, "status", "", "New status text")
	issueUpdateCmd.Flags().BoolVar(&issueOpen, "open", true, "Open (true) or closed (false)")

	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueAddCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueCloseCmd)
	issueCmd.AddCommand(issueReopenCmd)
	issueCmd.AddCommand(issueDeleteCmd)
	rootCmd.AddCommand(issueCmd)
}

// parseFilters turns key=value pairs into a list filter.
func parseFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q (want key=value)", p)
		}
		filter[key] = value
	}
	return filter, nil
}

// updateFromFlags builds an update from the flags explicitly set on cmd.
func updateFromFlags(cmd *cobra.Command) models.IssueUpdate {
	var upd models.IssueUpdate
	flags := cmd.Flags()
	if flags.Changed("title") {
		upd.IssueTitle = models.String(issueTitle)
	}
	if flags.Changed("text") {
		upd.IssueText = models.String(issueText)
	}
	if flags.Changed("by") {
		upd.CreatedBy = models.String(issueAuthor)
	}
	if flags.Changed("assignee") {
		upd.AssignedTo = models.String(issueAssignee)
	}
	if flags.Changed("status") {
		upd.StatusText = models.String(issueStatus)
	}
	if flags.Changed("open") {
		upd.Open = models.Bool(issueOpen)
	}
	return upd
}

func issueListRun(ctx context.Context, project string, filter map[string]string) error {
	issues, err := apiClient().ListIssues(ctx, project, filter)
	if err != nil {
		return fmt.Errorf("list issues: %w", err)
	}

	if issueJSON {
		return printJSON(issues)
	}
	if len(issues) == 0 {
		ui.Info("No issues found.")
		return nil
	}
	return ui.IssueTable(issues)
}

func issueShowRun(ctx context.Context, project, id string) error {
	issues, err := apiClient().ListIssues(ctx, project, map[string]string{"_id": id})
	if err != nil {
		return fmt.Errorf("show issue: %w", err)
	}
	if len(issues) == 0 {
		return fmt.Errorf("show issue %s: %w", id, store.ErrIssueNotFound)
	}

	if issueJSON {
		return printJSON(issues[0])
	}
	ui.IssueDetail(issues[0])
	return nil
}

func issueAddRun(ctx context.Context, project string, in models.NewIssue) error {
	if !in.Complete() {
		return fmt.Errorf("add issue: %w (need --title, --text and --by)", store.ErrMissingRequiredFields)
	}

	if dryRun {
		ui.DryRunMsg("Would create issue in %s: %s", project, in.IssueTitle)
		return nil
	}

	issue, err := apiClient().CreateIssue(ctx, project, in)
	if err != nil {
		return fmt.Errorf("add issue: %w", err)
	}

	if issueJSON {
		return printJSON(issue)
	}
	ui.Success("Created issue %s: %s", output.Cyan(issue.ID), issue.IssueTitle)
	return nil
}

func issueUpdateRun(ctx context.Context, project, id string, upd models.IssueUpdate) error {
	if upd.Empty() {
		return fmt.Errorf("update issue: %w (use --title, --text, --by, --assignee, --status or --open)", store.ErrNoUpdateFields)
	}

	if dryRun {
		ui.DryRunMsg("Would update issue %s in %s", id, project)
		return nil
	}

	issue, err := apiClient().UpdateIssue(ctx, project, id, upd)
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}

	if issueJSON {
		return printJSON(issue)
	}
	ui.Success("Updated issue %s", output.Cyan(issue.ID))
	ui.IssueDetail(issue)
	return nil
}

func issueDeleteRun(ctx context.Context, project, id string) error {
	if dryRun {
		ui.DryRunMsg("Would delete issue %s from %s", id, project)
		return nil
	}

	if err := apiClient().DeleteIssue(ctx, project, id); err != nil {
		return fmt.Errorf("delete issue %s: %w", id, err)
	}

	if issueJSON {
		return printJSON(map[string]string{"result": "successfully deleted", "id": id})
	}
	ui.Success("Deleted issue %s", output.Cyan(id))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(ui.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
