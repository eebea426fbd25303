package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/joescharf/issues/internal/models"
)

// UI provides colored output and respects verbose/dry-run modes.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("\u2713")
	warningPrefix = color.New(color.FgHiYellow).Sprint("\u26a0")
	errorPrefix   = color.New(color.FgHiRed).Sprint("\u2717")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  \u2192")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// OpenColor renders an issue's open flag as a colored word.
func OpenColor(open bool) string {
	if open {
		return green("open")
	}
	return red("closed")
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

// VerboseLog writes to ErrOut; Out carries JSON and MCP protocol output.
func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.ErrOut, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// IssueTable renders issues as a table, in the order given.
func (u *UI) IssueTable(issues []*models.Issue) error {
	table := u.Table([]string{"ID", "State", "Title", "Created By", "Assigned To", "Status", "Updated"})
	for _, issue := range issues {
		if err := table.Append([]string{
			issue.ID,
			OpenColor(issue.Open),
			Truncate(issue.IssueTitle, 40),
			issue.CreatedBy,
			issue.AssignedTo,
			issue.StatusText,
			issue.UpdatedOn.Local().Format(time.DateTime),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// IssueDetail prints every field of a single issue.
func (u *UI) IssueDetail(issue *models.Issue) {
	fmt.Fprintf(u.Out, "%s  %s\n", Cyan(issue.ID), OpenColor(issue.Open))
	fmt.Fprintf(u.Out, "  %-12s %s\n", "Title:", issue.IssueTitle)
	fmt.Fprintf(u.Out, "  %-12s %s\n", "Text:", issue.IssueText)
	fmt.Fprintf(u.Out, "  %-12s %s\n", "Created by:", issue.CreatedBy)
	fmt.Fprintf(u.Out, "  %-12s %s\n", "Assigned to:", issue.AssignedTo)
	fmt.Fprintf(u.Out, "  %-12s %s\n", "Status:", issue.StatusText)
	fmt.Fprintf(u.Out, "  %-12s %s\n", "Created:", issue.CreatedOn.Local().Format(time.DateTime))
	fmt.Fprintf(u.Out, "  %-12s %s\n", "Updated:", issue.UpdatedOn.Local().Format(time.DateTime))
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "\u2026"
}
