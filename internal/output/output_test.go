package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/issues/internal/models"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, errOut := newTestUI()
	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, errOut.String(), "detail 1")
	assert.Empty(t, out.String())
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, errOut := newTestUI()
	u.Verbose = false
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestDryRunMsg_Enabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = true
	u.DryRunMsg("would create %s", "file")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would create file")
}

func TestDryRunMsg_Disabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = false
	u.DryRunMsg("would create %s", "file")
	assert.Empty(t, errOut.String())
}

func TestColorHelpers(t *testing.T) {
	// Color helpers should return non-empty strings
	assert.NotEmpty(t, Cyan("test"))
	assert.NotEmpty(t, Green("test"))
	assert.NotEmpty(t, Yellow("test"))
	assert.NotEmpty(t, Red("test"))
}

func TestOpenColor(t *testing.T) {
	assert.Contains(t, OpenColor(true), "open")
	assert.Contains(t, OpenColor(false), "closed")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly10!", Truncate("exactly10!", 10))
	assert.Equal(t, "abcd\u2026", Truncate("abcdefgh", 5))
	assert.Equal(t, "\u00e9\u00e9\u2026", Truncate("\u00e9\u00e9\u00e9\u00e9", 3))
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Name", "Status"})
	require.NotNil(t, table)

	table.Append([]string{"demo", "open"})
	table.Append([]string{"infra", "closed"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(result, "demo") || strings.Contains(result, "DEMO"),
		"table output should contain row values")
	assert.True(t, strings.Contains(result, "infra") || strings.Contains(result, "INFRA"),
		"table output should contain row values")
}

func TestIssueTable(t *testing.T) {
	u, out, _ := newTestUI()
	updated := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	issues := []*models.Issue{
		{ID: "01AAA", IssueTitle: "Crash on save", CreatedBy: "Bob", AssignedTo: "Ann", Open: true, UpdatedOn: updated},
		{ID: "01BBB", IssueTitle: "Typo", CreatedBy: "Eve", StatusText: "fixed", UpdatedOn: updated},
	}

	require.NoError(t, u.IssueTable(issues))

	result := out.String()
	assert.Contains(t, result, "01AAA")
	assert.Contains(t, result, "Crash on save")
	assert.Contains(t, result, "01BBB")
	assert.Contains(t, result, "fixed")
	assert.Less(t, strings.Index(result, "01AAA"), strings.Index(result, "01BBB"), "rows keep input order")
}

func TestIssueDetail(t *testing.T) {
	u, out, _ := newTestUI()
	u.IssueDetail(&models.Issue{
		ID:         "01AAA",
		IssueTitle: "Crash on save",
		IssueText:  "Stack trace attached",
		CreatedBy:  "Bob",
		Open:       false,
	})

	result := out.String()
	assert.Contains(t, result, "01AAA")
	assert.Contains(t, result, "closed")
	assert.Contains(t, result, "Stack trace attached")
}
