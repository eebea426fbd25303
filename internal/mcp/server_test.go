package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/issues/internal/models"
	"github.com/joescharf/issues/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	srv := NewServer(ms, "test")
	require.NotNil(t, srv)
	return srv, ms
}

// callToolReq builds a mcpgo.CallToolRequest with the given name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// resultJSON parses the text result as JSON into the provided target.
func resultJSON(t *testing.T, result *mcpgo.CallToolResult, target any) {
	t.Helper()
	text := resultText(t, result)
	err := json.Unmarshal([]byte(text), target)
	require.NoError(t, err, "failed to parse result JSON: %s", text)
}

func seedIssue(t *testing.T, ms *store.MemoryStore, project, title, assignee string) *models.Issue {
	t.Helper()
	issue, err := ms.CreateIssue(context.Background(), project, models.NewIssue{
		IssueTitle: title,
		IssueText:  "text",
		CreatedBy:  "Bob",
		AssignedTo: assignee,
	})
	require.NoError(t, err)
	return issue
}

// ---------------------------------------------------------------------------
// Tests: MCPServer registration
// ---------------------------------------------------------------------------

func TestNewServer(t *testing.T) {
	srv, _ := newTestServer(t)
	mcpSrv := srv.MCPServer()
	require.NotNil(t, mcpSrv, "MCPServer() should return non-nil")
	assert.IsType(t, &mcpserver.MCPServer{}, mcpSrv)
}

func TestToolDefinitions(t *testing.T) {
	srv, _ := newTestServer(t)

	tools := []struct {
		name     string
		tool     mcpgo.Tool
		required []string
	}{
		{"issues_list", first(srv.listIssuesTool()), []string{"project"}},
		{"issues_create", first(srv.createIssueTool()), []string{"project", "issue_title", "issue_text", "created_by"}},
		{"issues_update", first(srv.updateIssueTool()), []string{"project", "id"}},
		{"issues_delete", first(srv.deleteIssueTool()), []string{"project", "id"}},
	}
	for _, tt := range tools {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.tool.Name)
			assert.NotEmpty(t, tt.tool.Description)
			assert.ElementsMatch(t, tt.required, tt.tool.InputSchema.Required)
		})
	}
}

func first(tool mcpgo.Tool, _ mcpserver.ToolHandlerFunc) mcpgo.Tool { return tool }

// ---------------------------------------------------------------------------
// Tests: issues_list
// ---------------------------------------------------------------------------

func TestHandleListIssues(t *testing.T) {
	srv, ms := newTestServer(t)
	ctx := context.Background()
	a := seedIssue(t, ms, "demo", "A", "Ann")
	seedIssue(t, ms, "demo", "B", "Joe")
	seedIssue(t, ms, "other", "C", "Ann")

	result, err := srv.handleListIssues(ctx, callToolReq("issues_list", map[string]any{"project": "demo"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var issues []models.Issue
	resultJSON(t, result, &issues)
	assert.Len(t, issues, 2)

	result, err = srv.handleListIssues(ctx, callToolReq("issues_list", map[string]any{
		"project": "demo",
		"filter":  map[string]any{"assigned_to": "Ann", "open": true},
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError, resultText(t, result))
	resultJSON(t, result, &issues)
	require.Len(t, issues, 1)
	assert.Equal(t, a.ID, issues[0].ID)
}

func TestHandleListIssues_UnknownProjectIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleListIssues(context.Background(), callToolReq("issues_list", map[string]any{"project": "none"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "[]", resultText(t, result))
}

func TestHandleListIssues_BadArguments(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleListIssues(ctx, callToolReq("issues_list", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "project")

	result, err = srv.handleListIssues(ctx, callToolReq("issues_list", map[string]any{"project": "p", "filter": "open=true"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "filter must be an object")
}

// ---------------------------------------------------------------------------
// Tests: issues_create
// ---------------------------------------------------------------------------

func TestHandleCreateIssue(t *testing.T) {
	srv, ms := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleCreateIssue(ctx, callToolReq("issues_create", map[string]any{
		"project":     "demo",
		"issue_title": "T",
		"issue_text":  "X",
		"created_by":  "Bob",
		"status_text": "triage",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError, resultText(t, result))

	var issue models.Issue
	resultJSON(t, result, &issue)
	assert.NotEmpty(t, issue.ID)
	assert.Equal(t, "triage", issue.StatusText)
	assert.Equal(t, "", issue.AssignedTo)
	assert.True(t, issue.Open)

	stored, err := ms.ListIssues(ctx, "demo", nil)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, issue.ID, stored[0].ID)
}

func TestHandleCreateIssue_MissingRequired(t *testing.T) {
	srv, ms := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleCreateIssue(ctx, callToolReq("issues_create", map[string]any{
		"project":     "demo",
		"issue_title": "T",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "required field(s) missing")

	stored, err := ms.ListIssues(ctx, "demo", nil)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

// ---------------------------------------------------------------------------
// Tests: issues_update
// ---------------------------------------------------------------------------

func TestHandleUpdateIssue(t *testing.T) {
	srv, ms := newTestServer(t)
	ctx := context.Background()
	seeded := seedIssue(t, ms, "demo", "T", "Ann")

	result, err := srv.handleUpdateIssue(ctx, callToolReq("issues_update", map[string]any{
		"project":     "demo",
		"id":          seeded.ID,
		"assigned_to": "",
		"open":        false,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError, resultText(t, result))

	var issue models.Issue
	resultJSON(t, result, &issue)
	assert.Equal(t, "", issue.AssignedTo)
	assert.False(t, issue.Open)
	assert.Equal(t, "T", issue.IssueTitle)
}

func TestHandleUpdateIssue_Errors(t *testing.T) {
	srv, ms := newTestServer(t)
	ctx := context.Background()
	seeded := seedIssue(t, ms, "demo", "T", "")

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing id", map[string]any{"project": "demo", "open": false}, "missing required parameter: id"},
		{"no fields", map[string]any{"project": "demo", "id": seeded.ID}, "no update field(s) sent"},
		{"unknown issue", map[string]any{"project": "demo", "id": "nope", "open": false}, "issue not found"},
		{"unknown project", map[string]any{"project": "other", "id": seeded.ID, "open": false}, "project not found"},
		{"open not boolean", map[string]any{"project": "demo", "id": seeded.ID, "open": "yes"}, "open must be a boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := srv.handleUpdateIssue(ctx, callToolReq("issues_update", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// Tests: issues_delete
// ---------------------------------------------------------------------------

func TestHandleDeleteIssue(t *testing.T) {
	srv, ms := newTestServer(t)
	ctx := context.Background()
	seeded := seedIssue(t, ms, "demo", "T", "")

	result, err := srv.handleDeleteIssue(ctx, callToolReq("issues_delete", map[string]any{"project": "demo", "id": seeded.ID}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out map[string]string
	resultJSON(t, result, &out)
	assert.Equal(t, "successfully deleted", out["result"])
	assert.Equal(t, seeded.ID, out["id"])

	result, err = srv.handleDeleteIssue(ctx, callToolReq("issues_delete", map[string]any{"project": "demo", "id": seeded.ID}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "issue not found")
}
