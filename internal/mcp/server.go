package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/issues/internal/models"
	"github.com/joescharf/issues/internal/store"
)

// Server exposes an issue store as MCP tools.
type Server struct {
	store   store.Store
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store, version string) *Server {
	return &Server{store: s, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("issues", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.listIssuesTool())
	srv.AddTool(s.createIssueTool())
	srv.AddTool(s.updateIssueTool())
	srv.AddTool(s.deleteIssueTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve runs the stdio protocol over the given streams.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, in, out)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// issues_list
func (s *Server) listIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("issues_list",
		mcp.WithDescription("List a project's issues in creation order. Each issue has _id, issue_title, issue_text, created_by, assigned_to, status_text, open, created_on and updated_on. An optional filter object keeps only issues whose fields equal every given value (open takes \"true\" or \"false\")."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithObject("filter", mcp.Description("Field name to exact value, e.g. {\"open\":\"true\",\"assigned_to\":\"Ann\"}")),
	)
	return tool, s.handleListIssues
}

func (s *Server) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}

	filter, err := filterArg(request.GetArguments()["filter"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	issues, err := s.store.ListIssues(ctx, project, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list issues: %v", err)), nil
	}
	return jsonResult(issues)
}

// filterArg converts the filter argument into string values. Booleans and
// numbers are accepted and rendered as their JSON text.
func filterArg(v any) (map[string]string, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("filter must be an object")
	}
	filter := make(map[string]string, len(raw))
	for key, val := range raw {
		switch val := val.(type) {
		case string:
			filter[key] = val
		case bool, float64, json.Number:
			filter[key] = fmt.Sprint(val)
		default:
			return nil, fmt.Errorf("filter value for %q must be a string", key)
		}
	}
	return filter, nil
}

// issues_create
func (s *Server) createIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("issues_create",
		mcp.WithDescription("Create a new open issue in a project. Returns the created issue as JSON."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name; created on first use")),
		mcp.WithString("issue_title", mcp.Required(), mcp.Description("Issue title")),
		mcp.WithString("issue_text", mcp.Required(), mcp.Description("Issue text")),
		mcp.WithString("created_by", mcp.Required(), mcp.Description("Author")),
		mcp.WithString("assigned_to", mcp.Description("Assignee")),
		mcp.WithString("status_text", mcp.Description("Free-form status text")),
	)
	return tool, s.handleCreateIssue
}

func (s *Server) handleCreateIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}

	in := models.NewIssue{
		IssueTitle: request.GetString("issue_title", ""),
		IssueText:  request.GetString("issue_text", ""),
		CreatedBy:  request.GetString("created_by", ""),
		AssignedTo: request.GetString("assigned_to", ""),
		StatusText: request.GetString("status_text", ""),
	}

	issue, err := s.store.CreateIssue(ctx, project, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create issue: %v", err)), nil
	}
	return jsonResult(issue)
}

// issues_update
func (s *Server) updateIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("issues_update",
		mcp.WithDescription("Update an issue. Only the fields provided are changed; empty strings and false are applied as given. Returns the updated issue as JSON."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Issue _id")),
		mcp.WithString("issue_title", mcp.Description("New title")),
		mcp.WithString("issue_text", mcp.Description("New text")),
		mcp.WithString("created_by", mcp.Description("New author")),
		mcp.WithString("assigned_to", mcp.Description("New assignee")),
		mcp.WithString("status_text", mcp.Description("New status text")),
		mcp.WithBoolean("open", mcp.Description("Open (true) or closed (false)")),
	)
	return tool, s.handleUpdateIssue
}

func (s *Server) handleUpdateIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	args := request.GetArguments()
	var upd models.IssueUpdate
	for _, f := range []struct {
		key    string
		target **string
	}{
		{"issue_title", &upd.IssueTitle},
		{"issue_text", &upd.IssueText},
		{"created_by", &upd.CreatedBy},
		{"assigned_to", &upd.AssignedTo},
		{"status_text", &upd.StatusText},
	} {
		if _, ok := args[f.key]; ok {
			*f.target = models.String(request.GetString(f.key, ""))
		}
	}
	if _, ok := args["open"]; ok {
		open, err := request.RequireBool("open")
		if err != nil {
			return mcp.NewToolResultError("open must be a boolean"), nil
		}
		upd.Open = models.Bool(open)
	}

	issue, err := s.store.UpdateIssue(ctx, project, id, upd)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update issue: %v", err)), nil
	}
	return jsonResult(issue)
}

// issues_delete
func (s *Server) deleteIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("issues_delete",
		mcp.WithDescription("Delete an issue from a project."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Issue _id")),
	)
	return tool, s.handleDeleteIssue
}

func (s *Server) handleDeleteIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project"), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	if err := s.store.DeleteIssue(ctx, project, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete issue: %v", err)), nil
	}
	return jsonResult(map[string]string{"result": "successfully deleted", "id": id})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
