package cmd

import (
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/issues/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for issue tracking from AI assistants",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

Tool calls are forwarded to the issues API at server.url, so a server
must be running ('issues serve start'). Configure an MCP client with:

  {
    "mcpServers": {
      "issues": { "command": "issues", "args": ["mcp"] }
    }
  }

Available tools: issues_list, issues_create, issues_update, issues_delete`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()
		return mcp.NewServer(apiClient(), buildVersion).ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
