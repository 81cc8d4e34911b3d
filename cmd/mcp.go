package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mbecker/rdtrack/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for AI assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients query rdtrack for project status, schedule
health, risk values, and dashboard alerts. Configure a client with:

  {
    "mcpServers": {
      "rdtrack": { "command": "rdtrack", "args": ["mcp"] }
    }
  }

Available tools: rdtrack_list_projects, rdtrack_project_health,
rdtrack_project_risk_value, rdtrack_dashboard_alerts,
rdtrack_list_tasks, rdtrack_create_task`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}

		srv := mcp.NewServer(s)
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
