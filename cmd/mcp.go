package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tcandido/sprintlens/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Sprintlens MCP server",
	Long:  `Launch an MCP server that allows AI agents to perform sprint analysis via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Normal header logs are suppressed per-tool inside the server
		// to avoid polluting stdio which is used for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
