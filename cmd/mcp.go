package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codetrawl/codetrawl/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Codetrawl MCP server",
	Long:  `Launch an MCP server that allows AI agents to run commit analysis via standard tools.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// Only the base config is needed here. Each tool call supplies its
		// own repository URI and gets validated per request.
		if err := loadConfigFile(); err != nil {
			return err
		}
		return runsSetup(nil, nil)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, gitClient)
	},
}
