package cli

import (
	"github.com/akolanti/CommunityRAG/internal/mcpServer"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Serves answer_message, list_communities and list_documents over the Model Context
Protocol. Logs go to stderr, stdout carries the protocol.

Client configuration:
  {
    "mcpServers": {
      "community-rag": {
        "command": "/path/to/community-admin",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	s, err := service()
	if err != nil {
		return err
	}
	server, err := mcpServer.NewServer(s)
	if err != nil {
		return err
	}
	return server.Run(cmd.Context())
}
