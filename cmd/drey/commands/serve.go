package commands

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/dyluth/drey/internal/mcptools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board engine over MCP on stdio",
	Long: `Expose every board operation as MCP tools over stdio, for use by
AI agents and MCP-capable editors.

The server is scoped to one instance; boards are addressed per call via
the tools' 'board' argument. The configured actor ("human" or "ai",
overridable with DREY_ACTOR) stamps comments made without an explicit
author.

Example client registration (Claude-style config):
  {"command": "drey", "args": ["serve", "--config", "/path/to/drey.yml"]}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, client, _, err := loadEngine()
	if err != nil {
		return err
	}
	defer client.Close()

	mcptools.Version = version
	s := mcptools.New(eng)
	return server.ServeStdio(s)
}
