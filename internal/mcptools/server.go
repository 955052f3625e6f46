// Package mcptools wires the board engine into an MCP tool surface.
//
// This is the composition root: it creates the tool implementations and
// registers them on the server. No business logic lives here, only wiring.
package mcptools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dyluth/drey/internal/engine"
	"github.com/dyluth/drey/internal/resolver"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with every board tool registered.
func New(eng *engine.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"drey",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	for _, tool := range allTools(eng) {
		s.AddTool(tool.Definition(), tool.Handle)
	}

	return s
}

// boardTool is the shape every tool in this package implements.
type boardTool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

func allTools(eng *engine.Engine) []boardTool {
	return []boardTool{
		&addTool{eng: eng},
		&moveTool{eng: eng},
		&reorderTool{eng: eng},
		&editTool{eng: eng},
		&dropTool{eng: eng},
		&blockTool{eng: eng},
		&searchTool{eng: eng},
		&commentTool{eng: eng},
		&commentsTool{eng: eng},
		&showTool{eng: eng},
		&boardSnapshotTool{eng: eng},
		&columnTool{eng: eng},
		&clearTool{eng: eng},
		&statsTool{eng: eng},
		&sweepTool{eng: eng},
		&listTool{eng: eng},
	}
}

func serverInstructions() string {
	return `drey manages multi-column task boards backed by Redis.

Tasks move between columns with kanban_move; moves into gated columns
(typically Review and Done) require every blocked_by dependency to be in
Done first. Task IDs may be given as a unique prefix of at least 6
characters. Use kanban_board for a full snapshot and kanban_sweep to apply
several moves atomically.`
}

// jsonResult marshals v as indented JSON into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError maps an engine error onto a tool error result. Engine errors are
// expected outcomes for the caller, not protocol failures, so the Go error
// return stays nil.
func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// resolveTask expands a short task ID prefix against the board snapshot.
func resolveTask(ctx context.Context, eng *engine.Engine, boardName, taskID string) (string, error) {
	b, err := eng.Board(ctx, boardName)
	if err != nil {
		return "", err
	}
	return resolver.ResolveTaskID(b, taskID)
}
