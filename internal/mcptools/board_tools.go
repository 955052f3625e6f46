package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dyluth/drey/internal/engine"
	"github.com/dyluth/drey/pkg/kanban"
)

type commentTool struct {
	eng *engine.Engine
}

func (t *commentTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_comment",
		mcp.WithDescription("Add a comment to a task."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID or unique prefix (6+ chars)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Comment text")),
		mcp.WithString("author", mcp.Description("human or ai; defaults to the configured actor")),
	)
}

func (t *commentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskID, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskID, err = resolveTask(ctx, t.eng, boardName, taskID)
	if err != nil {
		return toolError(err)
	}

	comment, err := t.eng.Comment(ctx, boardName, taskID, content, kanban.Author(req.GetString("author", "")))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(comment)
}

type columnTool struct {
	eng *engine.Engine
}

func (t *columnTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_column",
		mcp.WithDescription("Add a column (inserted before Done) or remove one (its tasks relocate to Backlog). Backlog and Done are fixed."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Column name")),
		mcp.WithBoolean("remove", mcp.Description("Remove the column instead of adding it")),
		mcp.WithNumber("wip_limit", mcp.Description("WIP limit for a new column; 0 means unlimited")),
	)
}

func (t *columnTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b *kanban.Board
	if req.GetBool("remove", false) {
		b, err = t.eng.RemoveColumn(ctx, boardName, name)
	} else {
		b, err = t.eng.AddColumn(ctx, boardName, name, req.GetInt("wip_limit", 0))
	}
	if err != nil {
		return toolError(err)
	}
	return jsonResult(b)
}

type clearTool struct {
	eng *engine.Engine
}

func (t *clearTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_clear",
		mcp.WithDescription("Archive every task currently in Done, removing it from the active board."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
	)
}

func (t *clearTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	count, err := t.eng.Clear(ctx, boardName)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(struct {
		Archived int `json:"archived"`
	}{Archived: count})
}

type sweepTool struct {
	eng *engine.Engine
}

func (t *sweepTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_sweep",
		mcp.WithDescription("Apply a batch of moves atomically under the board lock. Either every move lands or none do; per-move outcomes are returned either way."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithArray("moves", mcp.Required(),
			mcp.Description("Moves to apply in order; each is {id, column}"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":     map[string]any{"type": "string"},
					"column": map[string]any{"type": "string"},
				},
				"required": []string{"id", "column"},
			})),
	)
}

func (t *sweepTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rawMoves, ok := req.GetArguments()["moves"].([]any)
	if !ok {
		return mcp.NewToolResultError("moves must be an array of {id, column} objects"), nil
	}

	moves := make([]engine.SweepMove, 0, len(rawMoves))
	for i, raw := range rawMoves {
		obj, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("moves[%d] must be an object", i)), nil
		}
		id, _ := obj["id"].(string)
		column, _ := obj["column"].(string)
		if id == "" || column == "" {
			return mcp.NewToolResultError(fmt.Sprintf("moves[%d] needs both id and column", i)), nil
		}

		id, err = resolveTask(ctx, t.eng, boardName, id)
		if err != nil {
			return toolError(err)
		}
		moves = append(moves, engine.SweepMove{TaskID: id, Column: column})
	}

	result, err := t.eng.Sweep(ctx, boardName, moves)
	if err != nil && result == nil {
		return toolError(err)
	}
	// A failed batch still carries per-move outcomes.
	return jsonResult(result)
}
