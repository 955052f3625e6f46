package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dyluth/drey/internal/engine"
	"github.com/dyluth/drey/pkg/kanban"
)

type searchTool struct {
	eng *engine.Engine
}

func (t *searchTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_search",
		mcp.WithDescription("Case-insensitive substring search over task title, description and context."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to search for")),
	)
}

func (t *searchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tasks, err := t.eng.Search(ctx, boardName, query)
	if err != nil {
		return toolError(err)
	}
	if tasks == nil {
		tasks = []*kanban.Task{}
	}
	return jsonResult(tasks)
}

type showTool struct {
	eng *engine.Engine
}

func (t *showTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_show",
		mcp.WithDescription("Show one task with its comments and current column."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID or unique prefix (6+ chars)")),
	)
}

func (t *showTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskID, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskID, err = resolveTask(ctx, t.eng, boardName, taskID)
	if err != nil {
		return toolError(err)
	}

	task, column, err := t.eng.Show(ctx, boardName, taskID)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(struct {
		Task   *kanban.Task `json:"task"`
		Column string       `json:"column"`
	}{Task: task, Column: column})
}

type commentsTool struct {
	eng *engine.Engine
}

func (t *commentsTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_comments",
		mcp.WithDescription("List a task's comments in creation order."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID or unique prefix (6+ chars)")),
	)
}

func (t *commentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskID, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskID, err = resolveTask(ctx, t.eng, boardName, taskID)
	if err != nil {
		return toolError(err)
	}

	comments, err := t.eng.Comments(ctx, boardName, taskID)
	if err != nil {
		return toolError(err)
	}
	if comments == nil {
		comments = []kanban.Comment{}
	}
	return jsonResult(comments)
}

type boardSnapshotTool struct {
	eng *engine.Engine
}

func (t *boardSnapshotTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_board",
		mcp.WithDescription("Full board snapshot: columns in display order plus every task."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
	)
}

func (t *boardSnapshotTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := t.eng.Board(ctx, boardName)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(b)
}

type statsTool struct {
	eng *engine.Engine
}

func (t *statsTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_stats",
		mcp.WithDescription("Per-column task counts and WIP status for limited columns."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
	)
}

func (t *statsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := t.eng.Stats(ctx, boardName)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(stats)
}

type listTool struct {
	eng *engine.Engine
}

func (t *listTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_list",
		mcp.WithDescription("List tasks in board display order, optionally filtered. Set mine to list the tasks assigned to the calling actor."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("assignee", mcp.Description("Filter: human, ai or unassigned")),
		mcp.WithString("column", mcp.Description("Filter: only this column")),
		mcp.WithString("label", mcp.Description("Filter: only tasks carrying this label")),
		mcp.WithBoolean("mine", mcp.Description("Only tasks assigned to the calling actor")),
	)
}

func (t *listTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tasks []*kanban.Task
	if req.GetBool("mine", false) {
		tasks, err = t.eng.Mine(ctx, boardName, req.GetString("column", ""))
	} else {
		tasks, err = t.eng.List(ctx, boardName, engine.ListFilter{
			Assignee: kanban.Assignee(req.GetString("assignee", "")),
			Column:   req.GetString("column", ""),
			Label:    req.GetString("label", ""),
		})
	}
	if err != nil {
		return toolError(err)
	}
	if tasks == nil {
		tasks = []*kanban.Task{}
	}
	return jsonResult(tasks)
}
