package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dyluth/drey/internal/engine"
	"github.com/dyluth/drey/pkg/kanban"
)

type addTool struct {
	eng *engine.Engine
}

func (t *addTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_add",
		mcp.WithDescription("Create a task and append it to the end of a column (default Backlog)."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("column", mcp.Description("Target column, defaults to Backlog")),
		mcp.WithString("description", mcp.Description("Longer task description")),
		mcp.WithString("priority", mcp.Description("low, medium or high (default medium)")),
		mcp.WithString("assignee", mcp.Description("human, ai or unassigned (default unassigned)")),
		mcp.WithString("context", mcp.Description("Free-form working context for the task")),
		mcp.WithArray("labels", mcp.Description("Labels to attach"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("blocked_by", mcp.Description("Full UUIDs of blocking tasks"),
			mcp.Items(map[string]any{"type": "string"})),
	)
}

func (t *addTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := t.eng.Add(ctx, boardName, engine.AddRequest{
		Title:       title,
		Column:      req.GetString("column", ""),
		Description: req.GetString("description", ""),
		Priority:    kanban.Priority(req.GetString("priority", "")),
		Assignee:    kanban.Assignee(req.GetString("assignee", "")),
		Context:     req.GetString("context", ""),
		Labels:      req.GetStringSlice("labels", nil),
		BlockedBy:   req.GetStringSlice("blocked_by", nil),
	})
	if err != nil {
		return toolError(err)
	}
	return jsonResult(task)
}

type moveTool struct {
	eng *engine.Engine
}

func (t *moveTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_move",
		mcp.WithDescription("Move a task to another column. Moves into gated columns require every blocked_by dependency to be in Done."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID or unique prefix (6+ chars)")),
		mcp.WithString("column", mcp.Required(), mcp.Description("Target column")),
	)
}

func (t *moveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskID, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	column, err := req.RequireString("column")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskID, err = resolveTask(ctx, t.eng, boardName, taskID)
	if err != nil {
		return toolError(err)
	}

	result, err := t.eng.Move(ctx, boardName, taskID, column)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(result)
}

type reorderTool struct {
	eng *engine.Engine
}

func (t *reorderTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_reorder",
		mcp.WithDescription("Reinsert a task in a column, before another task or at the end."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID or unique prefix (6+ chars)")),
		mcp.WithString("column", mcp.Required(), mcp.Description("Target column")),
		mcp.WithString("before_id", mcp.Description("Insert before this task; omitted or unknown means end of column")),
	)
}

func (t *reorderTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskID, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	column, err := req.RequireString("column")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskID, err = resolveTask(ctx, t.eng, boardName, taskID)
	if err != nil {
		return toolError(err)
	}

	result, err := t.eng.Reorder(ctx, boardName, taskID, column, req.GetString("before_id", ""))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(result)
}

// editArgKeys is the full set of arguments kanban_edit accepts. Anything else
// in the request is rejected rather than silently ignored.
var editArgKeys = map[string]bool{
	"board":                true,
	"id":                   true,
	"title":                true,
	"description":          true,
	"priority":             true,
	"assignee":             true,
	"labels":               true,
	"context":              true,
	"blocked_by":           true,
	"auto_pull_threshold":  true,
	"auto_release_minutes": true,
}

type editTool struct {
	eng *engine.Engine
}

func (t *editTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_edit",
		mcp.WithDescription("Partially update a task's fields. Never changes column membership."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID or unique prefix (6+ chars)")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("priority", mcp.Description("low, medium or high")),
		mcp.WithString("assignee", mcp.Description("human, ai or unassigned")),
		mcp.WithString("context", mcp.Description("New working context")),
		mcp.WithArray("labels", mcp.Description("Replacement label set"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("blocked_by", mcp.Description("Replacement dependency set (full UUIDs)"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithNumber("auto_pull_threshold", mcp.Description("Automation hint: column occupancy that triggers a pull")),
		mcp.WithNumber("auto_release_minutes", mcp.Description("Automation hint: minutes before an idle task is released")),
	)
}

func (t *editTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskID, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := req.GetArguments()
	for key := range args {
		if !editArgKeys[key] {
			return mcp.NewToolResultError(fmt.Sprintf("unknown field %q", key)), nil
		}
	}

	var patch engine.TaskPatch
	if _, ok := args["title"]; ok {
		v := req.GetString("title", "")
		patch.Title = &v
	}
	if _, ok := args["description"]; ok {
		v := req.GetString("description", "")
		patch.Description = &v
	}
	if _, ok := args["priority"]; ok {
		v := kanban.Priority(req.GetString("priority", ""))
		patch.Priority = &v
	}
	if _, ok := args["assignee"]; ok {
		v := kanban.Assignee(req.GetString("assignee", ""))
		patch.Assignee = &v
	}
	if _, ok := args["context"]; ok {
		v := req.GetString("context", "")
		patch.Context = &v
	}
	if _, ok := args["labels"]; ok {
		v := req.GetStringSlice("labels", []string{})
		patch.Labels = &v
	}
	if _, ok := args["blocked_by"]; ok {
		v := req.GetStringSlice("blocked_by", []string{})
		patch.BlockedBy = &v
	}
	if _, ok := args["auto_pull_threshold"]; ok {
		v := req.GetInt("auto_pull_threshold", 0)
		patch.AutoPullThreshold = &v
	}
	if _, ok := args["auto_release_minutes"]; ok {
		v := req.GetInt("auto_release_minutes", 0)
		patch.AutoReleaseMinutes = &v
	}

	taskID, err = resolveTask(ctx, t.eng, boardName, taskID)
	if err != nil {
		return toolError(err)
	}

	task, err := t.eng.Edit(ctx, boardName, taskID, patch)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(task)
}

type dropTool struct {
	eng *engine.Engine
}

func (t *dropTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_drop",
		mcp.WithDescription("Remove a task and its comments; the task's ID is scrubbed from every other task's blocked_by."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID or unique prefix (6+ chars)")),
	)
}

func (t *dropTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	task, err := t.eng.Drop(ctx, boardName, taskID)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(task)
}

type blockTool struct {
	eng *engine.Engine
}

func (t *blockTool) Definition() mcp.Tool {
	return mcp.NewTool("kanban_block",
		mcp.WithDescription("Add or remove one dependency on another task."),
		mcp.WithString("board", mcp.Required(), mcp.Description("Board name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID or unique prefix (6+ chars)")),
		mcp.WithString("blocked_by", mcp.Required(), mcp.Description("Blocking task's ID or unique prefix")),
		mcp.WithBoolean("remove", mcp.Description("Remove the dependency instead of adding it")),
	)
}

func (t *blockTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardName, err := req.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	taskID, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	blockerID, err := req.RequireString("blocked_by")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	taskID, err = resolveTask(ctx, t.eng, boardName, taskID)
	if err != nil {
		return toolError(err)
	}
	blockerID, err = resolveTask(ctx, t.eng, boardName, blockerID)
	if err != nil {
		return toolError(err)
	}

	task, err := t.eng.Block(ctx, boardName, taskID, blockerID, req.GetBool("remove", false))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(task)
}
