package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/drey/pkg/kanban"
)

// Read-only operations. These run lockless against the latest snapshot and
// tolerate eventual consistency with in-flight writers.

// Board returns the full current board snapshot.
func (e *Engine) Board(ctx context.Context, boardName string) (*kanban.Board, error) {
	return e.store.GetBoard(ctx, boardName)
}

// Show returns a task with its embedded comments, plus the column it
// currently sits in.
func (e *Engine) Show(ctx context.Context, boardName, taskID string) (*kanban.Task, string, error) {
	b, err := e.store.GetBoard(ctx, boardName)
	if err != nil {
		return nil, "", err
	}

	task, ok := b.Tasks[taskID]
	if !ok {
		return nil, "", fmt.Errorf("task %s: %w", taskID, kanban.ErrNotFound)
	}
	return task, b.ColumnOf(taskID), nil
}

// Comments returns a task's comments in creation order.
func (e *Engine) Comments(ctx context.Context, boardName, taskID string) ([]kanban.Comment, error) {
	task, _, err := e.Show(ctx, boardName, taskID)
	if err != nil {
		return nil, err
	}
	return task.Comments, nil
}

// Search returns every task whose title, description or context contains the
// query, case-insensitively, in board display order. No side effects.
func (e *Engine) Search(ctx context.Context, boardName, query string) ([]*kanban.Task, error) {
	if query == "" {
		return nil, kanban.NewValidationError("search query cannot be empty")
	}

	b, err := e.store.GetBoard(ctx, boardName)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []*kanban.Task
	for _, col := range b.Columns {
		for _, id := range col.TaskIDs {
			task := b.Tasks[id]
			if strings.Contains(strings.ToLower(task.Title), needle) ||
				strings.Contains(strings.ToLower(task.Description), needle) ||
				strings.Contains(strings.ToLower(task.Context), needle) {
				matches = append(matches, task)
			}
		}
	}
	return matches, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Assignee kanban.Assignee
	Column   string
	Label    string
}

// List returns tasks matching the filter, in board display order.
func (e *Engine) List(ctx context.Context, boardName string, filter ListFilter) ([]*kanban.Task, error) {
	b, err := e.store.GetBoard(ctx, boardName)
	if err != nil {
		return nil, err
	}

	if filter.Column != "" && b.Column(filter.Column) == nil {
		return nil, fmt.Errorf("column %q: %w", filter.Column, kanban.ErrNotFound)
	}

	var tasks []*kanban.Task
	for _, col := range b.Columns {
		if filter.Column != "" && col.Name != filter.Column {
			continue
		}
		for _, id := range col.TaskIDs {
			task := b.Tasks[id]
			if filter.Assignee != "" && task.Assignee != filter.Assignee {
				continue
			}
			if filter.Label != "" && !hasLabel(task, filter.Label) {
				continue
			}
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// Mine returns the tasks assigned to the engine's configured actor,
// optionally narrowed to one column.
func (e *Engine) Mine(ctx context.Context, boardName, column string) ([]*kanban.Task, error) {
	assignee := kanban.AssigneeHuman
	if e.actor == kanban.AuthorAI {
		assignee = kanban.AssigneeAI
	}
	return e.List(ctx, boardName, ListFilter{Assignee: assignee, Column: column})
}

// ColumnStats is the per-column slice of a Stats result.
type ColumnStats struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	WIPLimit int    `json:"wip_limit,omitempty"`
	AtLimit  bool   `json:"at_limit,omitempty"` // Occupancy >= limit, for limited columns
}

// BoardStats is the read-only aggregate returned by Stats.
type BoardStats struct {
	Board      string        `json:"board"`
	TotalTasks int           `json:"total_tasks"`
	Columns    []ColumnStats `json:"columns"`
}

// Stats returns per-column counts and WIP status for the board.
func (e *Engine) Stats(ctx context.Context, boardName string) (*BoardStats, error) {
	b, err := e.store.GetBoard(ctx, boardName)
	if err != nil {
		return nil, err
	}

	stats := &BoardStats{Board: boardName}
	for _, col := range b.Columns {
		cs := ColumnStats{
			Name:     col.Name,
			Count:    len(col.TaskIDs),
			WIPLimit: col.WIPLimit,
		}
		if col.WIPLimit > 0 && cs.Count >= col.WIPLimit {
			cs.AtLimit = true
		}
		stats.TotalTasks += cs.Count
		stats.Columns = append(stats.Columns, cs)
	}
	return stats, nil
}

func hasLabel(task *kanban.Task, label string) bool {
	for _, l := range task.Labels {
		if l == label {
			return true
		}
	}
	return false
}
