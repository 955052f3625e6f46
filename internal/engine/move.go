package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/drey/pkg/kanban"
)

// MoveResult is the outcome of a successful move or reorder.
type MoveResult struct {
	Task *kanban.Task `json:"task"`

	// Warning is set when the WIP policy is "warn" and the move pushed a
	// column past its limit.
	Warning string `json:"warning,omitempty"`
}

// Move transfers a task to the end of the target column, enforcing
// dependency gating and the WIP limit. On failure no mutation occurs.
func (e *Engine) Move(ctx context.Context, boardName, taskID, targetColumn string) (*MoveResult, error) {
	result := &MoveResult{}

	_, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		warning, err := e.applyMove(b, taskID, targetColumn, "")
		if err != nil {
			return err
		}
		result.Task = b.Tasks[taskID]
		result.Warning = warning
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventTaskMoved,
		TaskID: taskID,
		Column: targetColumn,
	})
	return result, nil
}

// Reorder repositions a task within targetColumn, directly before beforeID
// or at the end when beforeID is empty or not found in the column
// (non-fatal). Moving into a different column applies the same gating and
// WIP rules as Move.
func (e *Engine) Reorder(ctx context.Context, boardName, taskID, targetColumn, beforeID string) (*MoveResult, error) {
	result := &MoveResult{}

	_, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		warning, err := e.applyMove(b, taskID, targetColumn, beforeID)
		if err != nil {
			return err
		}
		result.Task = b.Tasks[taskID]
		result.Warning = warning
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventTaskReordered,
		TaskID: taskID,
		Column: targetColumn,
	})
	return result, nil
}

// applyMove performs the in-memory transition: dependency gate, WIP check,
// removal from the current column, insertion into the target. It is the
// single code path for Move, Reorder and Sweep, so the rules cannot drift.
// Returns a warning string when the WIP policy allowed an over-limit move.
func (e *Engine) applyMove(b *kanban.Board, taskID, targetColumn, beforeID string) (string, error) {
	task, ok := b.Tasks[taskID]
	if !ok {
		return "", fmt.Errorf("task %s: %w", taskID, kanban.ErrNotFound)
	}

	target := b.Column(targetColumn)
	if target == nil {
		return "", fmt.Errorf("column %q: %w", targetColumn, kanban.ErrNotFound)
	}

	current := b.ColumnOf(taskID)

	if e.gated(targetColumn) && targetColumn != current {
		if unresolved := unresolvedDependencies(b, task); len(unresolved) > 0 {
			return "", &kanban.DependencyUnresolvedError{
				TaskID:     taskID,
				Column:     targetColumn,
				Unresolved: unresolved,
			}
		}
	}

	var warning string
	if target.WIPLimit > 0 && targetColumn != current {
		occupancy := len(target.TaskIDs)
		if occupancy+1 > target.WIPLimit {
			wipErr := &kanban.WIPLimitError{
				Column:    targetColumn,
				Limit:     target.WIPLimit,
				Occupancy: occupancy,
			}
			if e.policy.WIP == WIPStrict {
				return "", wipErr
			}
			warning = wipErr.Error()
		}
	}

	b.RemoveFromColumns(taskID)

	inserted := false
	if beforeID != "" {
		for i, id := range target.TaskIDs {
			if id == beforeID {
				target.TaskIDs = append(target.TaskIDs[:i],
					append([]string{taskID}, target.TaskIDs[i:]...)...)
				inserted = true
				break
			}
		}
	}
	if !inserted {
		target.TaskIDs = append(target.TaskIDs, taskID)
	}

	task.UpdatedAtMs = time.Now().UnixMilli()
	return warning, nil
}
