package engine

import (
	"context"
	"fmt"

	"github.com/dyluth/drey/pkg/kanban"
)

// AddColumn inserts a new column directly before the terminal Done column.
func (e *Engine) AddColumn(ctx context.Context, boardName, columnName string, wipLimit int) (*kanban.Board, error) {
	if columnName == "" {
		return nil, kanban.NewValidationError("column name cannot be empty")
	}
	if wipLimit < 0 {
		return nil, kanban.NewValidationError("WIP limit cannot be negative")
	}

	b, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		if b.Column(columnName) != nil {
			return kanban.NewValidationError("column %q already exists", columnName)
		}

		// Insert before Done, which Validate guarantees is last.
		doneIdx := len(b.Columns) - 1
		b.Columns = append(b.Columns[:doneIdx],
			append([]kanban.Column{{Name: columnName, TaskIDs: []string{}, WIPLimit: wipLimit}},
				b.Columns[doneIdx:]...)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventColumnAdded,
		Column: columnName,
	})
	return b, nil
}

// RemoveColumn deletes a column, relocating its tasks to the end of Backlog.
// The fixed Backlog and Done columns can never be removed.
func (e *Engine) RemoveColumn(ctx context.Context, boardName, columnName string) (*kanban.Board, error) {
	if columnName == kanban.ColumnBacklog || columnName == kanban.ColumnDone {
		return nil, kanban.NewValidationError("column %q is fixed and cannot be removed", columnName)
	}

	b, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		col := b.Column(columnName)
		if col == nil {
			return fmt.Errorf("column %q: %w", columnName, kanban.ErrNotFound)
		}

		displaced := col.TaskIDs

		for i := range b.Columns {
			if b.Columns[i].Name == columnName {
				b.Columns = append(b.Columns[:i], b.Columns[i+1:]...)
				break
			}
		}

		backlog := b.Column(kanban.ColumnBacklog)
		backlog.TaskIDs = append(backlog.TaskIDs, displaced...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventColumnRemoved,
		Column: columnName,
	})
	return b, nil
}

// Clear archives every task currently in Done, removing it from the active
// board view. Returns the number of tasks archived.
//
// Tasks are parked in the archive before the snapshot save, so a CAS retry
// simply re-parks them (the archive write is idempotent). If the mutation
// ultimately fails, the parked entries for tasks still active on the board
// are removed again so the archive never lists live tasks.
func (e *Engine) Clear(ctx context.Context, boardName string) (int, error) {
	archivedCount := 0
	parked := make(map[string]bool)

	_, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		done := b.Column(kanban.ColumnDone)
		if len(done.TaskIDs) == 0 {
			archivedCount = 0
			return nil
		}

		archived := make([]*kanban.Task, 0, len(done.TaskIDs))
		for _, id := range done.TaskIDs {
			archived = append(archived, b.Tasks[id])
		}

		if err := e.store.ArchiveTasks(ctx, boardName, archived); err != nil {
			return err
		}
		for _, id := range done.TaskIDs {
			parked[id] = true
		}

		for _, id := range done.TaskIDs {
			delete(b.Tasks, id)
		}
		done.TaskIDs = []string{}
		archivedCount = len(archived)
		return nil
	})
	if err != nil {
		e.unparkActive(ctx, boardName, parked)
		return 0, err
	}

	if archivedCount > 0 {
		e.publish(ctx, &kanban.Event{
			Board:  boardName,
			Kind:   kanban.EventBoardCleared,
			Detail: fmt.Sprintf("%d tasks archived", archivedCount),
		})
	}
	return archivedCount, nil
}

// unparkActive removes archive entries for tasks that are still active on the
// board, compensating for a clear that parked its tasks but failed to save.
// Entries for tasks no longer on the board are kept: a concurrent clear owns
// those. Best-effort, like the parking it undoes.
func (e *Engine) unparkActive(ctx context.Context, boardName string, parked map[string]bool) {
	if len(parked) == 0 {
		return
	}

	b, err := e.store.GetBoard(ctx, boardName)
	if err != nil {
		return
	}

	var stale []string
	for id := range parked {
		if _, active := b.Tasks[id]; active {
			stale = append(stale, id)
		}
	}
	_ = e.store.DeleteArchivedTasks(ctx, boardName, stale...)
}
