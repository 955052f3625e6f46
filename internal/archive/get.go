package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dyluth/drey/pkg/kanban"
)

// GetArchived retrieves a single archived task by ID and writes it as
// pretty-printed JSON to the writer. Returns an error if the task ID is not a
// valid UUID or the task was never archived.
func GetArchived(ctx context.Context, client *kanban.Client, boardName, taskID string, w io.Writer) error {
	if _, err := uuid.Parse(taskID); err != nil {
		return fmt.Errorf("invalid task ID format: must be a valid UUID")
	}

	task, err := client.GetArchivedTask(ctx, boardName, taskID)
	if err != nil {
		if kanban.IsNotFound(err) {
			return &TaskNotFoundError{TaskID: taskID}
		}
		return fmt.Errorf("failed to fetch archived task: %w", err)
	}

	if err := FormatSingleJSON(w, task); err != nil {
		return fmt.Errorf("failed to format task: %w", err)
	}

	return nil
}

// TaskNotFoundError represents a specific "archived task not found" error.
// This allows callers to distinguish not-found errors from other failures.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("archived task with ID '%s' not found", e.TaskID)
}

// IsNotFound returns true if the error is a TaskNotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*TaskNotFoundError)
	return ok
}
