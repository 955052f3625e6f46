package kanban

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the error kinds that callers branch on with errors.Is.
var (
	// ErrNotFound indicates an unknown board, task, column or comment ID.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a lost concurrent write race: the board snapshot
	// was modified between read and save. Callers re-read and retry.
	ErrConflict = errors.New("concurrent write conflict")

	// ErrLockTimeout indicates the board lock could not be acquired within
	// the configured budget. The caller may retry the whole operation.
	ErrLockTimeout = errors.New("lock acquisition timed out")
)

// ValidationError indicates malformed input, such as an empty title,
// a syntactically invalid task ID, or an attempt to remove a fixed column.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// NewValidationError creates a ValidationError with a formatted reason.
func NewValidationError(format string, a ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, a...)}
}

// DependencyUnresolvedError indicates a move into a gated column was refused
// because the task still has unfinished blockers.
type DependencyUnresolvedError struct {
	TaskID     string
	Column     string
	Unresolved []string // Blocker task IDs not yet in Done
}

func (e *DependencyUnresolvedError) Error() string {
	return fmt.Sprintf("task %s cannot enter %q: blocked by unresolved dependencies [%s]",
		e.TaskID, e.Column, strings.Join(e.Unresolved, ", "))
}

// WIPLimitError indicates a move was refused because the target column is at
// its work-in-progress limit.
type WIPLimitError struct {
	Column    string
	Limit     int
	Occupancy int // Current task count, before the refused move
}

func (e *WIPLimitError) Error() string {
	return fmt.Sprintf("column %q is at its WIP limit (%d/%d)", e.Column, e.Occupancy, e.Limit)
}

// IsNotFound returns true if the error is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
