package engine

import "github.com/dyluth/drey/pkg/kanban"

// Dependency resolution.
//
// A blocker is resolved when it no longer exists on the board (dangling
// references are treated as already resolved) or when it sits in the Done
// column. Self-references are ignored. Resolution is always evaluated inside
// the same read-modify-write cycle as the move it gates, so a blocker cannot
// be pulled out of Done between the check and the gated move.

// unresolvedDependencies returns the blocker IDs of the task that are
// present on the board but not in Done.
func unresolvedDependencies(b *kanban.Board, task *kanban.Task) []string {
	var unresolved []string
	for _, blockerID := range task.BlockedBy {
		if blockerID == task.ID {
			continue
		}
		if _, exists := b.Tasks[blockerID]; !exists {
			continue
		}
		if b.ColumnOf(blockerID) != kanban.ColumnDone {
			unresolved = append(unresolved, blockerID)
		}
	}
	return unresolved
}

// DependenciesResolved reports whether every blocker of the task is
// resolved. False for unknown task IDs.
func DependenciesResolved(b *kanban.Board, taskID string) bool {
	task, ok := b.Tasks[taskID]
	if !ok {
		return false
	}
	return len(unresolvedDependencies(b, task)) == 0
}

// gated reports whether the column requires resolved dependencies on entry.
func (e *Engine) gated(column string) bool {
	for _, name := range e.policy.GatedColumns {
		if name == column {
			return true
		}
	}
	return false
}
