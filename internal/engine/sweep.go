package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/drey/pkg/kanban"
)

// SweepMove is one move in a batch.
type SweepMove struct {
	TaskID string `json:"id"`
	Column string `json:"column"`
}

// SweepOutcome records the result of one move within a batch.
type SweepOutcome struct {
	TaskID string `json:"id"`
	Column string `json:"column"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// SweepResult is the outcome of a batch move.
type SweepResult struct {
	// Applied is true when every move succeeded and the board was saved.
	// When false the board is untouched.
	Applied  bool           `json:"applied"`
	Outcomes []SweepOutcome `json:"outcomes"`
}

// Sweep applies a batch of moves atomically under the board lock. Each move
// re-checks dependency and WIP rules against the in-progress snapshot; the
// first failure aborts the batch and nothing is persisted. Concurrent
// single-task writers don't take the lock, so the final save still goes
// through the snapshot CAS and the whole batch is re-applied on a lost race.
//
// Returns kanban.ErrLockTimeout (wrapped) when the board lock cannot be
// acquired within the configured budget. When a move fails, the returned
// error is that move's error and the result carries per-move outcomes.
func (e *Engine) Sweep(ctx context.Context, boardName string, moves []SweepMove) (*SweepResult, error) {
	if len(moves) == 0 {
		return nil, kanban.NewValidationError("sweep requires at least one move")
	}

	lockKey := kanban.BoardLockKey(e.store.InstanceName(), boardName)
	result := &SweepResult{}
	var moveErr error

	err := e.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		for attempt := 0; attempt < 2; attempt++ {
			b, err := e.store.GetBoard(ctx, boardName)
			if err != nil {
				return err
			}

			result.Outcomes = result.Outcomes[:0]
			moveErr = nil

			for _, mv := range moves {
				outcome := SweepOutcome{TaskID: mv.TaskID, Column: mv.Column}
				if _, err := e.applyMove(b, mv.TaskID, mv.Column, ""); err != nil {
					outcome.Error = err.Error()
					result.Outcomes = append(result.Outcomes, outcome)
					moveErr = fmt.Errorf("sweep move %s -> %q: %w", mv.TaskID, mv.Column, err)
					// All-or-nothing: the mutated snapshot is discarded.
					return nil
				}
				outcome.OK = true
				result.Outcomes = append(result.Outcomes, outcome)
			}

			saveErr := e.store.SaveBoard(ctx, b)
			if saveErr == nil {
				result.Applied = true
				return nil
			}
			if !errors.Is(saveErr, kanban.ErrConflict) {
				return saveErr
			}
			// A lockless single-task writer slipped in; re-apply the batch
			// against the fresh snapshot.
		}
		return fmt.Errorf("sweep on board %q: %w", boardName, kanban.ErrConflict)
	})
	if err != nil {
		return nil, err
	}
	if moveErr != nil {
		return result, moveErr
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventBoardSwept,
		Detail: fmt.Sprintf("%d tasks moved", len(moves)),
	})
	return result, nil
}
