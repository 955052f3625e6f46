// Package engine implements the board transition engine: the state machine
// governing column membership, ordering, WIP limits and dependency gating
// for every task mutation.
//
// Single-task mutations are individually atomic: each one is a
// read-modify-write against the board snapshot, persisted with the store's
// optimistic compare-and-swap and retried once on a lost race before
// surfacing kanban.ErrConflict. Only Sweep (a multi-move batch) takes the
// explicit board lock. Every successful mutation publishes exactly one
// event; read-only operations run lockless against the latest snapshot.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dyluth/drey/internal/lock"
	"github.com/dyluth/drey/pkg/kanban"
)

// WIPPolicy selects how WIP limit violations are handled.
type WIPPolicy string

const (
	// WIPStrict hard-fails moves that would exceed a column's limit.
	WIPStrict WIPPolicy = "strict"

	// WIPWarn allows the move and attaches a warning to the result.
	WIPWarn WIPPolicy = "warn"
)

// Policy captures the configurable parts of the transition rules.
type Policy struct {
	// GatedColumns lists the columns a task may only enter once its
	// dependencies are resolved. Names that match no column are ignored.
	GatedColumns []string

	// WIP is the limit violation policy. Defaults to strict.
	WIP WIPPolicy

	// LockTimeout bounds how long Sweep waits for the board lock.
	LockTimeout time.Duration
}

// Engine executes board operations against the store.
type Engine struct {
	store  *kanban.Client
	locker lock.Locker
	policy Policy
	actor  kanban.Author // Stamped on comments when the caller doesn't say
}

// New creates an Engine. A nil locker is only acceptable if Sweep is never
// called.
func New(store *kanban.Client, locker lock.Locker, policy Policy, actor kanban.Author) *Engine {
	if policy.WIP == "" {
		policy.WIP = WIPStrict
	}
	if len(policy.GatedColumns) == 0 {
		policy.GatedColumns = []string{"Review", kanban.ColumnDone}
	}
	if policy.LockTimeout == 0 {
		policy.LockTimeout = 5 * time.Second
	}
	return &Engine{
		store:  store,
		locker: locker,
		policy: policy,
		actor:  actor,
	}
}

// Store exposes the underlying board store client.
func (e *Engine) Store() *kanban.Client {
	return e.store
}

// mutate runs fn against the current board snapshot and persists the result.
// A lost write race is retried once with a fresh snapshot (fn must therefore
// be safe to re-run); a second loss surfaces kanban.ErrConflict.
func (e *Engine) mutate(ctx context.Context, boardName string, fn func(b *kanban.Board) error) (*kanban.Board, error) {
	var saveErr error
	for attempt := 0; attempt < 2; attempt++ {
		b, err := e.store.GetBoard(ctx, boardName)
		if err != nil {
			return nil, err
		}

		if err := fn(b); err != nil {
			return nil, err
		}

		saveErr = e.store.SaveBoard(ctx, b)
		if saveErr == nil {
			return b, nil
		}
		if !errors.Is(saveErr, kanban.ErrConflict) {
			return nil, saveErr
		}
	}
	return nil, saveErr
}

// publish sends a board event. Best-effort: a delivery failure never fails
// the mutation that triggered it.
func (e *Engine) publish(ctx context.Context, ev *kanban.Event) {
	ev.AtMs = time.Now().UnixMilli()
	_ = e.store.PublishEvent(ctx, ev)
}

// AddRequest carries the parameters for Add.
type AddRequest struct {
	Title              string
	Column             string // Defaults to Backlog
	Description        string
	Priority           kanban.Priority // Defaults to medium
	Assignee           kanban.Assignee // Defaults to unassigned
	Labels             []string
	Context            string
	BlockedBy          []string
	AutoPullThreshold  int
	AutoReleaseMinutes int
}

// Add creates a task and appends it to the end of the target column's
// sequence. Referenced blocked_by IDs must be syntactically valid UUIDs, but
// they do not have to exist: dangling references are tolerated everywhere.
func (e *Engine) Add(ctx context.Context, boardName string, req AddRequest) (*kanban.Task, error) {
	if req.Title == "" {
		return nil, kanban.NewValidationError("task title cannot be empty")
	}
	if req.Column == "" {
		req.Column = kanban.ColumnBacklog
	}
	if req.Priority == "" {
		req.Priority = kanban.PriorityMedium
	}
	if req.Assignee == "" {
		req.Assignee = kanban.AssigneeUnassigned
	}
	if err := req.Priority.Validate(); err != nil {
		return nil, kanban.NewValidationError("%v", err)
	}
	if err := req.Assignee.Validate(); err != nil {
		return nil, kanban.NewValidationError("%v", err)
	}
	for _, blockerID := range req.BlockedBy {
		if _, err := uuid.Parse(blockerID); err != nil {
			return nil, kanban.NewValidationError("invalid blocked_by ID %q", blockerID)
		}
	}

	now := time.Now().UnixMilli()
	task := &kanban.Task{
		ID:                 uuid.New().String(),
		Title:              req.Title,
		Description:        req.Description,
		Priority:           req.Priority,
		Assignee:           req.Assignee,
		Labels:             req.Labels,
		Context:            req.Context,
		BlockedBy:          dedupe(req.BlockedBy),
		AutoPullThreshold:  req.AutoPullThreshold,
		AutoReleaseMinutes: req.AutoReleaseMinutes,
		CreatedAtMs:        now,
		UpdatedAtMs:        now,
	}

	_, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		col := b.Column(req.Column)
		if col == nil {
			return fmt.Errorf("column %q: %w", req.Column, kanban.ErrNotFound)
		}
		b.Tasks[task.ID] = task
		col.TaskIDs = append(col.TaskIDs, task.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventTaskAdded,
		TaskID: task.ID,
		Column: req.Column,
		Detail: task.Title,
	})
	return task, nil
}

// TaskPatch is a partial update of mutable task fields. Nil pointers leave
// the field untouched. Column membership is never changed by Edit.
type TaskPatch struct {
	Title              *string
	Description        *string
	Priority           *kanban.Priority
	Assignee           *kanban.Assignee
	Labels             *[]string
	Context            *string
	BlockedBy          *[]string
	AutoPullThreshold  *int
	AutoReleaseMinutes *int
}

// validate rejects malformed patch values before any board read happens.
func (p *TaskPatch) validate() error {
	if p.Title != nil && *p.Title == "" {
		return kanban.NewValidationError("task title cannot be empty")
	}
	if p.Priority != nil {
		if err := p.Priority.Validate(); err != nil {
			return kanban.NewValidationError("%v", err)
		}
	}
	if p.Assignee != nil {
		if err := p.Assignee.Validate(); err != nil {
			return kanban.NewValidationError("%v", err)
		}
	}
	if p.BlockedBy != nil {
		for _, blockerID := range *p.BlockedBy {
			if _, err := uuid.Parse(blockerID); err != nil {
				return kanban.NewValidationError("invalid blocked_by ID %q", blockerID)
			}
		}
	}
	if p.AutoPullThreshold != nil && *p.AutoPullThreshold < 0 {
		return kanban.NewValidationError("auto_pull_threshold cannot be negative")
	}
	if p.AutoReleaseMinutes != nil && *p.AutoReleaseMinutes < 0 {
		return kanban.NewValidationError("auto_release_minutes cannot be negative")
	}
	return nil
}

// apply writes the patch onto the task. Self-references in blocked_by are
// silently discarded, never an error.
func (p *TaskPatch) apply(task *kanban.Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.Assignee != nil {
		task.Assignee = *p.Assignee
	}
	if p.Labels != nil {
		task.Labels = *p.Labels
	}
	if p.Context != nil {
		task.Context = *p.Context
	}
	if p.BlockedBy != nil {
		blockers := make([]string, 0, len(*p.BlockedBy))
		for _, id := range dedupe(*p.BlockedBy) {
			if id == task.ID {
				continue
			}
			blockers = append(blockers, id)
		}
		task.BlockedBy = blockers
	}
	if p.AutoPullThreshold != nil {
		task.AutoPullThreshold = *p.AutoPullThreshold
	}
	if p.AutoReleaseMinutes != nil {
		task.AutoReleaseMinutes = *p.AutoReleaseMinutes
	}
	task.UpdatedAtMs = time.Now().UnixMilli()
}

// Edit applies a partial update to a task's mutable fields.
func (e *Engine) Edit(ctx context.Context, boardName, taskID string, patch TaskPatch) (*kanban.Task, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var task *kanban.Task
	_, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		var ok bool
		task, ok = b.Tasks[taskID]
		if !ok {
			return fmt.Errorf("task %s: %w", taskID, kanban.ErrNotFound)
		}
		patch.apply(task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventTaskEdited,
		TaskID: taskID,
	})
	return task, nil
}

// Block adds or removes a single dependency on a task. Blocking a task on
// itself is ignored, never a hard error.
func (e *Engine) Block(ctx context.Context, boardName, taskID, blockerID string, remove bool) (*kanban.Task, error) {
	if _, err := uuid.Parse(blockerID); err != nil {
		return nil, kanban.NewValidationError("invalid blocked_by ID %q", blockerID)
	}

	var task *kanban.Task
	_, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		var ok bool
		task, ok = b.Tasks[taskID]
		if !ok {
			return fmt.Errorf("task %s: %w", taskID, kanban.ErrNotFound)
		}

		blockers := make([]string, 0, len(task.BlockedBy)+1)
		for _, id := range task.BlockedBy {
			if id != blockerID {
				blockers = append(blockers, id)
			}
		}
		if !remove && blockerID != taskID {
			blockers = append(blockers, blockerID)
		}
		task.BlockedBy = blockers
		task.UpdatedAtMs = time.Now().UnixMilli()
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventTaskEdited,
		TaskID: taskID,
		Detail: fmt.Sprintf("dependency %s %s", blockerID, blockVerb(remove)),
	})
	return task, nil
}

func blockVerb(remove bool) string {
	if remove {
		return "removed"
	}
	return "added"
}

// Drop permanently removes a task and its comments, and scrubs the ID from
// every other task's blocked_by set. Returns the removed task.
func (e *Engine) Drop(ctx context.Context, boardName, taskID string) (*kanban.Task, error) {
	var task *kanban.Task
	_, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		var ok bool
		task, ok = b.Tasks[taskID]
		if !ok {
			return fmt.Errorf("task %s: %w", taskID, kanban.ErrNotFound)
		}

		b.RemoveFromColumns(taskID)
		delete(b.Tasks, taskID)

		// Referential cleanliness going forward, even though dangling
		// references would be tolerated.
		for _, other := range b.Tasks {
			other.BlockedBy = removeID(other.BlockedBy, taskID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventTaskDropped,
		TaskID: taskID,
		Detail: task.Title,
	})
	return task, nil
}

// Comment appends a comment to a task. An empty author defaults to the
// engine's configured actor.
func (e *Engine) Comment(ctx context.Context, boardName, taskID, content string, author kanban.Author) (*kanban.Comment, error) {
	if content == "" {
		return nil, kanban.NewValidationError("comment content cannot be empty")
	}
	if author == "" {
		author = e.actor
	}
	if err := author.Validate(); err != nil {
		return nil, kanban.NewValidationError("%v", err)
	}

	comment := kanban.Comment{
		ID:          uuid.New().String(),
		TaskID:      taskID,
		Author:      author,
		Content:     content,
		CreatedAtMs: time.Now().UnixMilli(),
	}

	_, err := e.mutate(ctx, boardName, func(b *kanban.Board) error {
		task, ok := b.Tasks[taskID]
		if !ok {
			return fmt.Errorf("task %s: %w", taskID, kanban.ErrNotFound)
		}
		task.Comments = append(task.Comments, comment)
		task.UpdatedAtMs = comment.CreatedAtMs
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, &kanban.Event{
		Board:  boardName,
		Kind:   kanban.EventCommentAdded,
		TaskID: taskID,
	})
	return &comment, nil
}

// dedupe returns ids with duplicates removed, preserving first-seen order.
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// removeID returns ids with every occurrence of target removed.
func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
