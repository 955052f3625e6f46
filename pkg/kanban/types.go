package kanban

import (
	"fmt"

	"github.com/google/uuid"
)

// Fixed anchor columns. Every board starts with Backlog and ends with Done;
// neither can be removed.
const (
	ColumnBacklog = "Backlog"
	ColumnDone    = "Done"
)

// Board represents one project's workflow: an ordered set of columns plus the
// tasks they contain. Boards are persisted as whole snapshots; Rev is the
// optimistic-concurrency revision bumped on every successful save.
type Board struct {
	Name        string           `json:"name"`         // Unique board identifier within the instance
	Columns     []Column         `json:"columns"`      // Display order, Backlog first, Done last
	Tasks       map[string]*Task `json:"tasks"`        // All active tasks keyed by ID
	Rev         int64            `json:"rev"`          // Snapshot revision, starts at 1
	CreatedAtMs int64            `json:"created_at_ms"`
	UpdatedAtMs int64            `json:"updated_at_ms"`
}

// Column is an ordered, named bucket of task IDs. Array order is the
// authoritative display order.
type Column struct {
	Name     string   `json:"name"`
	TaskIDs  []string `json:"task_ids"`
	WIPLimit int      `json:"wip_limit,omitempty"` // 0 = unlimited
}

// Task is a single work item. Column membership is derived from the board's
// column sequences and deliberately not stored on the task.
type Task struct {
	ID          string   `json:"id"`                    // UUID
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	Assignee    Assignee `json:"assignee"`
	Labels      []string `json:"labels,omitempty"`
	Context     string   `json:"context,omitempty"`     // Free-form AI working memory
	BlockedBy   []string `json:"blocked_by,omitempty"`  // Task IDs that must reach Done first

	// Automation hints consumed by external schedulers; the engine only
	// stores them.
	AutoPullThreshold  int `json:"auto_pull_threshold,omitempty"`
	AutoReleaseMinutes int `json:"auto_release_minutes,omitempty"`

	Comments    []Comment `json:"comments,omitempty"`
	CreatedAtMs int64     `json:"created_at_ms"`
	UpdatedAtMs int64     `json:"updated_at_ms"`
}

// Comment is a note on a task. Comments live inside their task document and
// are destroyed with it.
type Comment struct {
	ID          string `json:"id"` // UUID
	TaskID      string `json:"task_id"`
	Author      Author `json:"author"`
	Content     string `json:"content"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// Priority is the task priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Assignee identifies who a task is assigned to.
type Assignee string

const (
	AssigneeHuman      Assignee = "human"
	AssigneeAI         Assignee = "ai"
	AssigneeUnassigned Assignee = "unassigned"
)

// Author identifies who wrote a comment.
type Author string

const (
	AuthorHuman Author = "human"
	AuthorAI    Author = "ai"
)

// Validate checks if the Priority is a valid enum value.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	default:
		return fmt.Errorf("unknown priority: %q", p)
	}
}

// Validate checks if the Assignee is a valid enum value.
func (a Assignee) Validate() error {
	switch a {
	case AssigneeHuman, AssigneeAI, AssigneeUnassigned:
		return nil
	default:
		return fmt.Errorf("unknown assignee: %q", a)
	}
}

// Validate checks if the Author is a valid enum value.
func (a Author) Validate() error {
	switch a {
	case AuthorHuman, AuthorAI:
		return nil
	default:
		return fmt.Errorf("unknown author: %q", a)
	}
}

// Validate checks the board's structural invariants: anchor columns in place,
// unique column names, and every task in exactly one column.
func (b *Board) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("board name cannot be empty")
	}

	if len(b.Columns) < 2 {
		return fmt.Errorf("board must have at least the %s and %s columns", ColumnBacklog, ColumnDone)
	}

	if b.Columns[0].Name != ColumnBacklog {
		return fmt.Errorf("first column must be %s, got %q", ColumnBacklog, b.Columns[0].Name)
	}

	if b.Columns[len(b.Columns)-1].Name != ColumnDone {
		return fmt.Errorf("last column must be %s, got %q", ColumnDone, b.Columns[len(b.Columns)-1].Name)
	}

	seenColumns := make(map[string]bool, len(b.Columns))
	seenTasks := make(map[string]string, len(b.Tasks)) // taskID → column name
	for _, col := range b.Columns {
		if col.Name == "" {
			return fmt.Errorf("column name cannot be empty")
		}
		if seenColumns[col.Name] {
			return fmt.Errorf("duplicate column name: %q", col.Name)
		}
		seenColumns[col.Name] = true

		if col.WIPLimit < 0 {
			return fmt.Errorf("column %q: WIP limit cannot be negative", col.Name)
		}

		for _, id := range col.TaskIDs {
			if other, ok := seenTasks[id]; ok {
				return fmt.Errorf("task %s appears in both %q and %q", id, other, col.Name)
			}
			seenTasks[id] = col.Name

			if _, ok := b.Tasks[id]; !ok {
				return fmt.Errorf("column %q references unknown task %s", col.Name, id)
			}
		}
	}

	for id, task := range b.Tasks {
		if task == nil {
			return fmt.Errorf("task %s is nil", id)
		}
		if task.ID != id {
			return fmt.Errorf("task key %s does not match task ID %s", id, task.ID)
		}
		if _, ok := seenTasks[id]; !ok {
			return fmt.Errorf("task %s does not belong to any column", id)
		}
		if err := task.Validate(); err != nil {
			return fmt.Errorf("task %s: %w", id, err)
		}
	}

	return nil
}

// Validate checks the task's field values. Dangling blocked_by references are
// legal; only syntactically invalid IDs are rejected.
func (t *Task) Validate() error {
	if !isValidUUID(t.ID) {
		return fmt.Errorf("invalid task ID: not a valid UUID")
	}

	if t.Title == "" {
		return fmt.Errorf("task title cannot be empty")
	}

	if err := t.Priority.Validate(); err != nil {
		return err
	}

	if err := t.Assignee.Validate(); err != nil {
		return err
	}

	for i, blockerID := range t.BlockedBy {
		if !isValidUUID(blockerID) {
			return fmt.Errorf("invalid blocked_by entry at index %d: not a valid UUID", i)
		}
	}

	if t.AutoPullThreshold < 0 {
		return fmt.Errorf("auto_pull_threshold cannot be negative")
	}
	if t.AutoReleaseMinutes < 0 {
		return fmt.Errorf("auto_release_minutes cannot be negative")
	}

	for i, c := range t.Comments {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("comment at index %d: %w", i, err)
		}
	}

	return nil
}

// Validate checks the comment's field values.
func (c *Comment) Validate() error {
	if !isValidUUID(c.ID) {
		return fmt.Errorf("invalid comment ID: not a valid UUID")
	}

	if !isValidUUID(c.TaskID) {
		return fmt.Errorf("invalid comment task ID: not a valid UUID")
	}

	if err := c.Author.Validate(); err != nil {
		return err
	}

	if c.Content == "" {
		return fmt.Errorf("comment content cannot be empty")
	}

	return nil
}

// Column returns the column with the given name, or nil if it doesn't exist.
func (b *Board) Column(name string) *Column {
	for i := range b.Columns {
		if b.Columns[i].Name == name {
			return &b.Columns[i]
		}
	}
	return nil
}

// ColumnOf returns the name of the column containing the given task, or ""
// if the task is not on the board.
func (b *Board) ColumnOf(taskID string) string {
	for i := range b.Columns {
		for _, id := range b.Columns[i].TaskIDs {
			if id == taskID {
				return b.Columns[i].Name
			}
		}
	}
	return ""
}

// RemoveFromColumns removes the task ID from every column sequence.
// Returns the name of the column it was removed from, or "" if absent.
func (b *Board) RemoveFromColumns(taskID string) string {
	for i := range b.Columns {
		col := &b.Columns[i]
		for j, id := range col.TaskIDs {
			if id == taskID {
				col.TaskIDs = append(col.TaskIDs[:j], col.TaskIDs[j+1:]...)
				return col.Name
			}
		}
	}
	return ""
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
