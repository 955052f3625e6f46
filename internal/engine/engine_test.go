package engine

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/drey/internal/lock"
	"github.com/dyluth/drey/pkg/kanban"
)

const testBoard = "demo"

// setupTestEngine creates an engine backed by miniredis with a board using
// the columns [Backlog, Todo, In Progress(WIP=1), Review, Done].
func setupTestEngine(t *testing.T, policy Policy) (*Engine, *kanban.Client) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	client, err := kanban.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	locker := lock.NewRedisLocker(client.RedisClient(),
		lock.WithAcquireTimeout(2*time.Second),
		lock.WithRetryInterval(5*time.Millisecond),
	)

	eng := New(client, locker, policy, kanban.AuthorAI)

	now := time.Now().UnixMilli()
	board := &kanban.Board{
		Name: testBoard,
		Columns: []kanban.Column{
			{Name: kanban.ColumnBacklog, TaskIDs: []string{}},
			{Name: "Todo", TaskIDs: []string{}},
			{Name: "In Progress", TaskIDs: []string{}, WIPLimit: 1},
			{Name: "Review", TaskIDs: []string{}},
			{Name: kanban.ColumnDone, TaskIDs: []string{}},
		},
		Tasks:       make(map[string]*kanban.Task),
		CreatedAtMs: now,
		UpdatedAtMs: now,
	}
	require.NoError(t, client.CreateBoard(context.Background(), board))

	return eng, client
}

// mustAdd creates a task or fails the test.
func mustAdd(t *testing.T, eng *Engine, req AddRequest) *kanban.Task {
	t.Helper()
	task, err := eng.Add(context.Background(), testBoard, req)
	require.NoError(t, err)
	return task
}

func TestAdd(t *testing.T) {
	eng, _ := setupTestEngine(t, Policy{})
	ctx := context.Background()

	t.Run("defaults to Backlog with medium priority", func(t *testing.T) {
		task := mustAdd(t, eng, AddRequest{Title: "design the schema"})

		assert.Equal(t, kanban.PriorityMedium, task.Priority)
		assert.Equal(t, kanban.AssigneeUnassigned, task.Assignee)

		b, err := eng.Board(ctx, testBoard)
		require.NoError(t, err)
		assert.Equal(t, kanban.ColumnBacklog, b.ColumnOf(task.ID))
	})

	t.Run("appends to the end of the target column", func(t *testing.T) {
		first := mustAdd(t, eng, AddRequest{Title: "first", Column: "Todo"})
		second := mustAdd(t, eng, AddRequest{Title: "second", Column: "Todo"})

		b, err := eng.Board(ctx, testBoard)
		require.NoError(t, err)
		todo := b.Column("Todo")
		require.Len(t, todo.TaskIDs, 2)
		assert.Equal(t, first.ID, todo.TaskIDs[0])
		assert.Equal(t, second.ID, todo.TaskIDs[1])
	})

	t.Run("accepts dangling blocked_by IDs", func(t *testing.T) {
		ghost := uuid.New().String()
		task := mustAdd(t, eng, AddRequest{Title: "blocked on a ghost", BlockedBy: []string{ghost}})
		assert.Equal(t, []string{ghost}, task.BlockedBy)
	})

	t.Run("rejects malformed blocked_by IDs", func(t *testing.T) {
		_, err := eng.Add(ctx, testBoard, AddRequest{Title: "bad", BlockedBy: []string{"not-a-uuid"}})
		require.Error(t, err)
		assert.True(t, kanban.IsValidation(err))
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := eng.Add(ctx, testBoard, AddRequest{})
		assert.True(t, kanban.IsValidation(err))
	})

	t.Run("rejects unknown column", func(t *testing.T) {
		_, err := eng.Add(ctx, testBoard, AddRequest{Title: "x", Column: "Limbo"})
		assert.True(t, kanban.IsNotFound(err))
	})

	t.Run("rejects unknown board", func(t *testing.T) {
		_, err := eng.Add(ctx, "no-such-board", AddRequest{Title: "x"})
		assert.True(t, kanban.IsNotFound(err))
	})
}

func TestEdit(t *testing.T) {
	eng, _ := setupTestEngine(t, Policy{})
	ctx := context.Background()

	task := mustAdd(t, eng, AddRequest{Title: "original", Column: "Todo"})

	t.Run("applies partial patch", func(t *testing.T) {
		title := "renamed"
		prio := kanban.PriorityHigh
		got, err := eng.Edit(ctx, testBoard, task.ID, TaskPatch{Title: &title, Priority: &prio})
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)
		assert.Equal(t, kanban.PriorityHigh, got.Priority)
		// Untouched fields survive.
		assert.Equal(t, kanban.AssigneeUnassigned, got.Assignee)
	})

	t.Run("never changes column membership", func(t *testing.T) {
		desc := "still in Todo"
		_, err := eng.Edit(ctx, testBoard, task.ID, TaskPatch{Description: &desc})
		require.NoError(t, err)

		b, err := eng.Board(ctx, testBoard)
		require.NoError(t, err)
		assert.Equal(t, "Todo", b.ColumnOf(task.ID))
	})

	t.Run("discards self-reference in blocked_by", func(t *testing.T) {
		other := uuid.New().String()
		blockers := []string{task.ID, other}
		got, err := eng.Edit(ctx, testBoard, task.ID, TaskPatch{BlockedBy: &blockers})
		require.NoError(t, err)
		assert.Equal(t, []string{other}, got.BlockedBy)
	})

	t.Run("rejects invalid enum", func(t *testing.T) {
		bad := kanban.Priority("urgent")
		_, err := eng.Edit(ctx, testBoard, task.ID, TaskPatch{Priority: &bad})
		assert.True(t, kanban.IsValidation(err))
	})

	t.Run("not-found for unknown task", func(t *testing.T) {
		title := "x"
		_, err := eng.Edit(ctx, testBoard, uuid.New().String(), TaskPatch{Title: &title})
		assert.True(t, kanban.IsNotFound(err))
	})
}

func TestBlock(t *testing.T) {
	eng, _ := setupTestEngine(t, Policy{})
	ctx := context.Background()

	task := mustAdd(t, eng, AddRequest{Title: "dependent"})
	blocker := mustAdd(t, eng, AddRequest{Title: "blocker"})

	t.Run("adds a dependency", func(t *testing.T) {
		got, err := eng.Block(ctx, testBoard, task.ID, blocker.ID, false)
		require.NoError(t, err)
		assert.Equal(t, []string{blocker.ID}, got.BlockedBy)
	})

	t.Run("adding twice is idempotent", func(t *testing.T) {
		got, err := eng.Block(ctx, testBoard, task.ID, blocker.ID, false)
		require.NoError(t, err)
		assert.Equal(t, []string{blocker.ID}, got.BlockedBy)
	})

	t.Run("self-block is ignored, not an error", func(t *testing.T) {
		got, err := eng.Block(ctx, testBoard, task.ID, task.ID, false)
		require.NoError(t, err)
		assert.Equal(t, []string{blocker.ID}, got.BlockedBy)
	})

	t.Run("removes a dependency", func(t *testing.T) {
		got, err := eng.Block(ctx, testBoard, task.ID, blocker.ID, true)
		require.NoError(t, err)
		assert.Empty(t, got.BlockedBy)
	})

	t.Run("removing an absent dependency is a no-op", func(t *testing.T) {
		got, err := eng.Block(ctx, testBoard, task.ID, blocker.ID, true)
		require.NoError(t, err)
		assert.Empty(t, got.BlockedBy)
	})
}

func TestDrop(t *testing.T) {
	eng, _ := setupTestEngine(t, Policy{})
	ctx := context.Background()

	blocker := mustAdd(t, eng, AddRequest{Title: "to be dropped"})
	dependent := mustAdd(t, eng, AddRequest{Title: "depends on it", BlockedBy: []string{blocker.ID}})
	_, err := eng.Comment(ctx, testBoard, blocker.ID, "note before the end", kanban.AuthorHuman)
	require.NoError(t, err)

	removed, err := eng.Drop(ctx, testBoard, blocker.ID)
	require.NoError(t, err)
	assert.Equal(t, blocker.ID, removed.ID)

	b, err := eng.Board(ctx, testBoard)
	require.NoError(t, err)

	t.Run("task and comments are gone", func(t *testing.T) {
		assert.NotContains(t, b.Tasks, blocker.ID)
		assert.Equal(t, "", b.ColumnOf(blocker.ID))
	})

	t.Run("scrubbed from other tasks' blocked_by", func(t *testing.T) {
		assert.Empty(t, b.Tasks[dependent.ID].BlockedBy)
	})

	t.Run("formerly-dependent task is now resolved", func(t *testing.T) {
		assert.True(t, DependenciesResolved(b, dependent.ID))
	})

	t.Run("dropping again is not-found", func(t *testing.T) {
		_, err := eng.Drop(ctx, testBoard, blocker.ID)
		assert.True(t, kanban.IsNotFound(err))
	})
}

func TestComment(t *testing.T) {
	eng, _ := setupTestEngine(t, Policy{})
	ctx := context.Background()

	task := mustAdd(t, eng, AddRequest{Title: "discussed"})

	t.Run("creates comment with explicit author", func(t *testing.T) {
		c, err := eng.Comment(ctx, testBoard, task.ID, "looks good", kanban.AuthorHuman)
		require.NoError(t, err)
		assert.Equal(t, kanban.AuthorHuman, c.Author)
		assert.Equal(t, task.ID, c.TaskID)
	})

	t.Run("defaults author to the engine actor", func(t *testing.T) {
		c, err := eng.Comment(ctx, testBoard, task.ID, "on it", "")
		require.NoError(t, err)
		assert.Equal(t, kanban.AuthorAI, c.Author)
	})

	t.Run("comments are returned in creation order", func(t *testing.T) {
		comments, err := eng.Comments(ctx, testBoard, task.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "looks good", comments[0].Content)
		assert.Equal(t, "on it", comments[1].Content)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		_, err := eng.Comment(ctx, testBoard, task.ID, "", kanban.AuthorHuman)
		assert.True(t, kanban.IsValidation(err))
	})
}

// mutate retries a lost write race once with a fresh snapshot, then gives up
// with ErrConflict. The conflicting writer is played by the mutation closure
// itself: it lands an out-of-band save between our read and our save, so
// every attempt loses deterministically.
func TestMutateConflictRetry(t *testing.T) {
	ctx := context.Background()

	conflictingSave := func(t *testing.T, client *kanban.Client) {
		t.Helper()
		other, err := client.GetBoard(ctx, testBoard)
		require.NoError(t, err)
		require.NoError(t, client.SaveBoard(ctx, other))
	}

	t.Run("one lost race is retried and absorbed", func(t *testing.T) {
		eng, client := setupTestEngine(t, Policy{})

		attempts := 0
		_, err := eng.mutate(ctx, testBoard, func(b *kanban.Board) error {
			attempts++
			if attempts == 1 {
				conflictingSave(t, client)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("two lost races surface ErrConflict", func(t *testing.T) {
		eng, client := setupTestEngine(t, Policy{})

		attempts := 0
		_, err := eng.mutate(ctx, testBoard, func(b *kanban.Board) error {
			attempts++
			conflictingSave(t, client)
			return nil
		})
		require.ErrorIs(t, err, kanban.ErrConflict)
		assert.Equal(t, 2, attempts)
	})
}

// Every task ends up in exactly one column, whatever sequence of mutations
// ran before.
func TestSingleColumnMembershipInvariant(t *testing.T) {
	eng, _ := setupTestEngine(t, Policy{})
	ctx := context.Background()

	a := mustAdd(t, eng, AddRequest{Title: "a"})
	b := mustAdd(t, eng, AddRequest{Title: "b", Column: "Todo"})
	c := mustAdd(t, eng, AddRequest{Title: "c"})

	_, err := eng.Move(ctx, testBoard, a.ID, "Todo")
	require.NoError(t, err)
	_, err = eng.Reorder(ctx, testBoard, b.ID, "Todo", a.ID)
	require.NoError(t, err)
	_, err = eng.Move(ctx, testBoard, c.ID, kanban.ColumnDone)
	require.NoError(t, err)
	_, err = eng.Move(ctx, testBoard, c.ID, kanban.ColumnBacklog)
	require.NoError(t, err)

	board, err := eng.Board(ctx, testBoard)
	require.NoError(t, err)

	// Board.Validate checks the membership invariant directly.
	require.NoError(t, board.Validate())
	for _, task := range []*kanban.Task{a, b, c} {
		seen := 0
		for _, col := range board.Columns {
			for _, id := range col.TaskIDs {
				if id == task.ID {
					seen++
				}
			}
		}
		assert.Equal(t, 1, seen, "task %s must be in exactly one column", task.Title)
	}
}
