package watch

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/drey/pkg/kanban"
)

func setupTestClient(t *testing.T) *kanban.Client {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	client, err := kanban.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

// syncBuffer guards a bytes.Buffer for cross-goroutine use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollow(t *testing.T) {
	client := setupTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, client, "demo", &out)
	}()

	// Give the subscriber time to attach before publishing.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, client.PublishEvent(ctx, &kanban.Event{
		Board:  "demo",
		Kind:   kanban.EventTaskAdded,
		TaskID: "aaaa1111-0000-0000-0000-000000000001",
		Column: "Backlog",
		AtMs:   time.Now().UnixMilli(),
	}))
	require.NoError(t, client.PublishEvent(ctx, &kanban.Event{
		Board: "other",
		Kind:  kanban.EventBoardCleared,
		AtMs:  time.Now().UnixMilli(),
	}))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "task_added")
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// The board filter drops events for other boards.
	assert.NotContains(t, out.String(), "board_cleared")
	assert.Contains(t, out.String(), "aaaa1111")
}

func TestPollForBoard(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	t.Run("returns board when found immediately", func(t *testing.T) {
		b := &kanban.Board{
			Name: "ready",
			Columns: []kanban.Column{
				{Name: kanban.ColumnBacklog, TaskIDs: []string{}},
				{Name: kanban.ColumnDone, TaskIDs: []string{}},
			},
			Tasks: map[string]*kanban.Task{},
		}
		require.NoError(t, client.CreateBoard(ctx, b))

		found, err := PollForBoard(ctx, client, "ready", 2*time.Second)
		require.NoError(t, err)
		require.Equal(t, "ready", found.Name)
	})

	t.Run("returns board created after a delay", func(t *testing.T) {
		go func() {
			time.Sleep(300 * time.Millisecond)
			b := &kanban.Board{
				Name: "late",
				Columns: []kanban.Column{
					{Name: kanban.ColumnBacklog, TaskIDs: []string{}},
					{Name: kanban.ColumnDone, TaskIDs: []string{}},
				},
				Tasks: map[string]*kanban.Task{},
			}
			_ = client.CreateBoard(context.Background(), b)
		}()

		found, err := PollForBoard(ctx, client, "late", 3*time.Second)
		require.NoError(t, err)
		require.Equal(t, "late", found.Name)
	})

	t.Run("times out when board never appears", func(t *testing.T) {
		_, err := PollForBoard(ctx, client, "never", 500*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout waiting for board")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := PollForBoard(cancelCtx, client, "never", time.Second)
		require.ErrorIs(t, err, context.Canceled)
	})
}
