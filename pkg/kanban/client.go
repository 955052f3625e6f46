package kanban

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides instance-scoped Redis operations for the board store.
// All keys and channels are automatically namespaced with the instance name.
// The client is thread-safe and can be used concurrently from multiple
// goroutines.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a new board store client for the specified instance.
// The client automatically namespaces all keys and channels with the
// instance name.
//
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// InstanceName returns the instance this client is scoped to.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// RedisClient exposes the underlying Redis client. Used by the lock manager
// and diagnostic tooling; board state should go through the typed methods.
func (c *Client) RedisClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the client should not be used.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// CreateBoard writes a brand-new board snapshot. Fails with a
// ValidationError if a board with the same name already exists: there is
// exactly one board per identifier.
func (c *Client) CreateBoard(ctx context.Context, b *Board) error {
	now := time.Now().UnixMilli()
	b.Rev = 1
	if b.CreatedAtMs == 0 {
		b.CreatedAtMs = now
	}
	b.UpdatedAtMs = now

	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to serialize board: %w", err)
	}

	key := BoardKey(c.instanceName, b.Name)
	created, err := c.rdb.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to write board to Redis: %w", err)
	}
	if !created {
		return NewValidationError("board %q already exists", b.Name)
	}

	return nil
}

// GetBoard retrieves a board snapshot by name.
// Returns an error wrapping ErrNotFound if the board doesn't exist; use
// IsNotFound() to check.
func (c *Client) GetBoard(ctx context.Context, boardName string) (*Board, error) {
	key := BoardKey(c.instanceName, boardName)

	raw, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("board %q: %w", boardName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read board from Redis: %w", err)
	}

	var b Board
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, fmt.Errorf("failed to deserialize board: %w", err)
	}
	if b.Tasks == nil {
		b.Tasks = make(map[string]*Task)
	}

	return &b, nil
}

// SaveBoard persists a mutated board snapshot using optimistic concurrency.
// The save succeeds only if the stored revision still equals b.Rev: the
// revision the caller read before mutating. On success b.Rev and
// b.UpdatedAtMs are advanced in place.
//
// Returns ErrConflict if another writer got there first. A caller that sees
// ErrConflict must re-read the board, re-apply its mutation, and save again.
func (c *Client) SaveBoard(ctx context.Context, b *Board) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}

	key := BoardKey(c.instanceName, b.Name)

	next := *b
	next.Rev = b.Rev + 1
	next.UpdatedAtMs = time.Now().UnixMilli()

	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to serialize board: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("board %q: %w", b.Name, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read board from Redis: %w", err)
		}

		var stored Board
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return fmt.Errorf("failed to deserialize stored board: %w", err)
		}
		if stored.Rev != b.Rev {
			return fmt.Errorf("board %q revision moved from %d to %d: %w",
				b.Name, b.Rev, stored.Rev, ErrConflict)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	err = c.rdb.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		// The key changed between GET and EXEC.
		return fmt.Errorf("board %q modified concurrently: %w", b.Name, ErrConflict)
	}
	if err != nil {
		return err
	}

	b.Rev = next.Rev
	b.UpdatedAtMs = next.UpdatedAtMs
	return nil
}

// DeleteBoard removes a board snapshot and its archive.
// Returns an error wrapping ErrNotFound if the board doesn't exist.
func (c *Client) DeleteBoard(ctx context.Context, boardName string) error {
	key := BoardKey(c.instanceName, boardName)

	removed, err := c.rdb.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("board %q: %w", boardName, ErrNotFound)
	}

	// Best-effort: the archive may legitimately be empty.
	if err := c.rdb.Del(ctx, ArchiveKey(c.instanceName, boardName)).Err(); err != nil {
		return fmt.Errorf("failed to delete board archive: %w", err)
	}

	return nil
}

// ListBoards returns the names of every board in this instance, sorted.
// Uses Redis SCAN to iterate without blocking the server.
func (c *Client) ListBoards(ctx context.Context) ([]string, error) {
	prefix := BoardKeyPrefix(c.instanceName)
	iter := c.rdb.Scan(ctx, 0, BoardKeyPattern(c.instanceName), 0).Iterator()

	var names []string
	for iter.Next(ctx) {
		names = append(names, iter.Val()[len(prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan boards: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// ArchiveTasks parks tasks in the board's archive hash.
// Idempotent: re-archiving the same task overwrites its archived document.
func (c *Client) ArchiveTasks(ctx context.Context, boardName string, tasks []*Task) error {
	if len(tasks) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(tasks))
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to serialize task %s for archive: %w", t.ID, err)
		}
		fields[t.ID] = string(data)
	}

	key := ArchiveKey(c.instanceName, boardName)
	if err := c.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	return nil
}

// ListArchivedTasks returns every archived task for a board, sorted by
// creation time. An empty archive is not an error.
func (c *Client) ListArchivedTasks(ctx context.Context, boardName string) ([]*Task, error) {
	key := ArchiveKey(c.instanceName, boardName)

	raw, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	tasks := make([]*Task, 0, len(raw))
	for id, doc := range raw {
		var t Task
		if err := json.Unmarshal([]byte(doc), &t); err != nil {
			return nil, fmt.Errorf("failed to deserialize archived task %s: %w", id, err)
		}
		tasks = append(tasks, &t)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAtMs != tasks[j].CreatedAtMs {
			return tasks[i].CreatedAtMs < tasks[j].CreatedAtMs
		}
		return tasks[i].ID < tasks[j].ID
	})

	return tasks, nil
}

// DeleteArchivedTasks removes entries from a board's archive hash.
// IDs without an archive entry are ignored.
func (c *Client) DeleteArchivedTasks(ctx context.Context, boardName string, taskIDs ...string) error {
	if len(taskIDs) == 0 {
		return nil
	}

	key := ArchiveKey(c.instanceName, boardName)
	if err := c.rdb.HDel(ctx, key, taskIDs...).Err(); err != nil {
		return fmt.Errorf("failed to delete archive entries: %w", err)
	}

	return nil
}

// GetArchivedTask retrieves a single archived task by ID.
// Returns an error wrapping ErrNotFound if it isn't in the archive.
func (c *Client) GetArchivedTask(ctx context.Context, boardName, taskID string) (*Task, error) {
	key := ArchiveKey(c.instanceName, boardName)

	doc, err := c.rdb.HGet(ctx, key, taskID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("archived task %s: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archived task: %w", err)
	}

	var t Task
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, fmt.Errorf("failed to deserialize archived task: %w", err)
	}

	return &t, nil
}
