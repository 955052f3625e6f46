package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/drey/internal/resolver"
	"github.com/dyluth/drey/pkg/kanban"
)

func TestRenderTask(t *testing.T) {
	const (
		taskID    = "aaaa1111-0000-0000-0000-000000000001"
		doneDepID = "bbbb2222-0000-0000-0000-000000000002"
		openDepID = "cccc3333-0000-0000-0000-000000000003"
		goneDepID = "dddd4444-0000-0000-0000-000000000004"
	)

	b := &kanban.Board{
		Name: "demo",
		Columns: []kanban.Column{
			{Name: kanban.ColumnBacklog, TaskIDs: []string{taskID, openDepID}},
			{Name: kanban.ColumnDone, TaskIDs: []string{doneDepID}},
		},
		Tasks: map[string]*kanban.Task{
			taskID: {
				ID:        taskID,
				Title:     "ship the release",
				Priority:  kanban.PriorityHigh,
				Assignee:  kanban.AssigneeAI,
				Labels:    []string{"release", "urgent"},
				BlockedBy: []string{doneDepID, openDepID, goneDepID},
				Comments: []kanban.Comment{
					{ID: "e1", TaskID: taskID, Author: kanban.AuthorHuman, Content: "ready when CI is green", CreatedAtMs: time.Now().UnixMilli()},
				},
			},
			doneDepID: {ID: doneDepID, Title: "finished dep"},
			openDepID: {ID: openDepID, Title: "open dep"},
		},
	}

	var buf bytes.Buffer
	renderTask(&buf, b, b.Tasks[taskID])
	out := buf.String()

	assert.Contains(t, out, "ship the release")
	assert.Contains(t, out, "column:    Backlog")
	assert.Contains(t, out, "priority:  high")
	assert.Contains(t, out, "labels:    release, urgent")
	assert.Contains(t, out, "bbbb2222 (done)")
	assert.Contains(t, out, "⛔ cccc3333 (Backlog)")
	assert.Contains(t, out, "dddd4444 (gone)")
	assert.Contains(t, out, "Comments (1)")
	assert.Contains(t, out, "human: ready when CI is green")
}

func TestResolveError(t *testing.T) {
	t.Run("ambiguous prefixes list the candidates", func(t *testing.T) {
		ambig := &resolver.AmbiguousError{
			ShortID: "aaaa11",
			Matches: []string{
				"aaaa1111-0000-0000-0000-000000000001",
				"aaaa1122-0000-0000-0000-000000000002",
			},
		}
		err := resolveError(ambig, "demo")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous short ID 'aaaa11'")
	})

	t.Run("unknown prefix becomes a task-not-found error", func(t *testing.T) {
		err := resolveError(&resolver.NotFoundError{ShortID: "ffffff"}, "demo")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "task not found")
	})

	t.Run("other errors pass through", func(t *testing.T) {
		short := resolverShortError(t)
		assert.Equal(t, short, resolveError(short, "demo"))
	})
}

// resolverShortError produces the too-short-prefix error the resolver returns
// before scanning.
func resolverShortError(t *testing.T) error {
	t.Helper()
	b := &kanban.Board{Tasks: map[string]*kanban.Task{}}
	_, err := resolver.ResolveTaskID(b, "ab")
	require.Error(t, err)
	return err
}
