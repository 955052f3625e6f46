package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dyluth/drey/pkg/kanban"
)

func TestRenderBoard(t *testing.T) {
	const (
		blockerID = "aaaa1111-0000-0000-0000-000000000001"
		blockedID = "bbbb2222-0000-0000-0000-000000000002"
	)

	b := &kanban.Board{
		Name: "demo",
		Columns: []kanban.Column{
			{Name: kanban.ColumnBacklog, TaskIDs: []string{blockedID}},
			{Name: "In Progress", TaskIDs: []string{blockerID}, WIPLimit: 2},
			{Name: kanban.ColumnDone, TaskIDs: []string{}},
		},
		Tasks: map[string]*kanban.Task{
			blockerID: {ID: blockerID, Title: "land the schema", Priority: kanban.PriorityHigh, Assignee: kanban.AssigneeAI},
			blockedID: {ID: blockedID, Title: "write the docs", BlockedBy: []string{blockerID}},
		},
	}

	var buf bytes.Buffer
	renderBoard(&buf, b)
	out := buf.String()

	assert.Contains(t, out, "Board 'demo' (2 tasks)")
	assert.Contains(t, out, "In Progress [1/2]")
	assert.Contains(t, out, "land the schema")
	assert.Contains(t, out, "(high)")
	assert.Contains(t, out, "@ai")
	// The blocked task carries the gating marker, the blocker does not.
	assert.Contains(t, out, "⛔ bbbb2222")
	assert.NotContains(t, out, "⛔ aaaa1111")
	assert.Contains(t, out, "(empty)")
}

func TestDependenciesDone(t *testing.T) {
	const (
		doneID     = "aaaa1111-0000-0000-0000-000000000001"
		pendingID  = "bbbb2222-0000-0000-0000-000000000002"
		danglingID = "cccc3333-0000-0000-0000-000000000003"
	)

	b := &kanban.Board{
		Name: "demo",
		Columns: []kanban.Column{
			{Name: kanban.ColumnBacklog, TaskIDs: []string{pendingID}},
			{Name: kanban.ColumnDone, TaskIDs: []string{doneID}},
		},
		Tasks: map[string]*kanban.Task{
			doneID:    {ID: doneID, Title: "finished"},
			pendingID: {ID: pendingID, Title: "pending"},
		},
	}

	assert.True(t, dependenciesDone(b, &kanban.Task{ID: "x", BlockedBy: []string{doneID}}))
	assert.True(t, dependenciesDone(b, &kanban.Task{ID: "x", BlockedBy: []string{danglingID}}))
	assert.True(t, dependenciesDone(b, &kanban.Task{ID: "x", BlockedBy: []string{"x"}}))
	assert.False(t, dependenciesDone(b, &kanban.Task{ID: "x", BlockedBy: []string{pendingID}}))
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-08-29")
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2026-08-29)", rootCmd.Version)
}
