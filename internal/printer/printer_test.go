package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/drey/pkg/kanban"
)

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		err := Error("Test Error", "This is a test error", []string{})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})

	t.Run("returns error with title when including suggestions", func(t *testing.T) {
		err := Error("Test Error", "Explanation", []string{"Try this fix"})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})

	t.Run("returns error with title for multiple suggestions", func(t *testing.T) {
		err := Error("Test Error", "Explanation", []string{
			"First option",
			"Second option",
		})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})
}

// Note: the Error function prints formatted output to stderr with colors. The
// error object returned only contains the title for Cobra's error handling.
// This is intentional to avoid duplicate output while providing rich formatted
// errors.

func TestFormatEvent(t *testing.T) {
	t.Run("includes board, kind, short id and column", func(t *testing.T) {
		line := FormatEvent(&kanban.Event{
			Board:  "demo",
			Kind:   kanban.EventTaskMoved,
			TaskID: "aaaa1111-0000-0000-0000-000000000001",
			Column: "Review",
			AtMs:   1700000000000,
		})
		assert.Contains(t, line, "[demo]")
		assert.Contains(t, line, "task_moved")
		assert.Contains(t, line, "aaaa1111")
		assert.NotContains(t, line, "aaaa1111-0000")
		assert.Contains(t, line, "Review")
	})

	t.Run("omits empty fields", func(t *testing.T) {
		line := FormatEvent(&kanban.Event{
			Board: "demo",
			Kind:  kanban.EventBoardCleared,
			AtMs:  1700000000000,
		})
		assert.Contains(t, line, "board_cleared")
		assert.NotContains(t, line, "→")
	})
}
