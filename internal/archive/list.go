package archive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dyluth/drey/pkg/kanban"
)

// OutputFormat specifies how to format the archived task list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated titles
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete tasks as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// FilterCriteria defines filtering options for the archive list command.
// All filters are ANDed together.
type FilterCriteria struct {
	SinceTimestampMs int64           // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64           // Unix timestamp in milliseconds, 0 = no filter
	Assignee         kanban.Assignee // Exact match, empty = no filter
	LabelGlob        string          // Glob pattern matched against each label, empty = no filter
}

// matchesFilter returns true if the task matches all filter criteria.
func (fc *FilterCriteria) matchesFilter(task *kanban.Task) bool {
	if fc.SinceTimestampMs > 0 && task.CreatedAtMs < fc.SinceTimestampMs {
		return false
	}
	if fc.UntilTimestampMs > 0 && task.CreatedAtMs > fc.UntilTimestampMs {
		return false
	}

	if fc.Assignee != "" && task.Assignee != fc.Assignee {
		return false
	}

	if fc.LabelGlob != "" {
		anyMatch := false
		for _, label := range task.Labels {
			if matched, err := filepath.Match(fc.LabelGlob, label); err == nil && matched {
				anyMatch = true
				break
			}
		}
		if !anyMatch {
			return false
		}
	}

	return true
}

// ListArchived retrieves the archived tasks for a board and writes them to
// the provided writer. Applies filter criteria if provided. Tasks come back
// from the store sorted by creation time for chronological output.
func ListArchived(ctx context.Context, client *kanban.Client, boardName string, format OutputFormat, filters *FilterCriteria, w io.Writer) error {
	tasks, err := client.ListArchivedTasks(ctx, boardName)
	if err != nil {
		return fmt.Errorf("failed to list archived tasks: %w", err)
	}

	if filters != nil {
		kept := tasks[:0]
		for _, task := range tasks {
			if filters.matchesFilter(task) {
				kept = append(kept, task)
			}
		}
		tasks = kept
	}

	switch format {
	case OutputFormatDefault:
		FormatTable(w, tasks, boardName)
	case OutputFormatJSONL:
		if err := FormatJSONL(w, tasks); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
