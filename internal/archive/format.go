package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/drey/pkg/kanban"
)

// FormatTable writes archived tasks as a formatted table to the provided writer.
// The table includes columns: ID, PRIORITY, ASSIGNEE, AGE, and TITLE (truncated).
// Returns the number of tasks formatted.
func FormatTable(w io.Writer, tasks []*kanban.Task, boardName string) int {
	if len(tasks) == 0 {
		fmt.Fprintf(w, "No archived tasks found for board '%s'\n", boardName)
		return 0
	}

	fmt.Fprintf(w, "Archived tasks for board '%s':\n\n", boardName)

	fmt.Fprintf(w, "%-10s %-8s %-10s %-8s %s\n",
		"ID", "PRI", "ASSIGNEE", "AGE", "TITLE")
	fmt.Fprintf(w, "%-10s %-8s %-10s %-8s %s\n",
		"----------", "--------", "----------", "--------", "----------------------------------------")

	for _, task := range tasks {
		fmt.Fprintf(w, "%-10s %-8s %-10s %-8s %s\n",
			formatID(task.ID),
			formatPriority(task.Priority),
			formatAssignee(task.Assignee),
			formatTimestamp(task.CreatedAtMs),
			formatTitle(task.Title),
		)
	}

	countMsg := "task"
	if len(tasks) != 1 {
		countMsg = "tasks"
	}
	fmt.Fprintf(w, "\n%d archived %s found\n", len(tasks), countMsg)

	return len(tasks)
}

// FormatJSONL writes tasks as line-delimited JSON (JSONL) to the provided writer.
// Each task is written as a single JSON object on its own line.
// This format is ideal for streaming and processing with tools like jq.
func FormatJSONL(w io.Writer, tasks []*kanban.Task) error {
	for _, task := range tasks {
		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("failed to marshal task to JSON: %w", err)
		}

		_, err = fmt.Fprintf(w, "%s\n", string(data))
		if err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatSingleJSON writes a single task as pretty-printed JSON to the provided
// writer. Used in get mode to display complete task details.
func FormatSingleJSON(w io.Writer, task *kanban.Task) error {
	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task to JSON: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	fmt.Fprintln(w)

	return nil
}

// formatID truncates a task ID to its first 8 characters for compact display.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatTitle truncates the title to a single line of at most 40 characters.
// Empty titles return "-".
func formatTitle(title string) string {
	if title == "" {
		return "-"
	}

	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "-"
	}

	if len(title) > 40 {
		return title[:37] + "..."
	}
	return title
}

func formatAssignee(assignee kanban.Assignee) string {
	if assignee == "" {
		return "-"
	}
	return string(assignee)
}

func formatPriority(priority kanban.Priority) string {
	if priority == "" {
		return "-"
	}
	return string(priority)
}

// formatTimestamp formats Unix timestamp in milliseconds to human-readable
// relative time like "2m ago", "1h ago", etc.
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	t := time.Unix(timestampMs/1000, (timestampMs%1000)*1000000)
	diff := time.Since(t)

	if diff < time.Minute {
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
}
