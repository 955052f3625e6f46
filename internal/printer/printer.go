package printer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/dyluth/drey/pkg/kanban"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Printf("✓ %s", msg)
	} else {
		green.Print(msg)
	}
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Warning prints a warning message in yellow with a warning emoji prefix
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		yellow.Printf("⚠️  %s", msg)
	} else {
		yellow.Print(msg)
	}
}

// Error creates a formatted error message with title, explanation, and suggestions
// Prints the formatted error to stderr with colors and returns a simple error for Cobra
func Error(title string, explanation string, suggestions []string) error {
	red.Fprintf(os.Stderr, "%s\n\n", title)

	fmt.Fprintf(os.Stderr, "%s\n", explanation)

	if len(suggestions) > 0 {
		fmt.Fprintf(os.Stderr, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(os.Stderr, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(os.Stderr, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	// Return simple error for Cobra (won't be printed due to SilenceErrors)
	return fmt.Errorf("%s", title)
}

// Step prints a step message with emphasis (used in multi-step operations)
func Step(format string, a ...any) {
	cyan.Printf("→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message (for output that doesn't need coloring)
func Println(a ...any) {
	fmt.Println(a...)
}

// Printf prints a plain formatted message (for output that doesn't need coloring)
func Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

// FormatEvent renders a board event as a single line for watch output.
// The timestamp is faint, the kind is colored by its severity.
func FormatEvent(ev *kanban.Event) string {
	stamp := faint.Sprint(time.UnixMilli(ev.AtMs).Format("15:04:05"))

	kind := string(ev.Kind)
	switch ev.Kind {
	case kanban.EventTaskDropped, kanban.EventBoardDeleted:
		kind = red.Sprint(kind)
	case kanban.EventTaskMoved, kanban.EventTaskAdded:
		kind = green.Sprint(kind)
	default:
		kind = cyan.Sprint(kind)
	}

	parts := []string{stamp, fmt.Sprintf("[%s]", ev.Board), kind}
	if ev.TaskID != "" {
		id := ev.TaskID
		if len(id) > 8 {
			id = id[:8]
		}
		parts = append(parts, id)
	}
	if ev.Column != "" {
		parts = append(parts, "→ "+ev.Column)
	}
	if ev.Detail != "" {
		parts = append(parts, faint.Sprint(ev.Detail))
	}
	return strings.Join(parts, " ")
}
