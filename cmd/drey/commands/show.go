package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/drey/internal/printer"
	"github.com/dyluth/drey/internal/resolver"
	"github.com/dyluth/drey/pkg/kanban"
)

var showCmd = &cobra.Command{
	Use:   "show BOARD TASK",
	Short: "Show one task with its comments",
	Long: `Show a task's full detail: fields, dependencies and comment history.

TASK may be the full UUID or a unique prefix of at least 6 characters.

Examples:
  # Show a task by short ID
  drey show sprint-12 aaaa11

  # Show a task by full UUID
  drey show sprint-12 aaaa1111-2222-3333-4444-555566667777`,
	Args: cobra.ExactArgs(2),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	boardName := args[0]

	client, _, err := loadClient()
	if err != nil {
		return err
	}
	defer client.Close()

	b, err := client.GetBoard(context.Background(), boardName)
	if err != nil {
		if kanban.IsNotFound(err) {
			return printer.Error(
				"board not found",
				fmt.Sprintf("No board named '%s' on this instance.", boardName),
				[]string{"List boards with: drey list"},
			)
		}
		return err
	}

	taskID, err := resolver.ResolveTaskID(b, args[1])
	if err != nil {
		return resolveError(err, boardName)
	}

	renderTask(os.Stdout, b, b.Tasks[taskID])
	return nil
}

// resolveError turns resolver failures into actionable CLI errors. Ambiguous
// prefixes list every candidate so the caller can pick a longer one.
func resolveError(err error, boardName string) error {
	var ambig *resolver.AmbiguousError
	if resolver.IsAmbiguousError(err) && errors.As(err, &ambig) {
		fmt.Fprintln(os.Stderr, resolver.FormatAmbiguousError(ambig))
		return fmt.Errorf("ambiguous short ID '%s'", ambig.ShortID)
	}
	if resolver.IsNotFoundError(err) || kanban.IsNotFound(err) {
		return printer.Error(
			"task not found",
			err.Error(),
			[]string{"List tasks with: drey board " + boardName},
		)
	}
	return err
}

// renderTask writes the detailed task view.
func renderTask(w io.Writer, b *kanban.Board, task *kanban.Task) {
	fmt.Fprintf(w, "%s  %s\n", shortID(task.ID), task.Title)
	fmt.Fprintf(w, "  id:        %s\n", task.ID)
	fmt.Fprintf(w, "  column:    %s\n", b.ColumnOf(task.ID))
	fmt.Fprintf(w, "  priority:  %s\n", task.Priority)
	fmt.Fprintf(w, "  assignee:  %s\n", task.Assignee)
	if len(task.Labels) > 0 {
		fmt.Fprintf(w, "  labels:    %s\n", strings.Join(task.Labels, ", "))
	}
	if task.Description != "" {
		fmt.Fprintf(w, "  description: %s\n", task.Description)
	}

	if len(task.BlockedBy) > 0 {
		fmt.Fprintln(w, "  blocked by:")
		for _, dep := range task.BlockedBy {
			switch col := b.ColumnOf(dep); {
			case col == "":
				fmt.Fprintf(w, "    %s (gone)\n", shortID(dep))
			case col == kanban.ColumnDone:
				fmt.Fprintf(w, "    %s (done)\n", shortID(dep))
			default:
				fmt.Fprintf(w, "    ⛔ %s (%s)\n", shortID(dep), col)
			}
		}
	}

	if len(task.Comments) > 0 {
		fmt.Fprintf(w, "\nComments (%d)\n", len(task.Comments))
		for _, c := range task.Comments {
			stamp := time.UnixMilli(c.CreatedAtMs).Format("2006-01-02 15:04")
			fmt.Fprintf(w, "  [%s] %s: %s\n", stamp, c.Author, c.Content)
		}
	}
}
