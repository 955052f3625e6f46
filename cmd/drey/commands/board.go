package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/drey/internal/printer"
	"github.com/dyluth/drey/pkg/kanban"
)

var boardJSON bool

var boardCmd = &cobra.Command{
	Use:   "board BOARD",
	Short: "Show a board's columns and tasks",
	Long: `Show a board snapshot: every column in display order with its tasks.

Gating and WIP markers:
  ⛔ task has unresolved dependencies
  [2/3] column occupancy against its WIP limit

Examples:
  # Human-readable board view
  drey board sprint-12

  # Full snapshot as JSON for scripting
  drey board sprint-12 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBoard,
}

func init() {
	boardCmd.Flags().BoolVar(&boardJSON, "json", false, "Print the raw board snapshot as JSON")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}
	defer client.Close()

	b, err := client.GetBoard(context.Background(), args[0])
	if err != nil {
		if kanban.IsNotFound(err) {
			return printer.Error(
				"board not found",
				fmt.Sprintf("No board named '%s' on this instance.", args[0]),
				[]string{"List boards with: drey list", "Create it with: drey init " + args[0]},
			)
		}
		return err
	}

	if boardJSON {
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	renderBoard(os.Stdout, b)
	return nil
}

// renderBoard writes the human-readable board view.
func renderBoard(w io.Writer, b *kanban.Board) {
	fmt.Fprintf(w, "Board '%s' (%d tasks)\n", b.Name, len(b.Tasks))

	for _, col := range b.Columns {
		header := col.Name
		if col.WIPLimit > 0 {
			header = fmt.Sprintf("%s [%d/%d]", col.Name, len(col.TaskIDs), col.WIPLimit)
		}
		fmt.Fprintf(w, "\n%s\n%s\n", header, strings.Repeat("-", len(header)))

		if len(col.TaskIDs) == 0 {
			fmt.Fprintln(w, "  (empty)")
			continue
		}

		for _, id := range col.TaskIDs {
			task := b.Tasks[id]
			marker := " "
			if !dependenciesDone(b, task) {
				marker = "⛔"
			}
			line := fmt.Sprintf("  %s %s  %s", marker, shortID(id), task.Title)
			if task.Priority == kanban.PriorityHigh {
				line += "  (high)"
			}
			if task.Assignee != kanban.AssigneeUnassigned && task.Assignee != "" {
				line += fmt.Sprintf("  @%s", task.Assignee)
			}
			fmt.Fprintln(w, line)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// dependenciesDone mirrors the engine's gating rule for display purposes:
// unknown IDs count as resolved, everything else must sit in Done.
func dependenciesDone(b *kanban.Board, task *kanban.Task) bool {
	for _, dep := range task.BlockedBy {
		if dep == task.ID {
			continue
		}
		if _, exists := b.Tasks[dep]; !exists {
			continue
		}
		if b.ColumnOf(dep) != kanban.ColumnDone {
			return false
		}
	}
	return true
}
