package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/drey/internal/printer"
	"github.com/dyluth/drey/pkg/kanban"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:   "remove BOARD",
	Short: "Delete a board and its archive",
	Long: `Delete a board, its tasks and its archive from the instance.

This is irreversible; --force is required when the board still has tasks.

Examples:
  drey remove old-sprint
  drey remove busy-board --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&removeForce, "force", false, "Delete even if the board still has tasks")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	boardName := args[0]

	client, cfg, err := loadClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	b, err := client.GetBoard(ctx, boardName)
	if err != nil {
		if kanban.IsNotFound(err) {
			return printer.Error(
				"board not found",
				fmt.Sprintf("No board named '%s' on instance '%s'.", boardName, cfg.Instance),
				[]string{"List boards with: drey list"},
			)
		}
		return err
	}

	if len(b.Tasks) > 0 && !removeForce {
		return printer.Error(
			"board still has tasks",
			fmt.Sprintf("Board '%s' has %d tasks.", boardName, len(b.Tasks)),
			[]string{"Re-run with --force to delete anyway"},
		)
	}

	if err := client.DeleteBoard(ctx, boardName); err != nil {
		return err
	}

	_ = client.PublishEvent(ctx, &kanban.Event{
		Board: boardName,
		Kind:  kanban.EventBoardDeleted,
		AtMs:  time.Now().UnixMilli(),
	})

	printer.Success("Deleted board '%s'\n", boardName)
	return nil
}
