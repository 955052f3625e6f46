package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dyluth/drey/internal/instance"
	"github.com/dyluth/drey/internal/printer"
	"github.com/dyluth/drey/pkg/kanban"
)

var initCmd = &cobra.Command{
	Use:   "init BOARD",
	Short: "Create a new board from the configured template",
	Long: `Create a new board using the column template from drey.yml.

The default template is Backlog, Todo, In Progress (WIP 3), Review, Done.
Creating a board that already exists fails; boards are never overwritten.

Examples:
  # Create a board on the default instance
  drey init sprint-12

  # Create a board on a named instance
  drey init sprint-12 --instance team-alpha`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	boardName := args[0]
	if err := instance.ValidateBoardName(boardName); err != nil {
		return printer.Error(
			"invalid board name",
			err.Error(),
			[]string{"Board names are lowercase alphanumeric with hyphens, e.g. sprint-12"},
		)
	}

	client, cfg, err := loadClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	b := cfg.NewBoard(boardName)
	if err := client.CreateBoard(ctx, b); err != nil {
		if kanban.IsValidation(err) {
			return printer.Error(
				"board already exists",
				err.Error(),
				[]string{"Pick a different name, or inspect it with: drey board " + boardName},
			)
		}
		return err
	}

	// Best-effort announcement; watchers re-fetch state anyway.
	_ = client.PublishEvent(ctx, &kanban.Event{
		Board: boardName,
		Kind:  kanban.EventBoardCreated,
		AtMs:  b.CreatedAtMs,
	})

	printer.Success("Created board '%s' on instance '%s'\n", boardName, cfg.Instance)
	printer.Info("Columns: ")
	for i, col := range b.Columns {
		if i > 0 {
			printer.Info(" → ")
		}
		printer.Info("%s", col.Name)
		if col.WIPLimit > 0 {
			printer.Info(" (WIP %d)", col.WIPLimit)
		}
	}
	printer.Info("\n")
	return nil
}
