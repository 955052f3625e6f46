package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dyluth/drey/internal/printer"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List boards on the current instance",
	Long: `List every board on the current instance with its task count.

Examples:
  # Boards on the default instance
  drey list

  # Boards on a named instance
  drey list --instance team-alpha`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	names, err := client.ListBoards(ctx)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		printer.Info("No boards on instance '%s'. Create one with: drey init <name>\n", cfg.Instance)
		return nil
	}

	printer.Printf("Boards on instance '%s':\n\n", cfg.Instance)
	printer.Printf("%-24s %-8s %s\n", "NAME", "TASKS", "COLUMNS")
	for _, name := range names {
		b, err := client.GetBoard(ctx, name)
		if err != nil {
			printer.Warning("skipping board '%s': %v\n", name, err)
			continue
		}
		printer.Printf("%-24s %-8d %d\n", b.Name, len(b.Tasks), len(b.Columns))
	}

	countMsg := "board"
	if len(names) != 1 {
		countMsg = "boards"
	}
	printer.Printf("\n%d %s found\n", len(names), countMsg)
	return nil
}
