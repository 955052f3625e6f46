package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/drey/internal/printer"
	"github.com/dyluth/drey/internal/watch"
)

var watchWait time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [BOARD]",
	Short: "Stream board events in real time",
	Long: `Stream board mutations as they happen: task adds, moves, drops, sweeps
and column changes, one line per event.

Without a board name, events from every board on the instance are shown.
Delivery is best-effort; re-fetch the board with 'drey board' for the
authoritative state.

Examples:
  # Watch everything on the instance
  drey watch

  # Watch one board
  drey watch sprint-12

  # Wait for another session to create the board, then watch it
  drey watch sprint-12 --wait 30s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchWait, "wait", 0, "Wait up to this long for the board to be created before streaming")
	rootCmd.AddCommand(watchCmd)
}

// validateWatchArgs rejects flag combinations that cannot work.
func validateWatchArgs(boardName string, wait time.Duration) error {
	if wait > 0 && boardName == "" {
		return fmt.Errorf("--wait needs a board name to wait for")
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	boardName := ""
	if len(args) > 0 {
		boardName = args[0]
	}
	if err := validateWatchArgs(boardName, watchWait); err != nil {
		return printer.Error(
			"invalid watch arguments",
			err.Error(),
			[]string{"Name the board to wait for, e.g.: drey watch sprint-12 --wait 30s"},
		)
	}

	client, cfg, err := loadClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl-C stops the stream cleanly.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if watchWait > 0 {
		printer.Step("Waiting for board '%s' (up to %v)...\n", boardName, watchWait)
		if _, err := watch.PollForBoard(ctx, client, boardName, watchWait); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}

	if boardName != "" {
		printer.Info("Watching board '%s' on instance '%s' (Ctrl-C to stop)\n", boardName, cfg.Instance)
	} else {
		printer.Info("Watching all boards on instance '%s' (Ctrl-C to stop)\n", cfg.Instance)
	}

	err = watch.Follow(ctx, client, boardName, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
