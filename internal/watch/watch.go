package watch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/drey/pkg/kanban"

	"github.com/dyluth/drey/internal/printer"
)

// Follow subscribes to the instance's event stream and writes one rendered
// line per event until the context is cancelled. When boardName is non-empty,
// events for other boards are skipped.
//
// Subscription errors are reported on the writer but do not stop the stream;
// the subscription skips the bad message and carries on.
func Follow(ctx context.Context, client *kanban.Client, boardName string, w io.Writer) error {
	sub, err := client.SubscribeEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to board events: %w", err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if boardName != "" && ev.Board != boardName {
				continue
			}
			fmt.Fprintln(w, printer.FormatEvent(ev))

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "warning: dropped event: %v\n", err)
		}
	}
}

// PollForBoard polls until a board exists, returning its first snapshot.
// Polls every 200ms for the specified timeout duration. Useful when waiting
// for another process to create the board.
func PollForBoard(ctx context.Context, client *kanban.Client, boardName string, timeout time.Duration) (*kanban.Board, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timeoutCh:
			return nil, fmt.Errorf("timeout waiting for board %q after %v", boardName, timeout)

		case <-ticker.C:
			b, err := client.GetBoard(ctx, boardName)
			if err != nil {
				if kanban.IsNotFound(err) {
					// Not created yet, continue polling
					continue
				}
				return nil, fmt.Errorf("failed to query for board: %w", err)
			}
			return b, nil
		}
	}
}
