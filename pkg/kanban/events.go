package kanban

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// EventKind identifies the board mutation that triggered an event.
type EventKind string

const (
	EventBoardCreated  EventKind = "board_created"
	EventBoardDeleted  EventKind = "board_deleted"
	EventTaskAdded     EventKind = "task_added"
	EventTaskMoved     EventKind = "task_moved"
	EventTaskReordered EventKind = "task_reordered"
	EventTaskEdited    EventKind = "task_edited"
	EventTaskDropped   EventKind = "task_dropped"
	EventCommentAdded  EventKind = "comment_added"
	EventColumnAdded   EventKind = "column_added"
	EventColumnRemoved EventKind = "column_removed"
	EventBoardCleared  EventKind = "board_cleared"
	EventBoardSwept    EventKind = "board_swept"
)

// Validate checks if the EventKind is a valid enum value.
func (k EventKind) Validate() error {
	switch k {
	case EventBoardCreated, EventBoardDeleted, EventTaskAdded, EventTaskMoved,
		EventTaskReordered, EventTaskEdited, EventTaskDropped, EventCommentAdded,
		EventColumnAdded, EventColumnRemoved, EventBoardCleared, EventBoardSwept:
		return nil
	default:
		return fmt.Errorf("unknown event kind: %q", k)
	}
}

// Event is a board-changed notification. Delivery is best-effort with no
// acknowledgement or retry; subscribers that miss an event re-fetch the
// board snapshot.
type Event struct {
	Board  string    `json:"board"`
	Kind   EventKind `json:"kind"`
	TaskID string    `json:"task_id,omitempty"` // Affected task, when the event is task-scoped
	Column string    `json:"column,omitempty"`  // Affected column, when relevant
	Detail string    `json:"detail,omitempty"`  // Human-readable summary
	AtMs   int64     `json:"at_ms"`             // Unix timestamp in milliseconds
}

// Subscription represents an active Pub/Sub subscription to board events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of board events.
// The channel is closed when the subscription is closed or the context is
// cancelled.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures and other non-fatal issues.
// The subscription continues after errors - messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// PublishEvent publishes a board event to the instance's events channel.
// Loss is acceptable: Redis Pub/Sub gives at-most-once delivery and
// subscribers can always re-fetch board state.
func (c *Client) PublishEvent(ctx context.Context, ev *Event) error {
	if err := ev.Kind.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := EventsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish board event: %w", err)
	}

	return nil
}

// SubscribeEvents subscribes to board change events for this instance.
// Returns a Subscription that delivers full event objects.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to prevent blocking.
// If the subscriber is too slow, events may be dropped by Redis Pub/Sub
// (at-most-once delivery).
func (c *Client) SubscribeEvents(ctx context.Context) (*Subscription, error) {
	channel := EventsChannel(c.instanceName)
	pubsub := c.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan *Event, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal board event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
