// Package kanban provides the board data model and Redis-backed board store
// for the Drey task engine.
//
// # Overview
//
// A board is a named collection of ordered columns, each holding an ordered
// sequence of task IDs. Boards are stored in Redis as whole-document JSON
// snapshots with a monotonically increasing revision counter. All writers go
// through SaveBoard, which performs an optimistic compare-and-swap on the
// revision so that concurrent read-modify-write cycles never interleave
// silently: the loser of a race gets ErrConflict and re-reads.
//
// # Core Concepts
//
// Tasks are the unit of work. A task lives in exactly one column at any time
// (membership is derived from the column sequences, never stored twice) and
// carries a blocked_by set of other task IDs. A task whose blockers are not
// all in the Done column cannot enter a gated column.
//
// Comments are exclusively owned by their task and are embedded in the task
// document, so they are created and destroyed with it.
//
// Archived tasks are removed from the active board and parked in a per-board
// Redis hash, where they remain queryable.
//
// # Multi-Instance Support
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so
// multiple Drey instances can safely coexist on a single Redis server. Each
// instance can serve any number of independent boards.
//
// # Redis Schema
//
// Boards: drey:{instance_name}:board:{board_name}
// Board locks: drey:{instance_name}:lock:board:{board_name}
// Archives: drey:{instance_name}:archive:{board_name}
//
// Pub/Sub channel: drey:{instance_name}:board_events
//
// Every successful board mutation publishes exactly one Event to the board
// events channel. Delivery is best-effort (Redis Pub/Sub at-most-once);
// subscribers re-fetch board state when they need the truth.
package kanban
