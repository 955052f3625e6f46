package kanban

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name to
// enable multiple Drey instances to safely coexist on a single Redis server.
//
// Key pattern: drey:{instance_name}:{entity}:{board_name}
// Channel pattern: drey:{instance_name}:board_events

// BoardKey returns the Redis key for a board snapshot.
// Pattern: drey:{instance_name}:board:{board_name}
func BoardKey(instanceName, boardName string) string {
	return fmt.Sprintf("drey:%s:board:%s", instanceName, boardName)
}

// BoardKeyPattern returns the SCAN pattern matching every board key for an
// instance.
func BoardKeyPattern(instanceName string) string {
	return fmt.Sprintf("drey:%s:board:*", instanceName)
}

// BoardKeyPrefix returns the prefix shared by every board key for an
// instance. Used to extract board names from scanned keys.
func BoardKeyPrefix(instanceName string) string {
	return fmt.Sprintf("drey:%s:board:", instanceName)
}

// BoardLockKey returns the Redis key for a board's mutual-exclusion lock.
// One lock per board, not per task.
// Pattern: drey:{instance_name}:lock:board:{board_name}
func BoardLockKey(instanceName, boardName string) string {
	return fmt.Sprintf("drey:%s:lock:board:%s", instanceName, boardName)
}

// ArchiveKey returns the Redis key for a board's archived-task hash.
// Fields are task IDs, values are task JSON documents.
// Pattern: drey:{instance_name}:archive:{board_name}
func ArchiveKey(instanceName, boardName string) string {
	return fmt.Sprintf("drey:%s:archive:%s", instanceName, boardName)
}

// EventsChannel returns the Pub/Sub channel name for board change events.
// All boards of an instance share one channel; subscribers filter on the
// event's board field.
// Pattern: drey:{instance_name}:board_events
func EventsChannel(instanceName string) string {
	return fmt.Sprintf("drey:%s:board_events", instanceName)
}
