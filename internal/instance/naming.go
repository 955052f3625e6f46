package instance

import (
	"fmt"
	"regexp"
)

const (
	// DefaultName is the instance used when no configuration names one.
	DefaultName = "default"

	// MaxNameLength is the maximum length for an instance name (DNS-compatible)
	MaxNameLength = 63
)

var (
	// NamePattern is the regex pattern for valid instance names.
	// Must be DNS-compatible: lowercase alphanumeric, hyphens allowed (but not
	// at start/end). Allows single character or multiple characters with
	// optional hyphens in between.
	NamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)
)

// ValidateName checks if an instance name is valid according to DNS naming rules.
// Instance names end up embedded in Redis keys, so anything that survives this
// check produces unambiguous key paths.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("instance name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("instance name too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid instance name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}

// ValidateBoardName applies the same naming rules to board names, which share
// the key space with instance names.
func ValidateBoardName(name string) error {
	if name == "" {
		return fmt.Errorf("board name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("board name too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid board name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}
