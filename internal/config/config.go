// Package config loads and validates drey.yml, the per-project configuration
// for the Drey board engine.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/drey/pkg/kanban"
)

// WIP limit violation policies.
const (
	// WIPPolicyStrict refuses moves that would exceed a column's WIP limit.
	WIPPolicyStrict = "strict"

	// WIPPolicyWarn allows the move but attaches a warning to the result.
	WIPPolicyWarn = "warn"
)

// DefaultConfigFile is the conventional config file name.
const DefaultConfigFile = "drey.yml"

// Config represents the top-level drey.yml configuration.
type Config struct {
	Version  string      `yaml:"version"`
	Instance string      `yaml:"instance"`        // Redis namespace; also the MCP server scope
	Actor    string      `yaml:"actor,omitempty"` // "human" or "ai"; who this session acts as
	Redis    RedisConfig `yaml:"redis,omitempty"`
	Board    BoardConfig `yaml:"board,omitempty"`
}

// RedisConfig specifies how to reach the board store.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// BoardConfig specifies the board template and engine policy.
type BoardConfig struct {
	Columns      []ColumnTemplate `yaml:"columns,omitempty"`       // Template applied by `drey init`
	GatedColumns []string         `yaml:"gated_columns,omitempty"` // Columns requiring resolved dependencies
	WIPPolicy    string           `yaml:"wip_policy,omitempty"`    // "strict" or "warn"
	LockTimeout  string           `yaml:"lock_timeout,omitempty"`  // Go duration, e.g. "5s"
}

// ColumnTemplate is one column in the board template.
type ColumnTemplate struct {
	Name     string `yaml:"name"`
	WIPLimit int    `yaml:"wip_limit,omitempty"`
}

// Load reads and parses a drey.yml file, applies defaults, and validates.
// A missing file is not an error: the built-in defaults are returned so the
// CLI works out of the box.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := &Config{}
		cfg.ApplyDefaults()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyDefaults fills in every unset field. The DREY_ACTOR environment
// variable overrides the configured actor, letting AI sessions identify
// themselves without editing the project file.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Instance == "" {
		c.Instance = "default"
	}
	if actor := os.Getenv("DREY_ACTOR"); actor != "" {
		c.Actor = actor
	}
	if c.Actor == "" {
		c.Actor = string(kanban.AuthorHuman)
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if len(c.Board.Columns) == 0 {
		c.Board.Columns = []ColumnTemplate{
			{Name: kanban.ColumnBacklog},
			{Name: "Todo"},
			{Name: "In Progress", WIPLimit: 3},
			{Name: "Review"},
			{Name: kanban.ColumnDone},
		}
	}
	if len(c.Board.GatedColumns) == 0 {
		c.Board.GatedColumns = []string{"Review", kanban.ColumnDone}
	}
	if c.Board.WIPPolicy == "" {
		c.Board.WIPPolicy = WIPPolicyStrict
	}
	if c.Board.LockTimeout == "" {
		c.Board.LockTimeout = "5s"
	}
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := kanban.Author(c.Actor).Validate(); err != nil {
		return fmt.Errorf("invalid actor: %w", err)
	}

	switch c.Board.WIPPolicy {
	case WIPPolicyStrict, WIPPolicyWarn:
	default:
		return fmt.Errorf("invalid wip_policy: %q (expected %q or %q)",
			c.Board.WIPPolicy, WIPPolicyStrict, WIPPolicyWarn)
	}

	if _, err := time.ParseDuration(c.Board.LockTimeout); err != nil {
		return fmt.Errorf("invalid lock_timeout: %w", err)
	}

	if len(c.Board.Columns) < 2 {
		return fmt.Errorf("board template needs at least %s and %s columns",
			kanban.ColumnBacklog, kanban.ColumnDone)
	}
	if c.Board.Columns[0].Name != kanban.ColumnBacklog {
		return fmt.Errorf("first template column must be %s", kanban.ColumnBacklog)
	}
	if c.Board.Columns[len(c.Board.Columns)-1].Name != kanban.ColumnDone {
		return fmt.Errorf("last template column must be %s", kanban.ColumnDone)
	}

	seen := make(map[string]bool, len(c.Board.Columns))
	for _, col := range c.Board.Columns {
		if col.Name == "" {
			return fmt.Errorf("template column name cannot be empty")
		}
		if seen[col.Name] {
			return fmt.Errorf("duplicate template column: %q", col.Name)
		}
		seen[col.Name] = true
		if col.WIPLimit < 0 {
			return fmt.Errorf("template column %q: WIP limit cannot be negative", col.Name)
		}
	}

	return nil
}

// LockTimeoutDuration returns the parsed lock acquisition timeout.
// Validate must have passed.
func (c *Config) LockTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Board.LockTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// NewBoard builds a fresh board from the configured template.
func (c *Config) NewBoard(name string) *kanban.Board {
	now := time.Now().UnixMilli()
	b := &kanban.Board{
		Name:        name,
		Tasks:       make(map[string]*kanban.Task),
		CreatedAtMs: now,
		UpdatedAtMs: now,
	}
	for _, col := range c.Board.Columns {
		b.Columns = append(b.Columns, kanban.Column{
			Name:     col.Name,
			TaskIDs:  []string{},
			WIPLimit: col.WIPLimit,
		})
	}
	return b
}
