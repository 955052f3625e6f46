package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/drey/pkg/kanban"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drey.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "drey.yml"))
	require.NoError(t, err)

	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, "default", cfg.Instance)
	assert.Equal(t, string(kanban.AuthorHuman), cfg.Actor)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, WIPPolicyStrict, cfg.Board.WIPPolicy)
	assert.Equal(t, 5*time.Second, cfg.LockTimeoutDuration())
	assert.Equal(t, []string{"Review", kanban.ColumnDone}, cfg.Board.GatedColumns)

	require.NotEmpty(t, cfg.Board.Columns)
	assert.Equal(t, kanban.ColumnBacklog, cfg.Board.Columns[0].Name)
	assert.Equal(t, kanban.ColumnDone, cfg.Board.Columns[len(cfg.Board.Columns)-1].Name)
}

func TestLoadParsesFullConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
instance: payments
actor: ai
redis:
  addr: redis.internal:6380
  db: 2
board:
  wip_policy: warn
  lock_timeout: 10s
  gated_columns: [Done]
  columns:
    - name: Backlog
    - name: Doing
      wip_limit: 2
    - name: Done
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "payments", cfg.Instance)
	assert.Equal(t, "ai", cfg.Actor)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, WIPPolicyWarn, cfg.Board.WIPPolicy)
	assert.Equal(t, 10*time.Second, cfg.LockTimeoutDuration())
	assert.Equal(t, []string{"Done"}, cfg.Board.GatedColumns)
	require.Len(t, cfg.Board.Columns, 3)
	assert.Equal(t, 2, cfg.Board.Columns[1].WIPLimit)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad version",
			yaml:    "version: \"2.0\"\n",
			wantErr: "unsupported version",
		},
		{
			name:    "bad actor",
			yaml:    "actor: robot\n",
			wantErr: "invalid actor",
		},
		{
			name:    "bad wip policy",
			yaml:    "board:\n  wip_policy: maybe\n",
			wantErr: "invalid wip_policy",
		},
		{
			name:    "bad lock timeout",
			yaml:    "board:\n  lock_timeout: fast\n",
			wantErr: "invalid lock_timeout",
		},
		{
			name:    "template missing Done",
			yaml:    "board:\n  columns:\n    - name: Backlog\n    - name: Doing\n",
			wantErr: "last template column",
		},
		{
			name:    "duplicate template column",
			yaml:    "board:\n  columns:\n    - name: Backlog\n    - name: Todo\n    - name: Todo\n    - name: Done\n",
			wantErr: "duplicate template column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestActorEnvOverride(t *testing.T) {
	t.Setenv("DREY_ACTOR", "ai")

	cfg := &Config{Actor: "human"}
	cfg.ApplyDefaults()
	assert.Equal(t, "ai", cfg.Actor)
}

func TestNewBoardFromTemplate(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	b := cfg.NewBoard("demo")
	require.NoError(t, b.Validate())
	assert.Equal(t, "demo", b.Name)
	assert.Equal(t, len(cfg.Board.Columns), len(b.Columns))
	assert.Equal(t, 3, b.Column("In Progress").WIPLimit)
	assert.Empty(t, b.Tasks)
}
