package commands

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dyluth/drey/internal/config"
	"github.com/dyluth/drey/internal/engine"
	"github.com/dyluth/drey/internal/instance"
	"github.com/dyluth/drey/internal/lock"
	"github.com/dyluth/drey/pkg/kanban"
)

var (
	version string
	commit  string
	date    string

	// Global flags
	configFile   string
	instanceName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "drey",
	Short: "Drey - Redis-backed task boards for humans and agents",
	Long: `Drey manages multi-column task boards shared between humans and AI agents.

Boards live in Redis as versioned snapshots, so any number of sessions can
mutate the same board safely. Moves into gated columns are held back until
every blocking task is done, and a WIP limit on a column refuses (or warns
about) moves that would overfill it.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is specified, show help
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigFile, "Path to drey.yml")
	rootCmd.PersistentFlags().StringVarP(&instanceName, "instance", "i", "", "Instance name (overrides config)")
}

// loadConfig reads the configuration file, applying the --instance override.
// Instance name validation happens in the router before any connection.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if instanceName != "" {
		cfg.Instance = instanceName
	}
	return cfg, nil
}

// loadClient connects a kanban client to the configured instance.
// The caller owns closing it.
func loadClient() (*kanban.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	router := instance.NewRouter(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	client, err := router.Client(cfg.Instance)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// loadEngine builds the full stack from configuration: the kanban client, the
// board locker and the engine. The caller owns closing the client.
func loadEngine() (*engine.Engine, *kanban.Client, *config.Config, error) {
	client, cfg, err := loadClient()
	if err != nil {
		return nil, nil, nil, err
	}

	locker := lock.NewRedisLocker(client.RedisClient(),
		lock.WithAcquireTimeout(cfg.LockTimeoutDuration()))

	eng := engine.New(client, locker, engine.Policy{
		GatedColumns: cfg.Board.GatedColumns,
		WIP:          engine.WIPPolicy(cfg.Board.WIPPolicy),
		LockTimeout:  cfg.LockTimeoutDuration(),
	}, kanban.Author(cfg.Actor))

	return eng, client, cfg, nil
}
