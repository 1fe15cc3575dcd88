package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/internal/runstore"
	"github.com/codetrawl/codetrawl/schema"
)

// runsSetup loads the minimal configuration needed for run store operations.
// This avoids repository validation for simple bookkeeping commands.
func runsSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("store-backend")
	if backendStr == "" {
		backendStr = string(schema.SQLiteBackend)
	}
	switch sb := schema.StoreBackend(backendStr); sb {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend, schema.NoneBackend:
		cfg.StoreBackend = sb
	default:
		return fmt.Errorf("unsupported store backend %q. Must be sqlite, mysql, postgresql or none", backendStr)
	}
	cfg.StoreConnect = viper.GetString("store-db-connect")
	return nil
}

// openRunStore builds a run store from the validated bookkeeping config.
func openRunStore() *runstore.Store {
	store, err := runstore.New(cfg.StoreBackend, cfg.StoreConnect)
	if err != nil {
		contract.LogFatal("Cannot open run store", err)
	}
	return store
}

// runsCmd manages the tracked run history.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage tracked analysis runs",
	Long: `Inspect and maintain the run tracking store.

Every analysis run records its origin, backend, timings and item counts.
The store lives in SQLite by default and can be pointed at MySQL or
PostgreSQL with --store-backend and --store-db-connect.

Subcommands:
  status  - Show recent runs
  clear   - Remove all tracked runs
  migrate - Run database schema migrations`,
}

// runsStatusCmd shows recent runs.
var runsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show recently tracked analysis runs",
	PreRunE: runsSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		store := openRunStore()
		defer func() { _ = store.Close() }()

		runs, err := store.RecentRuns(viper.GetInt("limit"))
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		if len(runs) == 0 {
			cmd.Println("No runs tracked yet.")
			return
		}
		for _, r := range runs {
			ended := "running"
			if r.EndedAt != nil {
				ended = r.EndedAt.Format(contract.DateTimeFormat)
			}
			cmd.Printf("#%d %s backend=%s commits=%d files=%d started=%s ended=%s\n",
				r.RunID, r.Origin, r.Backend, r.Commits, r.Files,
				r.StartedAt.Format(contract.DateTimeFormat), ended)
		}
	},
}

// runsClearCmd clears the tracked run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked analysis runs",
	Long: `Delete every tracked run from the store.

WARNING: This action cannot be undone.`,
	PreRunE: runsSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		store := openRunStore()
		defer func() { _ = store.Close() }()

		if err := store.Clear(); err != nil {
			contract.LogFatal("Failed to clear runs", err)
		}
		cmd.Println("Run history cleared successfully.")
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for
specific versions.

Examples:
  # Migrate to latest version (default)
  codetrawl runs migrate

  # Rollback to initial state
  codetrawl runs migrate --target-version 0`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.Migrate(cfg.StoreBackend, cfg.StoreConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
