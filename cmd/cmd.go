// Package cmd defines the command-line interface for codetrawl.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(backendsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("git-path", "", "Path where the bare mirror of the repository is kept")
	rootCmd.PersistentFlags().String("worktree-path", "", "Path where per-commit snapshots are checked out")
	rootCmd.PersistentFlags().String("branches", "", "Comma-separated list of branches to inspect (empty means all)")
	rootCmd.PersistentFlags().String("from-date", "", "Only inspect commits after this date (RFC3339 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("to-date", "", "Only inspect commits before this date (RFC3339 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().Bool("latest-only", false, "Only inspect the latest commit")
	rootCmd.PersistentFlags().String("paths", "", "Comma-separated path suffixes to restrict the analysis to")
	rootCmd.PersistentFlags().Bool("functions", false, "Include per-function metrics in deep analysis")
	rootCmd.PersistentFlags().String("entrypoint", "", "Module entrypoint, required by the coqua backend")
	rootCmd.PersistentFlags().Bool("details", false, "Include raw lint messages in quality results")
	rootCmd.PersistentFlags().StringP("tag", "t", "", "Label stamped on emitted items (defaults to the repository URI)")
	rootCmd.PersistentFlags().String("output", string(schema.JSONLOut), "Output format: jsonl or parquet or text")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql run tracking")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}

	// Bind all flags of runsStatusCmd to Viper
	runsStatusCmd.Flags().IntP("limit", "l", 10, "Number of runs to display")
	if err := viper.BindPFlags(runsStatusCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs status flags", err)
	}
}
