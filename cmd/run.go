package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codetrawl/codetrawl/core"
	"github.com/codetrawl/codetrawl/internal/backend"
	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/internal/outwriter"
	"github.com/codetrawl/codetrawl/internal/runstore"
)

// runCmd performs a full analysis run over a repository's history.
var runCmd = &cobra.Command{
	Use:   "run [backend] <repo-uri>",
	Short: "Analyze every commit of a repository with the chosen backend.",
	Long: `Mirror a repository, walk its commit history and emit one item per
inspected commit.

Each commit gets its own working tree snapshot, so analyzers see the
repository exactly as it was at that point in history.

Backends:
  cocom - line counts plus cyclomatic complexity per file (default)
  count - line counts only, no external complexity tooling needed
  coqua - module-level lint quality, requires --entrypoint

Examples:
  # Complexity metrics for every commit, streamed as JSONL
  codetrawl run cocom https://github.com/example/project.git

  # Restrict the analysis to a subtree and include function metrics
  codetrawl run cocom /path/to/repo --paths src/ --functions

  # Line counts for the latest commit only
  codetrawl run count /path/to/repo --latest-only

  # Lint quality of a Python module across history
  codetrawl run coqua /path/to/repo --entrypoint mypackage

  # Columnar export for analytics tooling
  codetrawl run cocom /path/to/repo --output parquet --output-file metrics.parquet`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		b, err := backend.New(cfg.Backend, cfg)
		if err != nil {
			contract.LogFatal("Cannot set up backend", err)
		}

		store, err := runstore.New(cfg.StoreBackend, cfg.StoreConnect)
		if err != nil {
			contract.LogWarn("Run tracking disabled", err)
			store = nil
		}
		if store != nil {
			defer func() { _ = store.Close() }()
		}

		writer, err := outwriter.New(cfg)
		if err != nil {
			contract.LogFatal("Cannot set up output", err)
		}

		if _, err := executeRun(b, store, writer); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}

// executeRun keeps the nil-store plumbing in one place. A nil *runstore.Store
// must become a nil interface, not a typed nil.
func executeRun(b contract.Backend, store *runstore.Store, writer contract.ItemWriter) (core.RunStats, error) {
	var tracker contract.RunStore
	if store != nil {
		tracker = store
	}
	return core.ExecuteRun(rootCtx, cfg, gitClient, b, tracker, writer)
}

// backendsCmd lists the available analysis backends.
var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the available analysis backends.",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, desc := range backend.Descriptors() {
			cmd.Printf("%-8s %-8s %s\n", desc.Name, desc.Version, desc.Category)
		}
	},
}
