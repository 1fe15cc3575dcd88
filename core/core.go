// Package core has the commit pipeline and the per-file analyzer
// composition that drive a codetrawl run.
package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/internal/gitsource"
	"github.com/codetrawl/codetrawl/internal/snapshot"
	"github.com/codetrawl/codetrawl/schema"
)

// RunStats summarizes a completed (or aborted) run.
type RunStats struct {
	Commits  int
	Files    int
	Duration time.Duration
}

// ExecuteRun performs a full pipeline run: mirror the repository, stream
// its history, analyze each selected commit and hand every emitted item to
// the writer. Run tracking is best effort; store may be nil.
func ExecuteRun(ctx context.Context, cfg *contract.Config, client contract.GitClient, backend contract.Backend, store contract.RunStore, writer contract.ItemWriter) (RunStats, error) {
	start := time.Now()
	stats := RunStats{}

	if err := snapshot.EnsureClone(ctx, client, cfg.URI, cfg.GitPath); err != nil {
		return stats, err
	}

	source := gitsource.New(client, cfg.GitPath, contract.LogOptions{
		From:     cfg.FromDate,
		To:       cfg.ToDate,
		Branches: cfg.Branches,
		Latest:   cfg.LatestOnly,
	})
	manager := snapshot.NewManager(client, cfg.GitPath, cfg.WorktreePath, "")
	pipe := NewPipeline(source, manager, backend, cfg.URI, cfg.Tag, cfg.Paths, cfg.Limit)

	runID := beginTracking(cfg, backend, store, start)

	var runErr error
	for item, err := range pipe.Run(ctx) {
		if err != nil {
			runErr = err
			break
		}
		stats.Commits++
		stats.Files += countFiles(item)
		if err := writer.Write(item); err != nil {
			runErr = err
			break
		}
	}

	stats.Duration = time.Since(start)
	endTracking(store, runID, stats)

	if closeErr := writer.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	return stats, runErr
}

// countFiles reports how many per-file results an item carries, zero for
// backends with module-level payloads.
func countFiles(item *schema.Item) int {
	analysis, ok := item.Data["analysis"]
	if !ok {
		return 0
	}
	if files, ok := analysis.([]schema.FileAnalysis); ok {
		return len(files)
	}
	return 0
}

// beginTracking opens a run record, returning 0 when tracking is disabled
// or unavailable.
func beginTracking(cfg *contract.Config, backend contract.Backend, store contract.RunStore, start time.Time) int64 {
	if store == nil {
		return 0
	}
	desc := backend.Descriptor()
	params := map[string]any{
		"backend":     desc.Name,
		"paths":       strings.Join(cfg.Paths, ","),
		"branches":    strings.Join(cfg.Branches, ","),
		"latest_only": cfg.LatestOnly,
		"functions":   cfg.Functions,
	}
	configJSON, _ := json.Marshal(params)
	runID, err := store.BeginRun(&schema.RunRecord{
		Origin:     cfg.URI,
		Backend:    desc.Name,
		Category:   desc.Category,
		StartedAt:  start,
		ConfigJSON: string(configJSON),
	})
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	return runID
}

// endTracking closes a run record opened by beginTracking.
func endTracking(store contract.RunStore, runID int64, stats RunStats) {
	if store == nil || runID == 0 {
		return
	}
	if err := store.EndRun(runID, time.Now(), stats.Commits, stats.Files); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
