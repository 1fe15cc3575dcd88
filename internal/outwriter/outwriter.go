// Package outwriter has output and writer logic for emitted items.
package outwriter

import (
	"fmt"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// New creates an item writer for the configured output mode.
func New(cfg *contract.Config) (contract.ItemWriter, error) {
	switch cfg.Output {
	case schema.ParquetOut:
		return NewParquetWriter(cfg.OutputFile)
	case schema.TextOut:
		return NewTextWriter(cfg.OutputFile)
	case schema.JSONLOut:
		return NewJSONLWriter(cfg.OutputFile)
	default:
		return nil, fmt.Errorf("unsupported output mode: %s", cfg.Output)
	}
}

// fileAnalyses extracts per-file analysis records from an item payload.
// Items from module-level backends carry no file records and yield nil.
func fileAnalyses(item *schema.Item) []schema.FileAnalysis {
	analyses, _ := item.Data["analysis"].([]schema.FileAnalysis)
	return analyses
}
