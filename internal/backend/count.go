package backend

import (
	"context"

	"github.com/codetrawl/codetrawl/core"
	"github.com/codetrawl/codetrawl/internal/analyzers"
	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// Count backend identity.
const (
	CountName    = "count"
	countVersion = "0.1.0"
)

// Count gathers plain line counts for every file of every snapshot. It is
// the cheap backend: no deep analyzer, no allow-list.
type Count struct {
	analyzer *core.FileAnalyzer
}

var _ contract.Backend = &Count{} // Compile-time check

// NewCount builds a Count backend over the given universal analyzer.
func NewCount(universal contract.UniversalAnalyzer) *Count {
	return &Count{analyzer: core.NewFileAnalyzer(universal, nil, nil, false)}
}

func newCountFromConfig(_ *contract.Config) (contract.Backend, error) {
	return NewCount(analyzers.NewClocAnalyzer()), nil
}

// Descriptor implements the Backend interface.
func (b *Count) Descriptor() schema.BackendDescriptor {
	return schema.BackendDescriptor{Name: CountName, Version: countVersion, Category: schema.CategoryCount}
}

// FilterCommit skips commits that touch none of the scoped paths.
func (b *Count) FilterCommit(commit *schema.CommitRecord, _ int, scope []string) bool {
	if len(scope) == 0 {
		return false
	}
	for _, f := range commit.Files {
		if contract.EndsWithAny(f.Path, scope) {
			return false
		}
	}
	return true
}

// Analyze walks the snapshot and counts lines for every retained file.
func (b *Count) Analyze(ctx context.Context, _ *schema.CommitRecord, snapshotRoot string, scope []string) (any, error) {
	analysis := []schema.FileAnalysis{}
	err := walkSnapshot(snapshotRoot, scope, func(rel, full string) error {
		result, err := b.analyzer.Analyze(ctx, full)
		if err != nil {
			return err
		}
		result.FilePath = rel
		analysis = append(analysis, result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// PostProcess implements the Backend interface.
func (b *Count) PostProcess(data map[string]any, analysis any) map[string]any {
	return stripAndAttach(data, analysis)
}
