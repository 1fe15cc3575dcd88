package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codetrawl/codetrawl/internal/analyzers"
	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// CoQua backend identity.
const (
	CoQuaName    = "coqua"
	coQuaVersion = "0.2.0"
)

// CoQua gathers module-level code quality insights by linting a configured
// entrypoint directory at every commit.
type CoQua struct {
	lint       contract.LintAnalyzer
	entrypoint string
	details    bool
}

var _ contract.Backend = &CoQua{} // Compile-time check

// NewCoQua builds a CoQua backend. The entrypoint is the module directory
// to lint, relative to the snapshot root; it cannot be empty.
func NewCoQua(lint contract.LintAnalyzer, entrypoint string, details bool) (*CoQua, error) {
	if entrypoint == "" {
		return nil, fmt.Errorf("the coqua backend requires --entrypoint")
	}
	return &CoQua{lint: lint, entrypoint: entrypoint, details: details}, nil
}

func newCoQuaFromConfig(cfg *contract.Config) (contract.Backend, error) {
	return NewCoQua(analyzers.NewPylintAnalyzer(), cfg.Entrypoint, cfg.Details)
}

// Descriptor implements the Backend interface.
func (b *CoQua) Descriptor() schema.BackendDescriptor {
	return schema.BackendDescriptor{Name: CoQuaName, Version: coQuaVersion, Category: schema.CategoryCoQua}
}

// FilterCommit implements the Backend interface. Every commit is analyzed.
func (b *CoQua) FilterCommit(_ *schema.CommitRecord, _ int, _ []string) bool {
	return false
}

// Analyze lints the entrypoint module of the snapshot. A commit where the
// entrypoint does not exist yet yields an empty analysis with a warning,
// not a failure.
func (b *CoQua) Analyze(ctx context.Context, commit *schema.CommitRecord, snapshotRoot string, _ []string) (any, error) {
	modulePath := filepath.Join(snapshotRoot, b.entrypoint)
	if _, err := os.Stat(modulePath); err != nil {
		contract.LogWarn(fmt.Sprintf("module path %s does not exist at commit %s, analysis will be skipped", modulePath, commit.ID), nil)
		return map[string]any{}, nil
	}
	quality, err := b.lint.Analyze(ctx, modulePath, b.details)
	if err != nil {
		return nil, err
	}
	return quality, nil
}

// PostProcess implements the Backend interface.
func (b *CoQua) PostProcess(data map[string]any, analysis any) map[string]any {
	return stripAndAttach(data, analysis)
}
