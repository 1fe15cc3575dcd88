package backend

import (
	"context"

	"github.com/codetrawl/codetrawl/core"
	"github.com/codetrawl/codetrawl/internal/analyzers"
	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// CoCom backend identity.
const (
	CoComName    = "cocom"
	coComVersion = "0.1.2"
)

// DefaultAllowedExtensions is the explicit extension set eligible for deep
// complexity analysis. Extensions outside it never invoke the deep
// analyzer, keeping analyzer cost bounded and predictable.
var DefaultAllowedExtensions = []string{"java", "py", "php", "scala", "js", "rb", "cs", "cpp", "c"}

// CoCom gathers code complexity insights: cyclomatic complexity, tokens
// and per-function metrics for supported languages, plus line counts for
// everything else.
type CoCom struct {
	analyzer *core.FileAnalyzer
}

var _ contract.Backend = &CoCom{} // Compile-time check

// NewCoCom builds a CoCom backend over the given analyzer composition.
func NewCoCom(analyzer *core.FileAnalyzer) *CoCom {
	return &CoCom{analyzer: analyzer}
}

func newCoComFromConfig(cfg *contract.Config) (contract.Backend, error) {
	composition := core.NewFileAnalyzer(
		analyzers.NewClocAnalyzer(),
		analyzers.NewLizardAnalyzer(),
		DefaultAllowedExtensions,
		cfg.Functions,
	)
	return NewCoCom(composition), nil
}

// Descriptor implements the Backend interface.
func (b *CoCom) Descriptor() schema.BackendDescriptor {
	return schema.BackendDescriptor{Name: CoComName, Version: coComVersion, Category: schema.CategoryCoCom}
}

// FilterCommit skips commits that touch none of the scoped paths. With an
// empty scope every commit is analyzed.
func (b *CoCom) FilterCommit(commit *schema.CommitRecord, _ int, scope []string) bool {
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

// Analyze walks the snapshot and runs the analyzer composition on every
// retained file, in file-walk order.
func (b *CoCom) Analyze(ctx context.Context, _ *schema.CommitRecord, snapshotRoot string, scope []string) (any, error) {
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
func (b *CoCom) PostProcess(data map[string]any, analysis any) map[string]any {
	return stripAndAttach(data, analysis)
}
