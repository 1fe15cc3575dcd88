package core

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/src-d/enry/v2"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// languageSampleSize bounds how much of a file is read for language
// detection.
const languageSampleSize = 16 * 1024

// FileAnalyzer produces a single merged analysis result for one file,
// combining the cheap universal line counter with an optional deep
// language-aware analyzer.
type FileAnalyzer struct {
	universal contract.UniversalAnalyzer
	deep      contract.DeepAnalyzer
	allowed   map[string]struct{}
	functions bool
}

// NewFileAnalyzer builds a composition. deep may be nil, in which case
// every file gets the universal-only treatment. allowedExtensions is the
// explicit extension set eligible for deep analysis; eligibility is never
// inferred from content.
func NewFileAnalyzer(universal contract.UniversalAnalyzer, deep contract.DeepAnalyzer, allowedExtensions []string, functions bool) *FileAnalyzer {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[ext] = struct{}{}
	}
	return &FileAnalyzer{
		universal: universal,
		deep:      deep,
		allowed:   allowed,
		functions: functions,
	}
}

// Analyze runs the universal analyzer and, for allow-listed extensions,
// the deep analyzer. When both ran, blanks and comments keep the universal
// values (its heuristics are authoritative for those two fields) while loc
// and the complexity fields come from the deep analyzer. A deep analyzer
// that cannot parse the file degrades to the universal-only result; only
// read failures propagate.
func (fa *FileAnalyzer) Analyze(ctx context.Context, filePath string) (schema.FileAnalysis, error) {
	counts, err := fa.universal.Analyze(ctx, filePath)
	if err != nil {
		return schema.FileAnalysis{}, &schema.AnalysisIOError{Path: filePath, Err: err}
	}
	result := schema.FileAnalysis{
		Blanks:   counts.Blanks,
		Comments: counts.Comments,
		LOC:      counts.LOC,
		Language: detectLanguage(filePath),
	}

	if fa.deep == nil {
		return result, nil
	}
	if _, ok := fa.allowed[contract.Extension(filePath)]; !ok {
		return result, nil
	}

	outcome := fa.deep.Analyze(ctx, filePath, fa.functions)
	switch outcome.Status {
	case schema.DeepOK:
		metrics := outcome.Metrics
		result.LOC = outcome.LOC
		result.Deep = &metrics
	case schema.DeepUnsupported:
		// Coarse size metrics remain useful even when complexity cannot
		// be computed.
	case schema.DeepFailed:
		return schema.FileAnalysis{}, &schema.AnalysisIOError{Path: filePath, Err: outcome.Err}
	}
	return result, nil
}

// detectLanguage annotates the result with the language enry infers from
// the file name and a content sample. Best effort: unknown is empty.
func detectLanguage(filePath string) string {
	var sample []byte
	if f, err := os.Open(filePath); err == nil {
		sample, _ = io.ReadAll(io.LimitReader(f, languageSampleSize))
		_ = f.Close()
	}
	return enry.GetLanguage(filepath.Base(filePath), sample)
}
