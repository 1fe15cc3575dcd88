// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/codetrawl/codetrawl/schema"
)

// LogOptions narrow the commit history produced by GitClient.Log.
type LogOptions struct {
	From     time.Time // Only commits authored at or after this time
	To       time.Time // Only commits authored before this time
	Branches []string  // Branch names to walk; empty means all refs
	Latest   bool      // Only the current HEAD commit
}

// GitClient defines the git operations needed for mirroring, working-copy
// management and history retrieval. This allows the snapshot manager, the
// commit source and the pipeline to be tested without a real git executable.
type GitClient interface {
	// Run executes a git command in dir and returns its stdout.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)

	// --- Mirror management ---

	// Clone creates a bare mirror of uri at path.
	Clone(ctx context.Context, uri, path string) error

	// ResolveHead returns the commit hash the mirror's HEAD points at.
	ResolveHead(ctx context.Context, repoPath string) (string, error)

	// --- Working copy ---

	// WorktreeAdd registers a detached working copy of repoPath at
	// worktreePath. When branch is empty the working copy starts at HEAD.
	WorktreeAdd(ctx context.Context, repoPath, worktreePath, branch string) error

	// Checkout updates the working copy at worktreePath to match ref.
	Checkout(ctx context.Context, worktreePath, ref string) error

	// WorktreePrune drops stale working-copy registrations from the mirror.
	WorktreePrune(ctx context.Context, repoPath string) error

	// --- History ---

	// Log starts a git log invocation against repoPath and returns its
	// stdout as a stream. Closing the reader reaps the subprocess.
	Log(ctx context.Context, repoPath string, opts LogOptions) (io.ReadCloser, error)
}

// CommitSource produces the ordered commit sequence the pipeline consumes.
// The sequence is lazy: records are parsed as the consumer pulls them.
type CommitSource interface {
	Commits(ctx context.Context) iter.Seq2[*schema.CommitRecord, error]
}

// UniversalAnalyzer counts lines for any regular file. It must handle
// non-text content without failing, returning zero counts instead; an error
// means the file could not be read.
type UniversalAnalyzer interface {
	Analyze(ctx context.Context, filePath string) (schema.LineCounts, error)
}

// DeepAnalyzer computes complexity metrics for files of supported languages.
// The outcome is tagged: unsupported syntax is a recoverable condition, a
// read failure is not.
type DeepAnalyzer interface {
	Analyze(ctx context.Context, filePath string, functions bool) schema.DeepOutcome
}

// LintAnalyzer evaluates the quality of a module directory.
type LintAnalyzer interface {
	Analyze(ctx context.Context, modulePath string, details bool) (schema.ModuleQuality, error)
}

// Backend supplies the per-category behavior the pipeline composes: commit
// filtering, snapshot analysis and record post-processing. Backends are
// plain values registered by name; the pipeline takes no part in any
// type hierarchy.
type Backend interface {
	// Descriptor returns the identity stamped on emitted items.
	Descriptor() schema.BackendDescriptor

	// FilterCommit reports whether the commit should be skipped entirely.
	// index is the 0-based position in the commit sequence.
	FilterCommit(commit *schema.CommitRecord, index int, scope []string) bool

	// Analyze inspects the checked-out snapshot at snapshotRoot and returns
	// the analysis payload attached to the emitted record.
	Analyze(ctx context.Context, commit *schema.CommitRecord, snapshotRoot string, scope []string) (any, error)

	// PostProcess strips attributes from the commit data and attaches the
	// analysis payload, returning the data to be emitted.
	PostProcess(data map[string]any, analysis any) map[string]any
}

// ItemWriter consumes emitted items one at a time. Close flushes any
// buffered output and must be called on every exit path.
type ItemWriter interface {
	Write(item *schema.Item) error
	Close() error
}

// RunStore tracks pipeline runs in a durable store. Implementations must
// tolerate concurrent processes writing to the same database.
type RunStore interface {
	BeginRun(rec *schema.RunRecord) (int64, error)
	EndRun(runID int64, endedAt time.Time, commits, files int) error
	RecentRuns(limit int) ([]schema.RunRecord, error)
	Clear() error
	Close() error
}
