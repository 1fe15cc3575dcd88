package schema

import "fmt"

// CloneError reports that the repository mirror could not be created or
// found. It is fatal and aborts before any commit is processed.
type CloneError struct {
	URI  string
	Path string
	Err  error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("cannot clone %q into %q: %v", e.URI, e.Path, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

// SnapshotError reports a working-copy creation, checkout or prune failure.
// Checkout failures are retried once after re-creating the working copy;
// errors surfaced to the pipeline are fatal.
type SnapshotError struct {
	Op   string // "ensure", "checkout" or "prune"
	Ref  string // Commit reference involved, empty for ensure/prune
	Path string // Working copy path
	Err  error
}

func (e *SnapshotError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("snapshot %s of %q at %q failed: %v", e.Op, e.Ref, e.Path, e.Err)
	}
	return fmt.Sprintf("snapshot %s at %q failed: %v", e.Op, e.Path, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }

// AnalysisIOError reports that a file under the snapshot could not be read
// during analysis. It is fatal: an unreadable file means the snapshot is no
// longer trustworthy.
type AnalysisIOError struct {
	Path string
	Err  error
}

func (e *AnalysisIOError) Error() string {
	return fmt.Sprintf("cannot analyze %q: %v", e.Path, e.Err)
}

func (e *AnalysisIOError) Unwrap() error { return e.Err }
