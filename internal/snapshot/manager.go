// Package snapshot maintains a single working-tree directory that always
// reflects the tree of the most recently requested commit, backed by a bare
// repository mirror.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// State tracks the lifecycle of the managed working copy.
type State int

// Working copy states. A checkout failure that survives one retry moves the
// manager to Failed, which is terminal.
const (
	Absent State = iota
	Created
	CheckedOut
	Failed
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Created:
		return "created"
	case CheckedOut:
		return "checked-out"
	default:
		return "failed"
	}
}

// Manager owns one working copy of a repository mirror. It is not safe for
// concurrent use; the pipeline is its single writer.
type Manager struct {
	client       contract.GitClient
	mirrorPath   string
	worktreePath string
	branch       string

	state      State
	currentRef string
}

// NewManager binds a manager to a mirror and a working copy location.
// Branch may be empty, in which case the working copy starts detached at
// the mirror's HEAD.
func NewManager(client contract.GitClient, mirrorPath, worktreePath, branch string) *Manager {
	return &Manager{
		client:       client,
		mirrorPath:   mirrorPath,
		worktreePath: worktreePath,
		branch:       branch,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State { return m.state }

// CurrentRef returns the commit reference currently materialized, or the
// empty string when no checkout has happened yet.
func (m *Manager) CurrentRef() string {
	if m.state != CheckedOut {
		return ""
	}
	return m.currentRef
}

// WorktreePath returns the directory holding the snapshot.
func (m *Manager) WorktreePath() string { return m.worktreePath }

// EnsureClone makes sure a bare mirror of uri exists at mirrorPath,
// cloning it when absent.
func EnsureClone(ctx context.Context, client contract.GitClient, uri, mirrorPath string) error {
	if info, err := os.Stat(mirrorPath); err == nil && info.IsDir() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(mirrorPath), 0o755); err != nil {
		return &schema.CloneError{URI: uri, Path: mirrorPath, Err: err}
	}
	if err := client.Clone(ctx, uri, mirrorPath); err != nil {
		return &schema.CloneError{URI: uri, Path: mirrorPath, Err: err}
	}
	return nil
}

// Ensure idempotently creates the working copy. Stale state at the target
// path is never trusted: an existing directory is removed and its mirror
// registration dropped before a fresh working copy is added.
func (m *Manager) Ensure(ctx context.Context) error {
	if _, err := os.Stat(m.mirrorPath); err != nil {
		return &schema.SnapshotError{Op: "ensure", Path: m.worktreePath,
			Err: fmt.Errorf("repository mirror %q is missing: %w", m.mirrorPath, err)}
	}
	if err := m.removeWorktree(ctx); err != nil {
		return &schema.SnapshotError{Op: "ensure", Path: m.worktreePath, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(m.worktreePath), 0o755); err != nil {
		return &schema.SnapshotError{Op: "ensure", Path: m.worktreePath, Err: err}
	}

	if err := m.client.WorktreeAdd(ctx, m.mirrorPath, m.worktreePath, m.branch); err != nil {
		// A stale registration in the mirror can block the add; prune and
		// try exactly once more.
		contract.LogWarn(fmt.Sprintf("worktree add at %s failed, pruning and retrying", m.worktreePath), err)
		_ = m.removeWorktree(ctx)
		if err := m.client.WorktreeAdd(ctx, m.mirrorPath, m.worktreePath, m.branch); err != nil {
			return &schema.SnapshotError{Op: "ensure", Path: m.worktreePath, Err: err}
		}
	}
	m.state = Created
	return nil
}

// Checkout updates the working copy to match ref. On failure the working
// copy is recreated and the checkout retried exactly once; a second failure
// is fatal, because the snapshot can no longer be guaranteed to match the
// commit under analysis.
func (m *Manager) Checkout(ctx context.Context, ref string) error {
	switch m.state {
	case Created, CheckedOut:
	default:
		return &schema.SnapshotError{Op: "checkout", Ref: ref, Path: m.worktreePath,
			Err: fmt.Errorf("working copy is %s, call Ensure first", m.state)}
	}

	err := m.client.Checkout(ctx, m.worktreePath, ref)
	if err == nil {
		m.state = CheckedOut
		m.currentRef = ref
		return nil
	}
	contract.LogWarn(fmt.Sprintf("checkout of %s failed, recreating working copy", ref), err)

	if err := m.Prune(ctx); err != nil {
		m.state = Failed
		return &schema.SnapshotError{Op: "checkout", Ref: ref, Path: m.worktreePath, Err: err}
	}
	if err := m.Ensure(ctx); err != nil {
		m.state = Failed
		return &schema.SnapshotError{Op: "checkout", Ref: ref, Path: m.worktreePath, Err: err}
	}
	if err := m.client.Checkout(ctx, m.worktreePath, ref); err != nil {
		m.state = Failed
		return &schema.SnapshotError{Op: "checkout", Ref: ref, Path: m.worktreePath, Err: err}
	}
	m.state = CheckedOut
	m.currentRef = ref
	return nil
}

// Prune deletes the working copy and releases its registration in the
// mirror. Pruning an absent working copy is a no-op with a warning.
func (m *Manager) Prune(ctx context.Context) error {
	if _, err := os.Stat(m.worktreePath); os.IsNotExist(err) {
		contract.LogWarn(fmt.Sprintf("working copy %s does not exist, nothing to prune", m.worktreePath), nil)
		m.currentRef = ""
		if m.state != Failed {
			m.state = Absent
		}
		return nil
	}
	if err := m.removeWorktree(ctx); err != nil {
		return &schema.SnapshotError{Op: "prune", Path: m.worktreePath, Err: err}
	}
	m.currentRef = ""
	if m.state != Failed {
		m.state = Absent
	}
	return nil
}

// removeWorktree deletes the working copy directory if present and drops
// stale registrations from the mirror.
func (m *Manager) removeWorktree(ctx context.Context) error {
	if err := os.RemoveAll(m.worktreePath); err != nil {
		return err
	}
	return m.client.WorktreePrune(ctx, m.mirrorPath)
}
