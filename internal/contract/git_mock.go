package contract

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock for the GitClient interface.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	callArgs := make([]any, 0, len(args)+2)
	callArgs = append(callArgs, ctx, dir)
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	ret := m.Called(callArgs...)
	var out []byte
	if v, ok := ret.Get(0).([]byte); ok {
		out = v
	}
	return out, ret.Error(1)
}

// Clone implements the GitClient interface.
func (m *MockGitClient) Clone(ctx context.Context, uri, path string) error {
	return m.Called(ctx, uri, path).Error(0)
}

// ResolveHead implements the GitClient interface.
func (m *MockGitClient) ResolveHead(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// WorktreeAdd implements the GitClient interface.
func (m *MockGitClient) WorktreeAdd(ctx context.Context, repoPath, worktreePath, branch string) error {
	return m.Called(ctx, repoPath, worktreePath, branch).Error(0)
}

// Checkout implements the GitClient interface.
func (m *MockGitClient) Checkout(ctx context.Context, worktreePath, ref string) error {
	return m.Called(ctx, worktreePath, ref).Error(0)
}

// WorktreePrune implements the GitClient interface.
func (m *MockGitClient) WorktreePrune(ctx context.Context, repoPath string) error {
	return m.Called(ctx, repoPath).Error(0)
}

// Log implements the GitClient interface.
func (m *MockGitClient) Log(ctx context.Context, repoPath string, opts LogOptions) (io.ReadCloser, error) {
	ret := m.Called(ctx, repoPath, opts)
	var rc io.ReadCloser
	if v, ok := ret.Get(0).(io.ReadCloser); ok {
		rc = v
	}
	return rc, ret.Error(1)
}
