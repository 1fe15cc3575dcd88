package contract

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// initTestRepo creates a repository with two commits and returns its path.
func initTestRepo(t *testing.T) string {
	t.Helper()
	repo := filepath.Join(t.TempDir(), "repo")
	require.NoError(t, os.MkdirAll(repo, 0o755))

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", repo}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	run("init", "-q", "-b", "master")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.py"), []byte("x = 1\n"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "initial")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.py"), []byte("x = 2\n"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "second")
	return repo
}

func TestLocalGitClientRun(t *testing.T) {
	skipIfGitNotAvailable(t)
	repo := initTestRepo(t)
	client := NewLocalGitClient()

	out, err := client.Run(context.Background(), repo, "rev-parse", "--is-inside-work-tree")
	require.NoError(t, err)
	assert.Equal(t, "true", strings.TrimSpace(string(out)))

	_, err = client.Run(context.Background(), repo, "rev-parse", "no-such-ref")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rev-parse")
}

func TestLocalGitClientResolveHead(t *testing.T) {
	skipIfGitNotAvailable(t)
	repo := initTestRepo(t)
	client := NewLocalGitClient()

	head, err := client.ResolveHead(context.Background(), repo)
	require.NoError(t, err)
	assert.Len(t, head, 40)
}

func TestLocalGitClientLog(t *testing.T) {
	skipIfGitNotAvailable(t)
	repo := initTestRepo(t)
	client := NewLocalGitClient()

	stream, err := client.Log(context.Background(), repo, LogOptions{})
	require.NoError(t, err)

	var headers []string
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "\x1e") {
			headers = append(headers, line)
		}
	}
	require.NoError(t, scanner.Err())
	require.NoError(t, stream.Close())

	// Oldest first, unit-separated fields, subject last.
	require.Len(t, headers, 2)
	fields := strings.Split(strings.TrimPrefix(headers[0], "\x1e"), "\x1f")
	require.Len(t, fields, 8)
	assert.Len(t, fields[0], 40)
	assert.Equal(t, "Test <test@example.com>", fields[2])
	assert.Equal(t, "initial", fields[7])
	assert.Equal(t, "second", strings.Split(headers[1], "\x1f")[7])
}

func TestLocalGitClientLogLatestOnly(t *testing.T) {
	skipIfGitNotAvailable(t)
	repo := initTestRepo(t)
	client := NewLocalGitClient()

	stream, err := client.Log(context.Background(), repo, LogOptions{Latest: true})
	require.NoError(t, err)

	headers := 0
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "\x1e") {
			headers++
		}
	}
	require.NoError(t, stream.Close())
	assert.Equal(t, 1, headers)
}

func TestLocalGitClientLogBadRepo(t *testing.T) {
	skipIfGitNotAvailable(t)
	client := NewLocalGitClient()

	stream, err := client.Log(context.Background(), t.TempDir(), LogOptions{})
	require.NoError(t, err)

	// The failure surfaces on Close, not on start.
	err = stream.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git log failed")
}

func TestLocalGitClientWorktreeLifecycle(t *testing.T) {
	skipIfGitNotAvailable(t)
	repo := initTestRepo(t)
	client := NewLocalGitClient()
	ctx := context.Background()

	base := t.TempDir()
	mirror := filepath.Join(base, "mirror.git")
	require.NoError(t, client.Clone(ctx, repo, mirror))

	head, err := client.ResolveHead(ctx, mirror)
	require.NoError(t, err)

	worktree := filepath.Join(base, "worktree")
	require.NoError(t, client.WorktreeAdd(ctx, mirror, worktree, ""))
	require.NoError(t, client.Checkout(ctx, worktree, head))

	content, err := os.ReadFile(filepath.Join(worktree, "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 2\n", string(content))

	require.NoError(t, os.RemoveAll(worktree))
	require.NoError(t, client.WorktreePrune(ctx, mirror))
}
