package contract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// LogPrettyFormat is the wire format shared by LocalGitClient.Log and the
// commit source parser. Records start with an ASCII record separator and
// fields are joined by unit separators, so no commit content can be
// mistaken for a delimiter.
const LogPrettyFormat = "%x1e%H%x1f%P%x1f%an <%ae>%x1f%aI%x1f%cn <%ce>%x1f%cI%x1f%D%x1f%s"

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct {
	env []string
}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{
		env: append(os.Environ(),
			"LANG=C",
			"PAGER=",
			"GIT_TERMINAL_PROMPT=0",
		),
	}
}

// Run executes a git command in dir and returns its stdout.
func (c *LocalGitClient) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	cmd.Env = c.env
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git %s failed in %q: %s", strings.Join(args, " "), dir, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// Clone creates a bare mirror of uri at path.
func (c *LocalGitClient) Clone(ctx context.Context, uri, path string) error {
	_, err := c.Run(ctx, ".", "clone", "--mirror", uri, path)
	return err
}

// ResolveHead implements the GitClient interface.
func (c *LocalGitClient) ResolveHead(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// WorktreeAdd implements the GitClient interface.
func (c *LocalGitClient) WorktreeAdd(ctx context.Context, repoPath, worktreePath, branch string) error {
	args := []string{"worktree", "add"}
	if branch == "" {
		args = append(args, "--detach", worktreePath)
	} else {
		args = append(args, worktreePath, branch)
	}
	_, err := c.Run(ctx, repoPath, args...)
	return err
}

// Checkout implements the GitClient interface.
func (c *LocalGitClient) Checkout(ctx context.Context, worktreePath, ref string) error {
	_, err := c.Run(ctx, worktreePath, "checkout", ref)
	return err
}

// WorktreePrune implements the GitClient interface.
func (c *LocalGitClient) WorktreePrune(ctx context.Context, repoPath string) error {
	_, err := c.Run(ctx, repoPath, "worktree", "prune")
	return err
}

// Log implements the GitClient interface. The returned stream yields the
// history oldest first; closing it reaps the subprocess.
func (c *LocalGitClient) Log(ctx context.Context, repoPath string, opts LogOptions) (io.ReadCloser, error) {
	args := []string{"-C", repoPath, "log",
		"--reverse", "--topo-order",
		"--name-status",
		"--decorate=full",
		"--pretty=format:" + LogPrettyFormat,
	}
	if !opts.From.IsZero() {
		args = append(args, "--since="+opts.From.Format(DateTimeFormat))
	}
	if !opts.To.IsZero() {
		args = append(args, "--until="+opts.To.Format(DateTimeFormat))
	}
	if opts.Latest {
		args = append(args, "-n", "1", "HEAD")
	} else if len(opts.Branches) > 0 {
		args = append(args, opts.Branches...)
	} else {
		args = append(args, "--all")
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = c.env
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("cannot open git log pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("cannot start git log: %w", err)
	}
	return &logStream{reader: stdout, cmd: cmd, stderr: &stderr}, nil
}

// logStream couples the git log stdout with the subprocess lifecycle.
type logStream struct {
	reader io.ReadCloser
	cmd    *exec.Cmd
	stderr *strings.Builder
}

func (s *logStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

// Close drains the subprocess and surfaces its exit failure, so a truncated
// log never passes for a complete one.
func (s *logStream) Close() error {
	_, _ = io.Copy(io.Discard, s.reader)
	_ = s.reader.Close()
	if err := s.cmd.Wait(); err != nil {
		msg := strings.TrimSpace(s.stderr.String())
		if msg == "" {
			return fmt.Errorf("git log failed: %w", err)
		}
		return fmt.Errorf("git log failed: %s", msg)
	}
	return nil
}
