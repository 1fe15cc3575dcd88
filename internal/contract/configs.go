package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codetrawl/codetrawl/schema"
)

// Default values for configuration.
const (
	DefaultBackend     = "cocom"
	DefaultMCPLimit    = 50
	DefaultStoreDBName = ".codetrawl_runs.db"
)

// DefaultWorktreeRoot is where working trees live unless overridden.
var DefaultWorktreeRoot = filepath.Join(os.TempDir(), "codetrawl-worktrees")

// DefaultMirrorRoot is where bare mirrors live unless overridden.
var DefaultMirrorRoot = filepath.Join(os.TempDir(), "codetrawl-mirrors")

// ConfigRawInput holds the raw, unvalidated configuration from all sources
// (file, env, flags). Viper unmarshals into this struct.
type ConfigRawInput struct {
	GitPath      string `mapstructure:"git-path"`
	WorktreePath string `mapstructure:"worktree-path"`
	Branches     string `mapstructure:"branches"`
	FromDate     string `mapstructure:"from-date"`
	ToDate       string `mapstructure:"to-date"`
	LatestOnly   bool   `mapstructure:"latest-only"`
	Paths        string `mapstructure:"paths"`
	Functions    bool   `mapstructure:"functions"`
	Entrypoint   string `mapstructure:"entrypoint"`
	Details      bool   `mapstructure:"details"`
	Tag          string `mapstructure:"tag"`
	Output       string `mapstructure:"output"`
	OutputFile   string `mapstructure:"output-file"`
	StoreBackend string `mapstructure:"store-backend"`
	StoreConnect string `mapstructure:"store-db-connect"`
}

// Config holds the validated runtime configuration for a pipeline run.
type Config struct {
	Backend      string
	URI          string
	GitPath      string
	WorktreePath string
	Branches     []string
	FromDate     time.Time
	ToDate       time.Time
	LatestOnly   bool
	Paths        []string
	Functions    bool
	Entrypoint   string
	Details      bool
	Tag          string
	Output       schema.OutputMode
	OutputFile   string
	Limit        int // 0 means unbounded; used by the MCP surface
	StoreBackend schema.StoreBackend
	StoreConnect string
}

// Clone returns a copy of the config safe for per-request adjustment.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Branches = append([]string(nil), c.Branches...)
	clone.Paths = append([]string(nil), c.Paths...)
	return &clone
}

// ProcessAndValidate turns raw input into a validated Config.
// backendName and uri come from positional arguments.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, backendName, uri string) error {
	if uri == "" {
		return fmt.Errorf("a repository URI is required")
	}
	cfg.Backend = backendName
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	cfg.URI = uri

	cfg.GitPath = input.GitPath
	if cfg.GitPath == "" {
		cfg.GitPath = filepath.Join(DefaultMirrorRoot, repoName(uri)+"-git")
	}
	cfg.WorktreePath = input.WorktreePath
	if cfg.WorktreePath == "" {
		cfg.WorktreePath = filepath.Join(DefaultWorktreeRoot, repoName(uri))
	}

	cfg.Branches = splitList(input.Branches)
	cfg.Paths = splitList(input.Paths)
	cfg.LatestOnly = input.LatestOnly
	cfg.Functions = input.Functions
	cfg.Entrypoint = input.Entrypoint
	cfg.Details = input.Details
	cfg.Tag = input.Tag
	if cfg.Tag == "" {
		cfg.Tag = uri
	}

	var err error
	if cfg.FromDate, err = parseDate(input.FromDate); err != nil {
		return fmt.Errorf("invalid --from-date: %w", err)
	}
	if cfg.ToDate, err = parseDate(input.ToDate); err != nil {
		return fmt.Errorf("invalid --to-date: %w", err)
	}
	if !cfg.FromDate.IsZero() && !cfg.ToDate.IsZero() && cfg.ToDate.Before(cfg.FromDate) {
		return fmt.Errorf("--to-date %s is before --from-date %s", input.ToDate, input.FromDate)
	}

	switch out := schema.OutputMode(input.Output); out {
	case "", schema.JSONLOut:
		cfg.Output = schema.JSONLOut
	case schema.ParquetOut, schema.TextOut:
		cfg.Output = out
	default:
		return fmt.Errorf("unsupported output %q. Must be jsonl, parquet or text", input.Output)
	}
	if cfg.Output == schema.ParquetOut && input.OutputFile == "" {
		return fmt.Errorf("--output parquet requires --output-file")
	}
	cfg.OutputFile = input.OutputFile

	switch sb := schema.StoreBackend(input.StoreBackend); sb {
	case "", schema.SQLiteBackend:
		cfg.StoreBackend = schema.SQLiteBackend
	case schema.MySQLBackend, schema.PostgreSQLBackend, schema.NoneBackend:
		cfg.StoreBackend = sb
	default:
		return fmt.Errorf("unsupported store backend %q. Must be sqlite, mysql, postgresql or none", input.StoreBackend)
	}
	cfg.StoreConnect = input.StoreConnect

	return nil
}

// GetStoreDBFilePath returns the path to the SQLite DB file for run tracking.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultStoreDBName
	}
	return filepath.Join(homeDir, DefaultStoreDBName)
}

// parseDate accepts RFC3339 or plain YYYY-MM-DD dates. Empty input means
// an unset boundary.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// repoName derives a directory-friendly name from a repository URI.
func repoName(uri string) string {
	name := strings.TrimSuffix(filepath.Base(strings.TrimSuffix(uri, "/")), ".git")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "repository"
	}
	return name
}
