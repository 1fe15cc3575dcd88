package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/codetrawl/codetrawl/core"
	"github.com/codetrawl/codetrawl/internal/analyzers"
	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// snapshotFixture materializes a small working copy layout under a temp
// dir. Paths use forward slashes and are created with empty content.
func snapshotFixture(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x = 1\n"), 0o644))
	}
	return root
}

func TestWalkSnapshot(t *testing.T) {
	root := snapshotFixture(t,
		"src/main.py",
		"src/util/helpers.py",
		"README.md",
		".gitignore",
		".git/config",
		"docs/.hidden",
	)

	t.Run("skips hidden files and directories", func(t *testing.T) {
		var seen []string
		err := walkSnapshot(root, nil, func(rel, full string) error {
			seen = append(seen, rel)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"README.md", "src/main.py", "src/util/helpers.py"}, seen)
	})

	t.Run("scope keeps matching suffixes only", func(t *testing.T) {
		var seen []string
		err := walkSnapshot(root, []string{".py"}, func(rel, full string) error {
			seen = append(seen, rel)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"src/main.py", "src/util/helpers.py"}, seen)
	})

	t.Run("callback error aborts the walk", func(t *testing.T) {
		err := walkSnapshot(root, nil, func(rel, full string) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestStripAndAttach(t *testing.T) {
	data := map[string]any{
		"commit":     "abc",
		"message":    "initial",
		"Author":     "Alice <alice@example.com>",
		"AuthorDate": "2024-01-01T10:00:00Z",
		"Commit":     "Alice <alice@example.com>",
		"CommitDate": "2024-01-01T10:00:00Z",
		"files":      []map[string]string{{"file": "main.py"}},
		"parents":    []string{"def"},
		"refs":       []string{"refs/heads/master"},
	}
	payload := []schema.FileAnalysis{{FilePath: "main.py"}}

	result := stripAndAttach(data, payload)

	assert.Equal(t, "abc", result["commit"])
	assert.Equal(t, "initial", result["message"])
	assert.Contains(t, result, "AuthorDate")
	assert.Contains(t, result, "CommitDate")
	for _, stripped := range []string{"Author", "Commit", "files", "parents", "refs"} {
		assert.NotContains(t, result, stripped)
	}
	assert.Equal(t, payload, result["analysis"])
}

func commitTouching(paths ...string) *schema.CommitRecord {
	commit := &schema.CommitRecord{
		ID:         "abc",
		CommitDate: time.Now().UTC(),
	}
	for _, p := range paths {
		commit.Files = append(commit.Files, schema.CommitFile{Path: p, Action: "M"})
	}
	return commit
}

func TestCoComFilterCommit(t *testing.T) {
	b := NewCoCom(nil)

	tests := []struct {
		name    string
		commit  *schema.CommitRecord
		scope   []string
		skipped bool
	}{
		{"empty scope keeps everything", commitTouching("docs/guide.md"), nil, false},
		{"touches scoped path", commitTouching("src/main.py", "docs/guide.md"), []string{".py"}, false},
		{"touches nothing in scope", commitTouching("docs/guide.md"), []string{".py"}, true},
		{"no files with scope", commitTouching(), []string{".py"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.skipped, b.FilterCommit(tc.commit, 0, tc.scope))
		})
	}
}

func TestCoComAnalyze(t *testing.T) {
	root := snapshotFixture(t, "src/app.py", "README.md")

	universal := &analyzers.MockUniversalAnalyzer{}
	universal.On("Analyze", mock.Anything, mock.Anything).
		Return(schema.LineCounts{Blanks: 1, Comments: 2, LOC: 3}, nil)
	deep := &analyzers.MockDeepAnalyzer{}
	deep.On("Analyze", mock.Anything, mock.Anything, false).
		Return(schema.DeepOutcome{Status: schema.DeepOK, LOC: 3, Metrics: schema.DeepMetrics{CCN: 1, Funs: 1}})

	b := NewCoCom(core.NewFileAnalyzer(universal, deep, DefaultAllowedExtensions, false))
	payload, err := b.Analyze(context.Background(), commitTouching("src/app.py"), root, nil)
	require.NoError(t, err)

	analysis, ok := payload.([]schema.FileAnalysis)
	require.True(t, ok)
	require.Len(t, analysis, 2)
	assert.Equal(t, "README.md", analysis[0].FilePath)
	assert.Nil(t, analysis[0].Deep)
	assert.Equal(t, "src/app.py", analysis[1].FilePath)
	require.NotNil(t, analysis[1].Deep)
	assert.Equal(t, 1, analysis[1].Deep.CCN)
}

func TestCountAnalyze(t *testing.T) {
	root := snapshotFixture(t, "src/app.py", "notes.txt")

	universal := &analyzers.MockUniversalAnalyzer{}
	universal.On("Analyze", mock.Anything, mock.Anything).
		Return(schema.LineCounts{LOC: 7}, nil)

	b := NewCount(universal)
	payload, err := b.Analyze(context.Background(), commitTouching(), root, nil)
	require.NoError(t, err)

	analysis, ok := payload.([]schema.FileAnalysis)
	require.True(t, ok)
	require.Len(t, analysis, 2)
	for _, fa := range analysis {
		assert.Equal(t, 7, fa.LOC)
		assert.Nil(t, fa.Deep)
	}
}

func TestCoQuaRequiresEntrypoint(t *testing.T) {
	_, err := NewCoQua(&analyzers.MockLintAnalyzer{}, "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--entrypoint")
}

func TestCoQuaAnalyze(t *testing.T) {
	t.Run("lints existing entrypoint", func(t *testing.T) {
		root := snapshotFixture(t, "mymodule/core.py")

		lint := &analyzers.MockLintAnalyzer{}
		lint.On("Analyze", mock.Anything, filepath.Join(root, "mymodule"), true).
			Return(schema.ModuleQuality{Quality: 8.5, Warnings: 2}, nil)

		b, err := NewCoQua(lint, "mymodule", true)
		require.NoError(t, err)

		payload, err := b.Analyze(context.Background(), commitTouching("mymodule/core.py"), root, nil)
		require.NoError(t, err)
		quality, ok := payload.(schema.ModuleQuality)
		require.True(t, ok)
		assert.Equal(t, 8.5, quality.Quality)
		assert.Equal(t, 2, quality.Warnings)
	})

	t.Run("missing entrypoint skips linting", func(t *testing.T) {
		root := snapshotFixture(t, "README.md")

		lint := &analyzers.MockLintAnalyzer{}
		b, err := NewCoQua(lint, "mymodule", false)
		require.NoError(t, err)

		payload, err := b.Analyze(context.Background(), commitTouching(), root, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, payload)
		lint.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lint failure propagates", func(t *testing.T) {
		root := snapshotFixture(t, "mymodule/core.py")

		lint := &analyzers.MockLintAnalyzer{}
		lint.On("Analyze", mock.Anything, mock.Anything, false).
			Return(schema.ModuleQuality{}, assert.AnError)

		b, err := NewCoQua(lint, "mymodule", false)
		require.NoError(t, err)

		_, err = b.Analyze(context.Background(), commitTouching(), root, nil)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestRegistry(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		_, err := New("nope", &contract.Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown backend")
	})

	t.Run("names are sorted", func(t *testing.T) {
		assert.Equal(t, []string{"cocom", "coqua", "count"}, Names())
	})

	t.Run("cocom constructs", func(t *testing.T) {
		b, err := New(CoComName, &contract.Config{})
		require.NoError(t, err)
		assert.Equal(t, CoComName, b.Descriptor().Name)
	})

	t.Run("coqua without entrypoint fails", func(t *testing.T) {
		_, err := New(CoQuaName, &contract.Config{})
		assert.Error(t, err)
	})

	t.Run("descriptors match constructed backends", func(t *testing.T) {
		descs := Descriptors()
		require.Len(t, descs, 3)
		assert.Equal(t, CoComName, descs[0].Name)
		assert.Equal(t, schema.CategoryCoCom, descs[0].Category)
		assert.Equal(t, CountName, descs[1].Name)
		assert.Equal(t, CoQuaName, descs[2].Name)
	})
}
