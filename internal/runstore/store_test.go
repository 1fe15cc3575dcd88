package runstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrawl/codetrawl/schema"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func beginFixtureRun(t *testing.T, store *Store, origin string) int64 {
	t.Helper()
	runID, err := store.BeginRun(&schema.RunRecord{
		Origin:     origin,
		Backend:    "cocom",
		Category:   schema.CategoryCoCom,
		StartedAt:  time.Now().UTC(),
		ConfigJSON: `{"backend":"cocom"}`,
	})
	require.NoError(t, err)
	return runID
}

func TestStoreLifecycle(t *testing.T) {
	store := newSQLiteStore(t)

	runID := beginFixtureRun(t, store, "http://example.com/repo.git")
	assert.Greater(t, runID, int64(0))

	// Still running, ended_at is open.
	records, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, runID, records[0].RunID)
	assert.Equal(t, "http://example.com/repo.git", records[0].Origin)
	assert.Equal(t, "cocom", records[0].Backend)
	assert.Equal(t, schema.CategoryCoCom, records[0].Category)
	assert.Nil(t, records[0].EndedAt)
	assert.Equal(t, `{"backend":"cocom"}`, records[0].ConfigJSON)

	ended := time.Now().UTC()
	require.NoError(t, store.EndRun(runID, ended, 42, 730))

	records, err = store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 42, records[0].Commits)
	assert.Equal(t, 730, records[0].Files)
	require.NotNil(t, records[0].EndedAt)
	assert.WithinDuration(t, ended, *records[0].EndedAt, time.Second)
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := newSQLiteStore(t)

	first := beginFixtureRun(t, store, "repo-1")
	second := beginFixtureRun(t, store, "repo-2")
	third := beginFixtureRun(t, store, "repo-3")

	records, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, third, records[0].RunID)
	assert.Equal(t, second, records[1].RunID)
	assert.Equal(t, first, records[2].RunID)

	// The limit trims the oldest entries.
	records, err = store.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "repo-3", records[0].Origin)
	assert.Equal(t, "repo-2", records[1].Origin)
}

func TestStoreClear(t *testing.T) {
	store := newSQLiteStore(t)

	beginFixtureRun(t, store, "repo-1")
	beginFixtureRun(t, store, "repo-2")
	require.NoError(t, store.Clear())

	records, err := store.RecentRuns(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := New(schema.SQLiteBackend, path)
	require.NoError(t, err)
	runID := beginFixtureRun(t, store, "repo-1")
	require.NoError(t, store.Close())

	// Rows survive across store instances.
	store, err = New(schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	records, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, runID, records[0].RunID)
}

func TestNoneBackendIsNoOp(t *testing.T) {
	store, err := New(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(&schema.RunRecord{Origin: "repo"})
	require.NoError(t, err)
	assert.Zero(t, runID)

	require.NoError(t, store.EndRun(1, time.Now(), 1, 1))

	records, err := store.RecentRuns(10)
	require.NoError(t, err)
	assert.Nil(t, records)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Close())
}

func TestUnsupportedBackend(t *testing.T) {
	_, err := New(schema.StoreBackend("oracle"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store backend")
}
