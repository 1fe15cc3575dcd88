package gitsource

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// wire builds one pretty-format header line in the log wire format.
func wire(fields ...string) string {
	return recordSep + strings.Join(fields, fieldSep)
}

const (
	hashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func canned() string {
	lines := []string{
		wire(hashA, "", "Ada Dev <ada@example.com>", "2020-01-01T10:00:00+00:00",
			"Ada Dev <ada@example.com>", "2020-01-01T10:05:00+00:00", "", "initial import"),
		"A\tsrc/main.py",
		"A\tREADME.md",
		"",
		wire(hashB, hashA, "Bob Dev <bob@example.com>", "2020-02-01T09:00:00+00:00",
			"Ada Dev <ada@example.com>", "2020-02-01T09:30:00+00:00",
			"HEAD -> refs/heads/master, refs/tags/v1.0", "rename module"),
		"R100\tsrc/main.py\tsrc/app.py",
	}
	return strings.Join(lines, "\n") + "\n"
}

// stubStream wraps a reader and records whether Close was called.
type stubStream struct {
	io.Reader
	closed bool
}

func (s *stubStream) Close() error {
	s.closed = true
	return nil
}

func newSource(t *testing.T, payload string) (*GitCommitSource, *stubStream) {
	t.Helper()
	stream := &stubStream{Reader: strings.NewReader(payload)}
	client := &contract.MockGitClient{}
	client.On("Log", mock.Anything, "/mirror", mock.Anything).Return(stream, nil)
	return New(client, "/mirror", contract.LogOptions{}), stream
}

func collect(t *testing.T, src *GitCommitSource) ([]*schema.CommitRecord, error) {
	t.Helper()
	var records []*schema.CommitRecord
	for rec, err := range src.Commits(context.Background()) {
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func TestCommitsParsesRecords(t *testing.T) {
	src, stream := newSource(t, canned())

	records, err := collect(t, src)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, stream.closed)

	first := records[0]
	assert.Equal(t, hashA, first.ID)
	assert.Empty(t, first.Parents)
	assert.Equal(t, "Ada Dev <ada@example.com>", first.Author)
	assert.Equal(t, "initial import", first.Message)
	assert.Empty(t, first.Refs)
	require.Len(t, first.Files, 2)
	assert.Equal(t, schema.CommitFile{Path: "src/main.py", Action: "A"}, first.Files[0])

	second := records[1]
	assert.Equal(t, hashB, second.ID)
	assert.Equal(t, []string{hashA}, second.Parents)
	assert.Equal(t, []string{"refs/heads/master", "refs/tags/v1.0"}, second.Refs)
	require.Len(t, second.Files, 1)
	// Renames report the destination path
	assert.Equal(t, schema.CommitFile{Path: "src/app.py", Action: "R100"}, second.Files[0])
	assert.Equal(t, "2020-02-01T09:30:00Z", second.CommitDate.UTC().Format("2006-01-02T15:04:05Z07:00"))
}

func TestCommitsOldestFirst(t *testing.T) {
	src, _ := newSource(t, canned())

	records, err := collect(t, src)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].CommitDate.Before(records[1].CommitDate))
}

func TestCommitsEarlyBreakClosesStream(t *testing.T) {
	src, stream := newSource(t, canned())

	for rec, err := range src.Commits(context.Background()) {
		require.NoError(t, err)
		require.NotNil(t, rec)
		break
	}
	assert.True(t, stream.closed)
}

func TestCommitsMalformedHeader(t *testing.T) {
	src, _ := newSource(t, recordSep+"not enough fields\n")

	records, err := collect(t, src)
	assert.Error(t, err)
	assert.Empty(t, records)
}

func TestCommitsMalformedDate(t *testing.T) {
	payload := wire(hashA, "", "Ada <a@x>", "not-a-date",
		"Ada <a@x>", "2020-01-01T10:05:00+00:00", "", "subject") + "\n"
	src, _ := newSource(t, payload)

	_, err := collect(t, src)
	assert.Error(t, err)
}

func TestCommitsEmptyHistory(t *testing.T) {
	src, stream := newSource(t, "")

	records, err := collect(t, src)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.True(t, stream.closed)
}

func TestCommitsLogFailure(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("Log", mock.Anything, "/mirror", mock.Anything).
		Return(nil, assert.AnError)
	src := New(client, "/mirror", contract.LogOptions{})

	_, err := collect(t, src)
	assert.Error(t, err)
}

func TestParseRefs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"head arrow stripped", "HEAD -> refs/heads/master", []string{"refs/heads/master"}},
		{"multiple refs", "refs/heads/master, refs/tags/v1.0", []string{"refs/heads/master", "refs/tags/v1.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseRefs(tt.input))
		})
	}
}

func TestStaticSource(t *testing.T) {
	src := &Static{Records: []*schema.CommitRecord{{ID: hashA}, {ID: hashB}}}

	var ids []string
	for rec, err := range src.Commits(context.Background()) {
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{hashA, hashB}, ids)
}
