// Package gitsource produces commit records by streaming and parsing the
// history of a repository mirror.
package gitsource

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

// GitCommitSource streams the commit history of a repository mirror,
// oldest first, parsing records lazily as the consumer pulls them.
type GitCommitSource struct {
	client   contract.GitClient
	repoPath string
	opts     contract.LogOptions
}

var _ contract.CommitSource = &GitCommitSource{} // Compile-time check

// New creates a commit source over the mirror at repoPath.
func New(client contract.GitClient, repoPath string, opts contract.LogOptions) *GitCommitSource {
	return &GitCommitSource{client: client, repoPath: repoPath, opts: opts}
}

// Commits implements the CommitSource interface.
func (s *GitCommitSource) Commits(ctx context.Context) iter.Seq2[*schema.CommitRecord, error] {
	return func(yield func(*schema.CommitRecord, error) bool) {
		stream, err := s.client.Log(ctx, s.repoPath, s.opts)
		if err != nil {
			yield(nil, fmt.Errorf("cannot read commit history: %w", err))
			return
		}
		finished := false
		defer func() {
			if !finished {
				_ = stream.Close()
			}
		}()

		var current *schema.CommitRecord
		scanner := bufio.NewScanner(stream)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, recordSep) {
				if current != nil && !yield(current, nil) {
					return
				}
				current, err = parseHeader(strings.TrimPrefix(line, recordSep))
				if err != nil {
					yield(nil, err)
					return
				}
				continue
			}
			if current == nil || strings.TrimSpace(line) == "" {
				continue
			}
			if file, ok := parseNameStatus(line); ok {
				current.Files = append(current.Files, file)
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, fmt.Errorf("cannot read commit history: %w", err))
			return
		}
		if current != nil && !yield(current, nil) {
			return
		}
		finished = true
		if err := stream.Close(); err != nil {
			yield(nil, err)
		}
	}
}

// parseHeader turns one pretty-format line into a commit record without
// its file list. Field layout follows contract.LogPrettyFormat.
func parseHeader(line string) (*schema.CommitRecord, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 8 {
		return nil, fmt.Errorf("malformed commit header with %d fields: %q", len(fields), line)
	}
	authorDate, err := time.Parse(time.RFC3339, fields[3])
	if err != nil {
		return nil, fmt.Errorf("malformed author date in commit %s: %w", fields[0], err)
	}
	commitDate, err := time.Parse(time.RFC3339, fields[5])
	if err != nil {
		return nil, fmt.Errorf("malformed commit date in commit %s: %w", fields[0], err)
	}
	return &schema.CommitRecord{
		ID:         fields[0],
		Parents:    splitFields(fields[1]),
		Author:     fields[2],
		AuthorDate: authorDate,
		Committer:  fields[4],
		CommitDate: commitDate,
		Refs:       parseRefs(fields[6]),
		Message:    fields[7],
	}, nil
}

// parseNameStatus turns one --name-status line into a commit file entry.
// Renames and copies report the destination path.
func parseNameStatus(line string) (schema.CommitFile, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 {
		return schema.CommitFile{}, false
	}
	action := parts[0]
	if action == "" {
		return schema.CommitFile{}, false
	}
	return schema.CommitFile{Path: parts[len(parts)-1], Action: action}, true
}

// parseRefs splits the %D decoration list into plain ref names.
func parseRefs(decorations string) []string {
	var refs []string
	for _, ref := range strings.Split(decorations, ",") {
		ref = strings.TrimSpace(ref)
		ref = strings.TrimPrefix(ref, "HEAD -> ")
		if ref == "" {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

func splitFields(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Fields(s)
}

// Static is an in-memory commit source, useful for tests and for bounded
// replays of already-fetched records.
type Static struct {
	Records []*schema.CommitRecord
}

var _ contract.CommitSource = &Static{} // Compile-time check

// Commits implements the CommitSource interface.
func (s *Static) Commits(_ context.Context) iter.Seq2[*schema.CommitRecord, error] {
	return func(yield func(*schema.CommitRecord, error) bool) {
		for _, rec := range s.Records {
			if !yield(rec, nil) {
				return
			}
		}
	}
}
