// Package schema has the data model shared by all parts of codetrawl.
package schema

import (
	"encoding/json"
	"time"
)

// CommitFile describes one file touched by a commit, as reported by the
// commit provider.
type CommitFile struct {
	Path   string `json:"file"`
	Action string `json:"action,omitempty"`
}

// CommitRecord is one commit produced by the commit source. It is immutable
// once produced; identity is the commit hash.
type CommitRecord struct {
	ID         string       // Full commit hash
	Author     string       // "Name <email>" of the author
	AuthorDate time.Time    // When the change was authored
	Committer  string       // "Name <email>" of the committer
	CommitDate time.Time    // When the change landed
	Message    string       // Subject line of the commit message
	Files      []CommitFile // Files touched, in provider order
	Parents    []string     // Parent commit hashes
	Refs       []string     // Refs pointing at this commit, if any
}

// ToMap renders the record as the mutable key set that post-processing
// strips fields from before emission.
func (c *CommitRecord) ToMap() map[string]any {
	files := make([]map[string]any, 0, len(c.Files))
	for _, f := range c.Files {
		entry := map[string]any{"file": f.Path}
		if f.Action != "" {
			entry["action"] = f.Action
		}
		files = append(files, entry)
	}
	return map[string]any{
		"commit":     c.ID,
		"Author":     c.Author,
		"AuthorDate": c.AuthorDate.Format(time.RFC3339),
		"Commit":     c.Committer,
		"CommitDate": c.CommitDate.Format(time.RFC3339),
		"message":    c.Message,
		"files":      files,
		"parents":    c.Parents,
		"refs":       c.Refs,
	}
}

// LineCounts holds the universal analyzer's output for one file.
type LineCounts struct {
	Blanks   int `json:"blanks"`
	Comments int `json:"comments"`
	LOC      int `json:"loc"`
}

// FunctionMetric holds per-function complexity data from the deep analyzer.
type FunctionMetric struct {
	Name   string `json:"name"`
	CCN    int    `json:"ccn"`
	Tokens int    `json:"tokens"`
	LOC    int    `json:"loc"`
	Lines  int    `json:"lines"`
	Args   int    `json:"args"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// DeepMetrics holds the file-level complexity data from the deep analyzer.
// FunsData is only populated when function detail was requested.
type DeepMetrics struct {
	CCN       int              `json:"ccn"`
	Tokens    int              `json:"tokens"`
	AvgCCN    float64          `json:"avg_ccn"`
	AvgLOC    float64          `json:"avg_loc"`
	AvgTokens float64          `json:"avg_tokens"`
	Funs      int              `json:"funs"`
	FunsData  []FunctionMetric `json:"funs_data,omitempty"`
}

// FileAnalysis is the merged analysis result for one file of a snapshot.
// Deep is nil when only the universal analyzer ran; Blanks and Comments
// always come from the universal analyzer, while LOC comes from the deep
// analyzer whenever Deep is set.
type FileAnalysis struct {
	FilePath string // Path relative to the snapshot root
	Language string // Detected language, empty when unknown
	Blanks   int
	Comments int
	LOC      int
	Deep     *DeepMetrics
}

// MarshalJSON flattens the deep metrics into the same object as the line
// counts, so universal-only results carry exactly the universal keys.
func (fa FileAnalysis) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"file_path": fa.FilePath,
		"blanks":    fa.Blanks,
		"comments":  fa.Comments,
		"loc":       fa.LOC,
	}
	if fa.Language != "" {
		out["language"] = fa.Language
	}
	if fa.Deep != nil {
		out["ccn"] = fa.Deep.CCN
		out["tokens"] = fa.Deep.Tokens
		out["avg_ccn"] = fa.Deep.AvgCCN
		out["avg_loc"] = fa.Deep.AvgLOC
		out["avg_tokens"] = fa.Deep.AvgTokens
		out["funs"] = fa.Deep.Funs
		if fa.Deep.FunsData != nil {
			out["funs_data"] = fa.Deep.FunsData
		}
	}
	return json.Marshal(out)
}

// ModuleQuality holds the module-level lint result for the coqua backend.
type ModuleQuality struct {
	Quality  float64  `json:"quality"`
	Warnings int      `json:"warnings"`
	Details  []string `json:"details,omitempty"`
}

// Item is the metadata-wrapped unit emitted by the pipeline, one per
// analyzed commit.
type Item struct {
	BackendName      string         `json:"backend_name"`
	BackendVersion   string         `json:"backend_version"`
	CodetrawlVersion string         `json:"codetrawl_version"`
	Timestamp        float64        `json:"timestamp"`
	Origin           string         `json:"origin"`
	UUID             string         `json:"uuid"`
	UpdatedOn        float64        `json:"updated_on"`
	Category         string         `json:"category"`
	Tag              string         `json:"tag"`
	Data             map[string]any `json:"data"`
}

// BackendDescriptor is the stable identity a backend stamps on its items.
type BackendDescriptor struct {
	Name     string
	Version  string
	Category string
}

// RunRecord summarizes one pipeline run for the run-tracking store.
type RunRecord struct {
	RunID      int64
	Origin     string
	Backend    string
	Category   string
	StartedAt  time.Time
	EndedAt    *time.Time
	Commits    int
	Files      int
	ConfigJSON string
}
