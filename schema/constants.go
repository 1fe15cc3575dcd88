package schema

// CoreVersion is the version of the codetrawl core stamped on every item.
const CoreVersion = "0.3.0"

// Item categories, one per backend.
const (
	CategoryCoCom = "code_complexity"
	CategoryCount = "code_line_count"
	CategoryCoQua = "code_quality"
)

// OutputMode selects how emitted items are written.
type OutputMode string

// Supported output modes.
const (
	JSONLOut   OutputMode = "jsonl"
	ParquetOut OutputMode = "parquet"
	TextOut    OutputMode = "text"
)

// StoreBackend selects the database backing the run-tracking store.
type StoreBackend string

// Supported run store backends.
const (
	SQLiteBackend     StoreBackend = "sqlite"
	MySQLBackend      StoreBackend = "mysql"
	PostgreSQLBackend StoreBackend = "postgresql"
	NoneBackend       StoreBackend = "none"
)

// DeepStatus tags the outcome of a deep analyzer invocation, so callers
// branch on an explicit tag instead of error types.
type DeepStatus int

// Deep analyzer outcomes.
const (
	// DeepOK means the deep analyzer produced metrics.
	DeepOK DeepStatus = iota
	// DeepUnsupported means the analyzer cannot handle the file's syntax.
	// The file analysis falls back to the universal-only result.
	DeepUnsupported
	// DeepFailed means the file could not be read. This aborts the run,
	// since it indicates a corrupted snapshot.
	DeepFailed
)

// DeepOutcome is the tagged result of a deep analyzer invocation. LOC and
// Metrics are only meaningful when Status is DeepOK; Err carries the cause
// for DeepUnsupported and DeepFailed.
type DeepOutcome struct {
	Status  DeepStatus
	LOC     int
	Metrics DeepMetrics
	Err     error
}
