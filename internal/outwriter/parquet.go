package outwriter

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// FileMetricsRow is the flattened, columnar form of one analyzed file.
// Each emitted item fans out into one row per file in its analysis payload.
type FileMetricsRow struct {
	// ItemUUID is the identifier of the item this row was flattened from
	ItemUUID string `parquet:"item_uuid,snappy"`

	// Origin is the repository URI the item was produced from
	Origin string `parquet:"origin,snappy"`

	// Tag is the label stamped on the producing run
	Tag string `parquet:"tag,snappy"`

	// Backend is the analysis backend that produced the item
	Backend string `parquet:"backend,snappy"`

	// Category is the item category
	Category string `parquet:"category,snappy"`

	// CommitID is the full hash of the analyzed commit
	CommitID string `parquet:"commit,snappy"`

	// CommitDate is the committer date of the analyzed commit
	CommitDate time.Time `parquet:"commit_date,snappy"`

	// FilePath is the snapshot-relative path of the analyzed file
	FilePath string `parquet:"file_path,snappy"`

	// Language is the detected language (nullable)
	Language *string `parquet:"language,optional,snappy"`

	// Blanks is the number of blank lines
	Blanks int32 `parquet:"blanks,snappy"`

	// Comments is the number of comment lines
	Comments int32 `parquet:"comments,snappy"`

	// LOC is the number of lines of code
	LOC int32 `parquet:"loc,snappy"`

	// CCN is the total cyclomatic complexity (nullable, deep analysis only)
	CCN *int32 `parquet:"ccn,optional,snappy"`

	// Tokens is the total token count (nullable, deep analysis only)
	Tokens *int32 `parquet:"tokens,optional,snappy"`

	// AvgCCN is the average complexity per function (nullable)
	AvgCCN *float64 `parquet:"avg_ccn,optional,snappy"`

	// AvgLOC is the average lines of code per function (nullable)
	AvgLOC *float64 `parquet:"avg_loc,optional,snappy"`

	// AvgTokens is the average token count per function (nullable)
	AvgTokens *float64 `parquet:"avg_tokens,optional,snappy"`

	// Funs is the number of functions found (nullable)
	Funs *int32 `parquet:"funs,optional,snappy"`
}

// ParquetWriter buffers flattened file rows and writes a single Parquet
// file on Close using github.com/parquet-go/parquet-go.
type ParquetWriter struct {
	outputPath string
	rows       []FileMetricsRow
}

var _ contract.ItemWriter = &ParquetWriter{} // Compile-time check

// NewParquetWriter creates a Parquet writer. An output path is mandatory
// because the format cannot be streamed to a terminal.
func NewParquetWriter(outputPath string) (*ParquetWriter, error) {
	if outputPath == "" {
		return nil, fmt.Errorf("parquet output requires an output file path")
	}
	return &ParquetWriter{outputPath: outputPath}, nil
}

// Write implements the ItemWriter interface. Items without per-file
// analysis payloads contribute no rows.
func (w *ParquetWriter) Write(item *schema.Item) error {
	commitID, _ := item.Data["commit"].(string)
	commitDate := time.Unix(int64(item.UpdatedOn), 0).UTC()

	for _, fa := range fileAnalyses(item) {
		row := FileMetricsRow{
			ItemUUID:   item.UUID,
			Origin:     item.Origin,
			Tag:        item.Tag,
			Backend:    item.BackendName,
			Category:   item.Category,
			CommitID:   commitID,
			CommitDate: commitDate,
			FilePath:   fa.FilePath,
			Blanks:     int32(fa.Blanks),
			Comments:   int32(fa.Comments),
			LOC:        int32(fa.LOC),
		}
		if fa.Language != "" {
			lang := fa.Language
			row.Language = &lang
		}
		if fa.Deep != nil {
			ccn := int32(fa.Deep.CCN)
			tokens := int32(fa.Deep.Tokens)
			funs := int32(fa.Deep.Funs)
			avgCCN := fa.Deep.AvgCCN
			avgLOC := fa.Deep.AvgLOC
			avgTokens := fa.Deep.AvgTokens
			row.CCN = &ccn
			row.Tokens = &tokens
			row.Funs = &funs
			row.AvgCCN = &avgCCN
			row.AvgLOC = &avgLOC
			row.AvgTokens = &avgTokens
		}
		w.rows = append(w.rows, row)
	}
	return nil
}

// Close implements the ItemWriter interface. The schema is derived from
// the FileMetricsRow struct tags.
func (w *ParquetWriter) Close() error {
	file, err := os.Create(w.outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[FileMetricsRow](file)
	if _, err := writer.Write(w.rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
