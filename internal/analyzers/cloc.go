package analyzers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// ClocAnalyzer is the universal line counter, backed by a cloc-compatible
// binary. It succeeds for any readable file: content cloc cannot classify
// (binaries, images) yields zero counts rather than an error.
type ClocAnalyzer struct {
	binary string
}

var _ contract.UniversalAnalyzer = &ClocAnalyzer{} // Compile-time check

// NewClocAnalyzer creates an analyzer using the `cloc` binary on PATH.
func NewClocAnalyzer() *ClocAnalyzer {
	return &ClocAnalyzer{binary: "cloc"}
}

// Analyze implements the UniversalAnalyzer interface.
func (c *ClocAnalyzer) Analyze(ctx context.Context, filePath string) (schema.LineCounts, error) {
	// Readability is checked up front so an unreadable file surfaces as an
	// I/O failure even when the tool would swallow it.
	f, err := os.Open(filePath)
	if err != nil {
		return schema.LineCounts{}, err
	}
	_ = f.Close()

	out, err := exec.CommandContext(ctx, c.binary, "--csv", "--quiet", filePath).Output()
	if err != nil {
		if binaryMissing(err) {
			return schema.LineCounts{}, fmt.Errorf("cloc binary not found: %w. Install cloc and ensure it is on your PATH", err)
		}
		return schema.LineCounts{}, fmt.Errorf("cloc failed on %q: %w", filePath, err)
	}
	return parseClocCSV(out)
}

// parseClocCSV extracts the blank/comment/code counts from cloc's CSV
// output. No data row means cloc could not classify the file, which counts
// as zero lines of everything.
func parseClocCSV(out []byte) (schema.LineCounts, error) {
	reader := csv.NewReader(bytes.NewReader(out))
	reader.FieldsPerRecord = -1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return schema.LineCounts{}, nil
		}
		if err != nil {
			// cloc pads its CSV with prose lines; skip anything unparsable.
			continue
		}
		if len(record) < 5 || record[0] != "1" || record[1] == "SUM" {
			continue
		}
		blanks, err1 := strconv.Atoi(record[2])
		comments, err2 := strconv.Atoi(record[3])
		loc, err3 := strconv.Atoi(record[4])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		return schema.LineCounts{Blanks: blanks, Comments: comments, LOC: loc}, nil
	}
}
