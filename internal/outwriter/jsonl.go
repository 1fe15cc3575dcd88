package outwriter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// JSONLWriter streams one JSON document per item, newline-delimited.
// This is the default output mode and the one meant for piping into
// downstream tooling.
type JSONLWriter struct {
	file *os.File
	enc  *json.Encoder
}

var _ contract.ItemWriter = &JSONLWriter{} // Compile-time check

// NewJSONLWriter creates a JSONL writer. An empty outputFile writes to stdout.
func NewJSONLWriter(outputFile string) (*JSONLWriter, error) {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file %q: %w", outputFile, err)
	}
	return &JSONLWriter{file: file, enc: json.NewEncoder(file)}, nil
}

// Write implements the ItemWriter interface.
func (w *JSONLWriter) Write(item *schema.Item) error {
	if err := w.enc.Encode(item); err != nil {
		return fmt.Errorf("failed to encode item %s: %w", item.UUID, err)
	}
	return nil
}

// Close implements the ItemWriter interface.
func (w *JSONLWriter) Close() error {
	if w.file != os.Stdout {
		return w.file.Close()
	}
	return nil
}
