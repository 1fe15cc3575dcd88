package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// shortHashLen is how many hash characters the summary table shows.
const shortHashLen = 8

// TextWriter renders a human-readable summary table, one row per commit.
// It buffers rows and renders on Close so totals can be computed.
type TextWriter struct {
	outputFile string
	rows       [][]string
	commits    int
	files      int
	totalLOC   int
}

var _ contract.ItemWriter = &TextWriter{} // Compile-time check

// NewTextWriter creates a text writer. An empty outputFile writes to stdout.
func NewTextWriter(outputFile string) (*TextWriter, error) {
	return &TextWriter{outputFile: outputFile}, nil
}

// Write implements the ItemWriter interface.
func (w *TextWriter) Write(item *schema.Item) error {
	commitID, _ := item.Data["commit"].(string)
	if len(commitID) > shortHashLen {
		commitID = commitID[:shortHashLen]
	}
	commitDate := time.Unix(int64(item.UpdatedOn), 0).UTC().Format("2006-01-02")

	analyses := fileAnalyses(item)
	loc := 0
	totalCCN := 0.0
	deepFiles := 0
	for _, fa := range analyses {
		loc += fa.LOC
		if fa.Deep != nil {
			totalCCN += fa.Deep.AvgCCN
			deepFiles++
		}
	}
	avgCCN := 0.0
	if deepFiles > 0 {
		avgCCN = totalCCN / float64(deepFiles)
	}

	summary := w.describe(item, analyses)

	w.rows = append(w.rows, []string{
		commitID,
		commitDate,
		strconv.Itoa(len(analyses)),
		strconv.Itoa(loc),
		fmt.Sprintf("%.1f", avgCCN),
		contract.GetColorLabel(avgCCN),
		summary,
	})
	w.commits++
	w.files += len(analyses)
	w.totalLOC += loc
	return nil
}

// describe builds the free-text column for a row. File-level items show
// the commit message, module-level items show the lint verdict.
func (w *TextWriter) describe(item *schema.Item, analyses []schema.FileAnalysis) string {
	if quality, ok := item.Data["analysis"].(schema.ModuleQuality); ok {
		return fmt.Sprintf("quality %.2f (%d warnings)", quality.Quality, quality.Warnings)
	}
	msg, _ := item.Data["message"].(string)
	if analyses == nil && msg == "" {
		return "no analysis"
	}
	return contract.TruncatePath(msg, maxMessageWidth())
}

// Close implements the ItemWriter interface and renders the table.
func (w *TextWriter) Close() error {
	file, err := contract.SelectOutputFile(w.outputFile)
	if err != nil {
		return fmt.Errorf("failed to open output file %q: %w", w.outputFile, err)
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}
	return w.render(file)
}

// render writes the buffered rows plus a totals line.
func (w *TextWriter) render(writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Commit", "Date", "Files", "LOC", "AvgCCN", "Label", "Summary"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	if err := table.Bulk(w.rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Inspected %d commits (%d files, %d lines of code)\n",
		w.commits, w.files, w.totalLOC); err != nil {
		return err
	}
	return nil
}

// maxMessageWidth caps the summary column based on the terminal width.
// The other columns cost roughly 60 characters with borders and padding.
func maxMessageWidth() int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		termWidth = 80 // Conservative default for narrow terminals and CI
	}
	available := termWidth - 60
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
