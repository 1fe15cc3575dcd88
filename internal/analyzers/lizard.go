package analyzers

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// LizardAnalyzer is the deep analyzer, backed by a lizard-compatible
// binary. It produces cyclomatic complexity, token and function-level
// metrics for the languages the tool understands.
type LizardAnalyzer struct {
	binary string
}

var _ contract.DeepAnalyzer = &LizardAnalyzer{} // Compile-time check

// NewLizardAnalyzer creates an analyzer using the `lizard` binary on PATH.
func NewLizardAnalyzer() *LizardAnalyzer {
	return &LizardAnalyzer{binary: "lizard"}
}

// Analyze implements the DeepAnalyzer interface. The outcome is tagged:
// a file the tool cannot parse comes back as DeepUnsupported so the caller
// can fall back to coarse metrics, while a read failure is DeepFailed.
func (l *LizardAnalyzer) Analyze(ctx context.Context, filePath string, functions bool) schema.DeepOutcome {
	if _, err := os.Stat(filePath); err != nil {
		return schema.DeepOutcome{Status: schema.DeepFailed, Err: err}
	}

	out, err := exec.CommandContext(ctx, l.binary, filePath).Output()
	if err != nil {
		if binaryMissing(err) {
			return schema.DeepOutcome{Status: schema.DeepFailed,
				Err: fmt.Errorf("lizard binary not found: %w. Install lizard and ensure it is on your PATH", err)}
		}
		if exitFailure(err) {
			// The tool rejected the file's syntax.
			return schema.DeepOutcome{Status: schema.DeepUnsupported, Err: err}
		}
		return schema.DeepOutcome{Status: schema.DeepFailed, Err: err}
	}

	outcome, ok := parseLizardOutput(out, functions)
	if !ok {
		return schema.DeepOutcome{Status: schema.DeepUnsupported,
			Err: fmt.Errorf("lizard produced no metrics for %q", filePath)}
	}
	return outcome
}

// parseLizardOutput reads lizard's plain report: a per-function table
// followed by a per-file summary table. The summary row supplies the file
// totals; per-function rows supply funs_data and the ccn/token sums.
func parseLizardOutput(out []byte, functions bool) (schema.DeepOutcome, bool) {
	var (
		funs       []schema.FunctionMetric
		ccnTotal   int
		tokenTotal int
		inSummary  bool
		haveFile   bool
		outcome    schema.DeepOutcome
	)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "="):
			continue
		case strings.HasPrefix(line, "NLOC") && strings.Contains(line, "Avg.NLOC"):
			inSummary = true
			continue
		case strings.HasPrefix(line, "NLOC") || strings.HasPrefix(line, "No files"):
			continue
		case strings.Contains(line, "file analyzed") || strings.Contains(line, "files analyzed"):
			continue
		}

		fields := strings.Fields(line)
		if inSummary {
			// NLOC  Avg.NLOC  AvgCCN  Avg.token  function_cnt  file
			if len(fields) < 6 {
				continue
			}
			loc, err1 := strconv.Atoi(fields[0])
			avgLOC, err2 := strconv.ParseFloat(fields[1], 64)
			avgCCN, err3 := strconv.ParseFloat(fields[2], 64)
			avgTokens, err4 := strconv.ParseFloat(fields[3], 64)
			funCount, err5 := strconv.Atoi(fields[4])
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
				continue
			}
			outcome.LOC = loc
			outcome.Metrics.AvgLOC = avgLOC
			outcome.Metrics.AvgCCN = avgCCN
			outcome.Metrics.AvgTokens = avgTokens
			outcome.Metrics.Funs = funCount
			haveFile = true
			continue
		}

		// NLOC  CCN  token  PARAM  length  location
		if len(fields) < 6 {
			continue
		}
		fn, ok := parseFunctionRow(fields)
		if !ok {
			continue
		}
		ccnTotal += fn.CCN
		tokenTotal += fn.Tokens
		funs = append(funs, fn)
	}

	if !haveFile {
		return schema.DeepOutcome{}, false
	}
	outcome.Status = schema.DeepOK
	outcome.Metrics.CCN = ccnTotal
	outcome.Metrics.Tokens = tokenTotal
	if functions {
		outcome.Metrics.FunsData = funs
	}
	return outcome, true
}

// parseFunctionRow turns one per-function table row into a FunctionMetric.
// The location field has the shape name@start-end@path.
func parseFunctionRow(fields []string) (schema.FunctionMetric, bool) {
	loc, err1 := strconv.Atoi(fields[0])
	ccn, err2 := strconv.Atoi(fields[1])
	tokens, err3 := strconv.Atoi(fields[2])
	params, err4 := strconv.Atoi(fields[3])
	length, err5 := strconv.Atoi(fields[4])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return schema.FunctionMetric{}, false
	}

	location := strings.Join(fields[5:], " ")
	parts := strings.Split(location, "@")
	if len(parts) < 2 {
		return schema.FunctionMetric{}, false
	}
	name := parts[0]
	span := strings.SplitN(parts[1], "-", 2)
	if len(span) != 2 {
		return schema.FunctionMetric{}, false
	}
	start, err1 := strconv.Atoi(span[0])
	end, err2 := strconv.Atoi(span[1])
	if err1 != nil || err2 != nil {
		return schema.FunctionMetric{}, false
	}

	return schema.FunctionMetric{
		Name:   name,
		CCN:    ccn,
		Tokens: tokens,
		LOC:    loc,
		Lines:  length,
		Args:   params,
		Start:  start,
		End:    end,
	}, true
}
