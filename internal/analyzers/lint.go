package analyzers

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// ratingPattern matches pylint's closing score line, e.g.
// "Your code has been rated at 7.43/10 (previous run: 7.20/10, +0.23)".
var ratingPattern = regexp.MustCompile(`rated at (-?\d+(?:\.\d+)?)/10`)

// messagePattern matches one reported message, e.g.
// "mymodule/core.py:12:0: C0114: Missing module docstring (missing-module-docstring)".
var messagePattern = regexp.MustCompile(`^\S+:\d+:\d+: [A-Z]\d{4}:`)

// PylintAnalyzer evaluates module quality with a pylint-compatible binary.
type PylintAnalyzer struct {
	binary string
}

var _ contract.LintAnalyzer = &PylintAnalyzer{} // Compile-time check

// NewPylintAnalyzer creates an analyzer using the `pylint` binary on PATH.
func NewPylintAnalyzer() *PylintAnalyzer {
	return &PylintAnalyzer{binary: "pylint"}
}

// Analyze implements the LintAnalyzer interface. Details, when requested,
// carry the individual reported messages.
func (p *PylintAnalyzer) Analyze(ctx context.Context, modulePath string, details bool) (schema.ModuleQuality, error) {
	out, err := exec.CommandContext(ctx, p.binary, "--persistent=n", "-rn", modulePath).Output()
	if err != nil {
		if binaryMissing(err) {
			return schema.ModuleQuality{}, fmt.Errorf("pylint binary not found: %w. Install pylint and ensure it is on your PATH", err)
		}
		// A non-zero exit encodes the message severities found; the report
		// on stdout is still complete.
		if !exitFailure(err) {
			return schema.ModuleQuality{}, fmt.Errorf("pylint failed on %q: %w", modulePath, err)
		}
	}
	return parsePylintOutput(out, details), nil
}

// parsePylintOutput extracts the 0-10 rating and the reported messages.
func parsePylintOutput(out []byte, details bool) schema.ModuleQuality {
	var quality schema.ModuleQuality
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if m := ratingPattern.FindStringSubmatch(line); m != nil {
			if score, err := strconv.ParseFloat(m[1], 64); err == nil {
				quality.Quality = score
			}
			continue
		}
		if messagePattern.MatchString(line) {
			quality.Warnings++
			if details {
				quality.Details = append(quality.Details, line)
			}
		}
	}
	return quality
}
