package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Complexity label constants.
const (
	CriticalValue = "Critical" // Critical value
	HighValue     = "High"     // High value
	ModerateValue = "Moderate" // Moderate value
	LowValue      = "Low"      // Low value
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// GetPlainLabel returns a plain text label for an average cyclomatic
// complexity value. This is the core logic used for table printing.
func GetPlainLabel(avgCCN float64) string {
	switch {
	case avgCCN >= 20:
		return CriticalValue
	case avgCCN >= 10:
		return HighValue
	case avgCCN >= 5:
		return ModerateValue
	default:
		return LowValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(avgCCN float64) string {
	text := GetPlainLabel(avgCCN)

	switch text {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// itemNamespace seeds deterministic item UUIDs. Fixed so that the same
// origin and commit always yield the same UUID across runs and machines.
var itemNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// ItemUUID derives the deterministic identifier stamped on an emitted item
// from the repository origin and the commit hash.
func ItemUUID(origin, commitID string) string {
	return uuid.NewSHA1(itemNamespace, []byte(origin+":"+commitID)).String()
}

// Extension returns the substring after the last dot of a path's base name.
// A name without a dot yields the whole name, which can never match an
// extension allow-list; that pass-through is intentional.
func Extension(filePath string) string {
	parts := strings.Split(filePath, ".")
	return parts[len(parts)-1]
}

// EndsWithAny reports whether path ends with one of the given suffixes.
// An empty suffix list matches nothing.
func EndsWithAny(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path falls back to os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncatePath shortens a path from the left so the tail stays visible.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s\n", msg)
}

// LogInfo logs an informational message to stderr, keeping stdout clean
// for emitted items.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}
