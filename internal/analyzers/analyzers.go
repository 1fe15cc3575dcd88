// Package analyzers has the exec adapters for the external analysis tools.
// Each adapter shells out to a well-known binary and converts its output
// into the structured metrics the composition layer consumes; the tools
// themselves are treated as black boxes.
package analyzers

import (
	"errors"
	"os/exec"
)

// binaryMissing reports whether the error means the analyzer binary is not
// installed, as opposed to the tool rejecting its input.
func binaryMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// exitFailure reports whether the error is the tool exiting non-zero.
func exitFailure(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
