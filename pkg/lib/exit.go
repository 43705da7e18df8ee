package lib

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCoder is implemented by errors that carry their own process exit code.
type ExitCoder interface {
	ExitCode() int
}

// Exit prints the error and exits the program with its exit code, 1 by default.
func Exit(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes err to w in the "Error: ..." form and returns the exit code
// Exit would use.
func Report(w io.Writer, err error) int {
	var ec ExitCoder
	if errors.As(err, &ec) {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(w, "Error:", msg)
		}
		return ec.ExitCode()
	}
	fmt.Fprintln(w, "Error:", err)
	return 1
}

// Silent wraps code in an error that exits without printing anything, for
// commands that have already reported their outcome.
func Silent(code int) error {
	return silentError(code)
}

type silentError int

func (e silentError) Error() string { return "" }
func (e silentError) ExitCode() int { return int(e) }
