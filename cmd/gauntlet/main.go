package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes, scripted against by CI wrappers and git hooks.
const (
	ExitSuccess     = 0 // every check passed (warnings allowed)
	ExitCheckFailed = 1 // the run finished but at least one check failed
	ExitError       = 2 // the run itself could not complete
)

// CheckFailureError indicates that the run completed, but one or more
// checks failed.
type CheckFailureError struct {
	Message string
}

func (e *CheckFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// A completed-but-failing run exits 1; anything else means
		// gauntlet itself broke and exits 2.
		var checkFailureErr *CheckFailureError
		if errors.As(err, &checkFailureErr) {
			os.Exit(ExitCheckFailed)
		}
		os.Exit(ExitError)
	}
}
