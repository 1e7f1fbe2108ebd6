package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0
	ExitRegression = 1 // replay found mismatches
	ExitError      = 2 // configuration or runtime error
)

// RegressionError reports that a replay ran but some cases disagreed.
type RegressionError struct {
	Mismatches int
}

func (e *RegressionError) Error() string {
	return fmt.Sprintf("%d fixture cases did not match", e.Mismatches)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var regression *RegressionError
		if errors.As(err, &regression) {
			os.Exit(ExitRegression)
		}
		os.Exit(ExitError)
	}
}
