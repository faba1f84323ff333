// Package main provides the tokenforge CLI for resolving, linting and
// exporting design tokens.
package main

import (
	"errors"
	"fmt"
	"os"
)

// exitError carries a non-zero exit code without an error message, e.g. a
// failed lint whose issues were already printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
