package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yacobolo/tokenforge"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint tokens, overrides and templates",
	Long: `Check the workspace for unknown and cyclic references, orphan overrides,
aliases to deprecated tokens, template mistakes and missing document sections.`,
	PreRunE: preRun,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runLint(cmd)
	},
}

func init() {
	f := lintCmd.Flags()
	f.Bool("strict", false, "Exit 1 on warnings too (CI mode)")
	f.String("output-format", "", "Output format: issues|summary|full|json|markdown")
	f.Bool("pretty", false, "Render the Markdown report for the terminal")
	f.Int("max-issues-per-linter", 0, "Max issues to show per linter (0=unlimited)")
	f.Int("max-same-issues", 0, "Max repeated issues to show (0=unlimited)")
	f.Bool("print-lines", true, "Show source lines with issues")
	f.Bool("print-linter-name", true, "Show (tokenref) suffix on issues")
}

// runLint is shared between `tokenforge lint` and `tokenforge export --lint`.
func runLint(cmd *cobra.Command) error {
	lintConfig := buildLintConfig()

	lintResult, err := tokenforge.Lint(lintConfig)
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	q := quiet()
	outputFormat := getStringWithFallback("output-format", "lint.output-format", "")
	format := tokenforge.DetermineOutputFormat(outputFormat, q)

	if !q {
		out := cmd.OutOrStdout()
		if format == tokenforge.OutputMarkdown && getBoolWithFallback("pretty", "lint.pretty", false) {
			var buf bytes.Buffer
			tokenforge.WriteOutput(&buf, lintResult, format, lintConfig)
			rendered, err := tokenforge.RenderMarkdown(buf.String(), 100)
			if err != nil {
				return fmt.Errorf("render report: %w", err)
			}
			fmt.Fprint(out, rendered)
		} else {
			tokenforge.WriteOutput(out, lintResult, format, lintConfig)
		}
	}

	// Exit code logic - "Soft Gate" approach
	if tokenforge.Failed(lintResult, lintConfig.Strict) {
		return &exitError{code: 1}
	}
	return nil
}
