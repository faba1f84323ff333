package tokenforge

import (
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/yacobolo/tokenforge/internal/report"
)

// OutputFormat represents the lint output format
type OutputFormat = report.OutputFormat

// Output formats accepted by WriteOutput.
const (
	OutputIssues   = report.OutputIssues
	OutputSummary  = report.OutputSummary
	OutputFull     = report.OutputFull
	OutputJSON     = report.OutputJSON
	OutputMarkdown = report.OutputMarkdown
)

// DetermineOutputFormat selects the appropriate output format based on flags
func DetermineOutputFormat(formatFlag string, quiet bool) OutputFormat {
	return report.DetermineOutputFormat(formatFlag, quiet)
}

// WriteOutput writes the lint result in the specified format
func WriteOutput(w io.Writer, result *LintResult, format OutputFormat, config LintConfig) {
	report.WriteOutput(w, result, format, config.reportConfig())
}

// RenderMarkdown styles Markdown for the terminal. width <= 0 disables
// wrapping.
func RenderMarkdown(markdown string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
