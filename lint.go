package tokenforge

import (
	"fmt"

	"github.com/yacobolo/tokenforge/internal/loader"
	"github.com/yacobolo/tokenforge/internal/report"
)

// LintConfig holds linting configuration
type LintConfig struct {
	Workspace
	Strict bool // Exit with code 1 on warnings too

	// golangci-style output configuration
	MaxIssuesPerLinter int  // 0 = unlimited (default)
	MaxSameIssues      int  // 0 = unlimited (default)
	PrintIssuedLines   bool // Show source lines with issues
	PrintLinterName    bool // Show (tokenref) suffix
	UseColors          bool // Force color output
}

func (c LintConfig) reportConfig() report.Config {
	return report.Config{
		MaxIssuesPerLinter: c.MaxIssuesPerLinter,
		MaxSameIssues:      c.MaxSameIssues,
		PrintIssuedLines:   c.PrintIssuedLines,
		PrintLinterName:    c.PrintLinterName,
		UseColors:          c.UseColors,
	}
}

// LintResult contains linting analysis results.
type LintResult = report.Result

// Issue is a single finding in golangci-lint format.
type Issue = report.Issue

// Severity levels of an Issue.
const (
	SeverityError   = report.SeverityError
	SeverityWarning = report.SeverityWarning
	SeverityInfo    = report.SeverityInfo
)

// Lint loads the workspace and runs every token linter over it.
func Lint(config LintConfig) (*LintResult, error) {
	ws, err := loader.Load(config.loaderConfig(true))
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}

	result := report.Analyze(ws.LintInput())
	result.Limit(config.reportConfig())
	return result, nil
}

// Failed applies the exit-code policy: errors always fail, warnings fail in
// strict mode.
func Failed(result *LintResult, strict bool) bool {
	errors, warnings := result.Counts()
	if strict {
		return errors+warnings > 0
	}
	return errors > 0
}
