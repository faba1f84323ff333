package report

import "sort"

// Config holds reporting configuration
type Config struct {
	MaxIssuesPerLinter int  // 0 = unlimited (default)
	MaxSameIssues      int  // 0 = unlimited (default)
	PrintIssuedLines   bool // Show source lines with issues (default: true)
	PrintLinterName    bool // Show (tokenref) suffix (default: true)
	UseColors          bool // Enable color output (default: auto-detect)
}

// Stats summarizes the analyzed workspace
type Stats struct {
	Tokens     int // tokens in the set
	Aliases    int // tokens with a reference
	Resolved   int // tokens that resolved
	Broken     int // unknown references
	Cyclic     int // reference loops
	Themes     int // override layers
	Overrides  int // override entries across all layers
	Orphans    int // override entries matching no token
	Templates  int // custom templates
	Sections   int // document sections present
	Deprecated int // deprecated tokens
	Files      int // files loaded
}

// HealthPercentage is the share of tokens that resolve.
func (s Stats) HealthPercentage() float64 {
	if s.Tokens == 0 {
		return 100
	}
	return float64(s.Resolved) / float64(s.Tokens) * 100
}

// Result contains lint analysis results
type Result struct {
	Issues         []Issue
	Stats          Stats
	Warnings       []string // non-issue notes, e.g. skipped files
	TruncatedCount int      // Issues removed due to limits
}

// Counts returns the number of errors and warnings.
func (r *Result) Counts() (errors, warnings int) {
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return errors, warnings
}

// HasErrors reports whether any issue is an error.
func (r *Result) HasErrors() bool {
	errors, _ := r.Counts()
	return errors > 0
}

// ByLinter counts issues per linter.
func (r *Result) ByLinter() map[string]int {
	counts := make(map[string]int)
	for _, issue := range r.Issues {
		counts[issue.FromLinter]++
	}
	return counts
}

// OutputFormat represents the lint output format
type OutputFormat string

const (
	// OutputIssues shows only errors/warnings in golangci-lint format (CI-friendly)
	OutputIssues OutputFormat = "issues"
	// OutputSummary shows statistics only
	OutputSummary OutputFormat = "summary"
	// OutputFull shows issues + statistics (interactive development)
	OutputFull OutputFormat = "full"
	// OutputJSON exports structured data in JSON format (tooling integration)
	OutputJSON OutputFormat = "json"
	// OutputMarkdown generates a Markdown report (shareable reports)
	OutputMarkdown OutputFormat = "markdown"
)

// DetermineOutputFormat selects the output format from flags.
func DetermineOutputFormat(formatFlag string, quiet bool) OutputFormat {
	// Explicit quiet flag wins (exit code only)
	if quiet {
		return OutputIssues
	}

	switch formatFlag {
	case "issues":
		return OutputIssues
	case "summary":
		return OutputSummary
	case "full":
		return OutputFull
	case "json":
		return OutputJSON
	case "markdown", "md":
		return OutputMarkdown
	}

	// Issues only by default, like golangci-lint
	return OutputIssues
}

// Limit applies max-issues-per-linter and max-same-issues constraints and
// records how many issues were dropped.
func (r *Result) Limit(config Config) {
	originalCount := len(r.Issues)
	issues := r.Issues

	if config.MaxIssuesPerLinter > 0 {
		issues = limitPerLinter(issues, config.MaxIssuesPerLinter)
	}

	// Deduplication by message text
	if config.MaxSameIssues > 0 {
		issues = deduplicateSameIssues(issues, config.MaxSameIssues)
	}

	r.Issues = issues
	r.TruncatedCount += originalCount - len(issues)
}

func limitPerLinter(issues []Issue, max int) []Issue {
	counts := make(map[string]int)
	var filtered []Issue
	for _, issue := range issues {
		if counts[issue.FromLinter] < max {
			filtered = append(filtered, issue)
			counts[issue.FromLinter]++
		}
	}
	return filtered
}

// deduplicateSameIssues limits how many times the same message appears
func deduplicateSameIssues(issues []Issue, maxSame int) []Issue {
	messageCounts := make(map[string]int)
	var filtered []Issue

	for _, issue := range issues {
		count := messageCounts[issue.Text]
		if count < maxSame {
			filtered = append(filtered, issue)
			messageCounts[issue.Text]++
		}
	}

	return filtered
}

// SortIssues orders issues by file, line and column. Issues without a file
// keep their relative order at the end.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i].Pos, issues[j].Pos
		if (a.Filename == "") != (b.Filename == "") {
			return a.Filename != ""
		}
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
