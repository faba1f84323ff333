package report

import (
	"fmt"
	"io"
	"strings"
)

// Status badges used in the Markdown executive summary.
const (
	StatusHealthy        = "🟢 Healthy"
	StatusReviewWarnings = "🟡 Review Warnings"
	StatusNeedsAttention = "🔴 Needs Attention"
)

// WriteMarkdown writes the lint result as a shareable Markdown report
func WriteMarkdown(w io.Writer, result *Result) error {
	var b strings.Builder
	errors, warnings := result.Counts()
	s := result.Stats

	b.WriteString("# Token Lint Report\n\n")

	b.WriteString("## Executive Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(&b, "| **Status** | %s |\n", statusBadge(errors, warnings))
	fmt.Fprintf(&b, "| **Total Issues** | %d (%d errors, %d warnings) |\n", len(result.Issues), errors, warnings)
	fmt.Fprintf(&b, "| **Resolution Health** | %.1f%% |\n", s.HealthPercentage())
	fmt.Fprintf(&b, "| **Tokens Resolved** | %d / %d |\n", s.Resolved, s.Tokens)
	fmt.Fprintf(&b, "| **Files Loaded** | %d |\n", s.Files)
	if result.TruncatedCount > 0 {
		fmt.Fprintf(&b, "| **Truncated** | %d |\n", result.TruncatedCount)
	}

	writeIssueSection(&b, "## ❌ Errors", result.Issues, SeverityError)
	writeIssueSection(&b, "## ⚠️ Warnings", result.Issues, SeverityWarning)
	writeIssueSection(&b, "## ℹ️ Notes", result.Issues, SeverityInfo)

	b.WriteString("\n## 📊 Detailed Statistics\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("| --- | --- |\n")
	rows := []struct {
		label string
		n     int
	}{
		{"Tokens", s.Tokens},
		{"Aliases", s.Aliases},
		{"Unknown references", s.Broken},
		{"Cyclic references", s.Cyclic},
		{"Deprecated tokens", s.Deprecated},
		{"Themes", s.Themes},
		{"Overrides", s.Overrides},
		{"Orphan overrides", s.Orphans},
		{"Custom templates", s.Templates},
		{"Document sections", s.Sections},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %d |\n", row.label, row.n)
	}

	if len(result.Warnings) > 0 {
		b.WriteString("\n## 📝 Loader Warnings\n\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}

	b.WriteString("\n---\n\n*Generated by tokenforge lint v" + JSONVersion + "*\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeIssueSection(b *strings.Builder, heading string, issues []Issue, severity string) {
	var matching []Issue
	for _, issue := range issues {
		if issue.Severity == severity {
			matching = append(matching, issue)
		}
	}
	if len(matching) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%s\n\n", heading)
	b.WriteString("| Location | Linter | Message |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, issue := range matching {
		fmt.Fprintf(b, "| `%s` | %s | %s |\n",
			escapeMarkdown(strings.TrimSuffix(formatLocation(issue.Pos), ":")),
			issue.FromLinter,
			escapeMarkdown(issue.Text))
	}
}

func statusBadge(errors, warnings int) string {
	switch {
	case errors > 0:
		return StatusNeedsAttention
	case warnings > 0:
		return StatusReviewWarnings
	default:
		return StatusHealthy
	}
}

// escapeMarkdown escapes table delimiters and line breaks.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
