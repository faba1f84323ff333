package report

import (
	"fmt"
	"io"
)

// VerboseReporter handles detailed statistics
type VerboseReporter struct {
	w         io.Writer
	useColors bool
}

// NewVerboseReporter creates a verbose reporter
func NewVerboseReporter(w io.Writer, useColors bool) *VerboseReporter {
	return &VerboseReporter{
		w:         w,
		useColors: useColors,
	}
}

// PrintStatistics outputs detailed token statistics
func (r *VerboseReporter) PrintStatistics(result Result) {
	s := result.Stats

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, "Token Statistics", r.useColors))
	fmt.Fprintln(r.w, "----------------")

	fmt.Fprintf(r.w, "Total Tokens:       %d\n", s.Tokens)
	fmt.Fprintf(r.w, "Aliases:            %d\n", s.Aliases)
	fmt.Fprintf(r.w, "Resolved:           %d (%.1f%%)\n", s.Resolved, s.HealthPercentage())
	fmt.Fprintf(r.w, "Unknown References: %d\n", s.Broken)
	fmt.Fprintf(r.w, "Cyclic References:  %d\n", s.Cyclic)
	fmt.Fprintf(r.w, "Deprecated:         %d\n", s.Deprecated)
	fmt.Fprintf(r.w, "Themes:             %d (%d overrides, %d orphaned)\n", s.Themes, s.Overrides, s.Orphans)
	fmt.Fprintf(r.w, "Custom Templates:   %d\n", s.Templates)
	fmt.Fprintf(r.w, "Document Sections:  %d\n", s.Sections)
	fmt.Fprintf(r.w, "Files Loaded:       %d\n", s.Files)
}

// PrintResolutionHealth shows a progress bar of resolved tokens
func (r *VerboseReporter) PrintResolutionHealth(result Result) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, "Resolution Health", r.useColors))
	fmt.Fprintln(r.w, "-----------------")
	printProgressBar(r.w, result.Stats.HealthPercentage())
}

// PrintWarnings shows non-issue warnings
func (r *VerboseReporter) PrintWarnings(result Result) {
	if len(result.Warnings) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleYellow, "Warnings", r.useColors))
	fmt.Fprintln(r.w, "--------")

	for _, warning := range result.Warnings {
		fmt.Fprintf(r.w, "• %s\n", warning)
	}
}

// printProgressBar prints a visual progress bar
func printProgressBar(w io.Writer, percentage float64) {
	barWidth := 20
	filled := int(percentage / 100 * float64(barWidth))

	fmt.Fprint(w, "[")
	for i := 0; i < barWidth; i++ {
		if i < filled {
			fmt.Fprint(w, "█")
		} else {
			fmt.Fprint(w, "░")
		}
	}
	fmt.Fprintf(w, "] %.1f%%\n", percentage)
}
