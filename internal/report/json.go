package report

import (
	"encoding/json"
	"io"
	"time"
)

// JSONVersion is the schema version of the JSON report.
const JSONVersion = "1.0"

// JSONOutput represents the structured JSON export schema
type JSONOutput struct {
	Version   string      `json:"version"`
	Timestamp string      `json:"timestamp"`
	Summary   JSONSummary `json:"summary"`
	Stats     JSONStats   `json:"stats"`
	Issues    []JSONIssue `json:"issues"`
	Warnings  []string    `json:"warnings,omitempty"`
}

// JSONSummary contains high-level issue counts
type JSONSummary struct {
	TotalIssues int `json:"total_issues"`
	Errors      int `json:"errors"`
	Warnings    int `json:"warnings"`
	Truncated   int `json:"truncated"`
	FilesLoaded int `json:"files_loaded"`
}

// JSONStats contains token statistics
type JSONStats struct {
	Tokens           int     `json:"tokens"`
	Aliases          int     `json:"aliases"`
	Resolved         int     `json:"resolved"`
	UnknownRefs      int     `json:"unknown_references"`
	CyclicRefs       int     `json:"cyclic_references"`
	Deprecated       int     `json:"deprecated"`
	Themes           int     `json:"themes"`
	Overrides        int     `json:"overrides"`
	OrphanOverrides  int     `json:"orphan_overrides"`
	Templates        int     `json:"templates"`
	Sections         int     `json:"sections"`
	HealthPercentage float64 `json:"health_percentage"`
}

// JSONIssue represents a single lint issue
type JSONIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Linter   string `json:"linter"`
	Source   string `json:"source,omitempty"` // Optional source line
}

// WriteJSON writes the lint result as JSON
func WriteJSON(w io.Writer, result *Result) error {
	output := buildJSONOutput(result, time.Now())
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildJSONOutput converts Result to JSONOutput
func buildJSONOutput(result *Result, now time.Time) JSONOutput {
	errors, warnings := result.Counts()

	jsonIssues := make([]JSONIssue, len(result.Issues))
	for i, issue := range result.Issues {
		source := ""
		if len(issue.SourceLines) > 0 {
			source = issue.SourceLines[0]
		}
		jsonIssues[i] = JSONIssue{
			File:     issue.Pos.Filename,
			Line:     issue.Pos.Line,
			Column:   issue.Pos.Column,
			Severity: issue.Severity,
			Message:  issue.Text,
			Linter:   issue.FromLinter,
			Source:   source,
		}
	}

	s := result.Stats
	return JSONOutput{
		Version:   JSONVersion,
		Timestamp: now.Format(time.RFC3339),
		Summary: JSONSummary{
			TotalIssues: len(result.Issues),
			Errors:      errors,
			Warnings:    warnings,
			Truncated:   result.TruncatedCount,
			FilesLoaded: s.Files,
		},
		Stats: JSONStats{
			Tokens:           s.Tokens,
			Aliases:          s.Aliases,
			Resolved:         s.Resolved,
			UnknownRefs:      s.Broken,
			CyclicRefs:       s.Cyclic,
			Deprecated:       s.Deprecated,
			Themes:           s.Themes,
			Overrides:        s.Overrides,
			OrphanOverrides:  s.Orphans,
			Templates:        s.Templates,
			Sections:         s.Sections,
			HealthPercentage: s.HealthPercentage(),
		},
		Issues:   jsonIssues,
		Warnings: result.Warnings,
	}
}
