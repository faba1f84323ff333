package report

// Issue represents a single lint finding in golangci-lint format
type Issue struct {
	FromLinter  string     `json:"FromLinter"`  // "tokenref"
	Text        string     `json:"Text"`        // "unknown reference \"color.missing\" (via color.cta)"
	Severity    string     `json:"Severity"`    // "", "warning", "error"
	SourceLines []string   `json:"SourceLines"` // Lines of the source file around the issue
	Pos         IssuePos   `json:"Pos"`         // File location
	LineRange   *LineRange `json:"LineRange"`   // Optional range
}

// IssuePos specifies the exact location of an issue
type IssuePos struct {
	Filename string `json:"Filename"` // "tokens/colors.yaml"
	Line     int    `json:"Line"`     // 12
	Column   int    `json:"Column"`   // 3 (1-based)
}

// LineRange specifies a range of lines
type LineRange struct {
	From int `json:"From"`
	To   int `json:"To"`
}

// Severity constants
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = ""
)

// Linter names
const (
	LinterRef      = "tokenref"      // unknown and cyclic references
	LinterTheme    = "tokentheme"    // orphan overrides
	LinterTemplate = "tokentemplate" // custom template warnings
	LinterStatus   = "tokenstatus"   // aliases into deprecated or draft tokens
	LinterDoc      = "tokendoc"      // missing document sections
)

// Linters lists every linter in report order.
var Linters = []string{LinterRef, LinterTheme, LinterTemplate, LinterStatus, LinterDoc}

// Issue message formats
const (
	IssueBrokenRef      = "token %q: %v"
	IssueOrphanOverride = "override %q in theme %q matches no token"
	IssueTemplate       = "template %q: %s"
	IssueDeprecatedRef  = "%q aliases deprecated token %q"
	IssueDraftRef       = "published token %q depends on draft token %q"
	IssueMissingSection = "document has no %q section"
)
