package report

import (
	"fmt"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/resolve"
	"github.com/yacobolo/tokenforge/internal/theme"
	"github.com/yacobolo/tokenforge/internal/token"
)

// Locations maps analyzed objects back to the files they were loaded from.
// Every field is optional; issues without a location print as "-:".
type Locations struct {
	Tokens    map[token.Path]IssuePos
	Overrides map[string]IssuePos // OverrideKey(theme, path), or the theme ID alone
	// Templates holds the position of each template body, keyed by
	// TemplateKey. Warning positions are offset from it.
	Templates map[string]IssuePos
	Document  string
	Sources   map[string][]string // file lines, for SourceLines
}

// OverrideKey identifies one override entry in Locations.Overrides.
func OverrideKey(themeID string, path token.Path) string {
	return themeID + "#" + string(path)
}

// TemplateKey identifies a custom template in Locations.Templates.
func TemplateKey(c export.CustomTemplate) string {
	if c.ID != "" {
		return c.ID
	}
	return c.Name
}

// Input is everything a lint run looks at.
type Input struct {
	Tokens    *token.Set
	Overrides []*theme.Override
	Templates []export.CustomTemplate
	Document  *document.Document // nil when no document file was loaded
	Locations Locations
	Files     int
	Warnings  []string
}

// Analyze runs every linter over in.
func Analyze(in Input) *Result {
	if in.Tokens == nil {
		in.Tokens, _ = token.NewSet()
	}

	a := &analyzer{in: in, result: &Result{Warnings: in.Warnings}}
	resolved := resolve.ResolveAll(in.Tokens, nil)

	a.checkReferences(resolved)
	a.checkOverrides()
	a.checkTemplates()
	a.checkStatuses(resolved)
	a.checkDocument()
	a.collectStats(resolved)

	return a.result
}

type analyzer struct {
	in     Input
	result *Result
}

func (a *analyzer) add(linter, severity string, pos IssuePos, format string, args ...any) {
	issue := Issue{
		FromLinter: linter,
		Text:       fmt.Sprintf(format, args...),
		Severity:   severity,
		Pos:        pos,
	}
	if lines := a.in.Locations.Sources[pos.Filename]; pos.Line > 0 && pos.Line <= len(lines) {
		issue.SourceLines = []string{lines[pos.Line-1]}
	}
	a.result.Issues = append(a.result.Issues, issue)
}

// checkReferences reports unknown and cyclic references.
func (a *analyzer) checkReferences(report *resolve.Report) {
	for _, f := range report.Failures {
		a.add(LinterRef, SeverityError, a.in.Locations.Tokens[f.Token.Path], IssueBrokenRef, f.Token.Path, f.Err)
	}
}

// checkOverrides reports override entries that match no token.
func (a *analyzer) checkOverrides() {
	for _, o := range a.in.Overrides {
		if o == nil {
			continue
		}
		for _, p := range o.Layer.Orphans(a.in.Tokens) {
			pos, ok := a.in.Locations.Overrides[OverrideKey(o.ThemeID, p)]
			if !ok {
				pos = a.in.Locations.Overrides[o.ThemeID]
			}
			a.add(LinterTheme, SeverityWarning, pos, IssueOrphanOverride, p, o.ThemeID)
		}
	}
}

// checkTemplates reports unknown fields and malformed blocks.
func (a *analyzer) checkTemplates() {
	if len(a.in.Templates) == 0 {
		return
	}
	bundle, _ := export.NewBundle(a.in.Tokens, nil)
	for _, c := range a.in.Templates {
		base := a.in.Locations.Templates[TemplateKey(c)]
		for _, w := range export.LintCustom(c, bundle) {
			a.add(LinterTemplate, SeverityWarning, offset(base, w.Pos.Line, w.Pos.Column), IssueTemplate, c.Name, w.Message)
		}
	}
}

// offset moves a template-relative position into the containing file.
func offset(base IssuePos, line, column int) IssuePos {
	if base.Filename == "" {
		return base
	}
	if base.Line == 0 {
		base.Line = 1
	}
	if base.Column == 0 {
		base.Column = 1
	}
	pos := IssuePos{Filename: base.Filename, Line: base.Line + line - 1, Column: column}
	if line == 1 {
		pos.Column = base.Column + column - 1
	}
	return pos
}

// checkStatuses reports aliases whose chain passes through deprecated
// tokens, and published tokens that depend on drafts.
func (a *analyzer) checkStatuses(report *resolve.Report) {
	for _, r := range report.Resolved {
		if !r.Token.IsAlias() {
			continue
		}
		pos := a.in.Locations.Tokens[r.Token.Path]
		deprecated, draft := false, false
		for _, p := range r.Resolution.Chain[1:] {
			target, ok := a.in.Tokens.Lookup(p)
			if !ok {
				continue
			}
			if !deprecated && target.Status == token.StatusDeprecated {
				deprecated = true
				a.add(LinterStatus, SeverityWarning, pos, IssueDeprecatedRef, r.Token.Path, p)
			}
			if !draft && r.Token.Status == token.StatusPublished && target.Status == token.StatusDraft {
				draft = true
				a.add(LinterStatus, SeverityWarning, pos, IssueDraftRef, r.Token.Path, p)
			}
		}
	}
}

// checkDocument notes sections the loaded document lacks.
func (a *analyzer) checkDocument() {
	if a.in.Document == nil {
		return
	}
	pos := IssuePos{Filename: a.in.Locations.Document}
	for _, s := range a.in.Document.Missing() {
		a.add(LinterDoc, SeverityInfo, pos, IssueMissingSection, s)
	}
}

func (a *analyzer) collectStats(report *resolve.Report) {
	s := &a.result.Stats
	s.Tokens = a.in.Tokens.Len()
	s.Resolved = len(report.Resolved)
	s.Themes = len(a.in.Overrides)
	s.Templates = len(a.in.Templates)
	s.Files = a.in.Files

	for _, t := range a.in.Tokens.Tokens() {
		if t.IsAlias() {
			s.Aliases++
		}
		if t.Status == token.StatusDeprecated {
			s.Deprecated++
		}
	}
	for _, f := range report.Failures {
		switch {
		case f.Cyclic():
			s.Cyclic++
		case f.Unknown():
			s.Broken++
		}
	}
	for _, o := range a.in.Overrides {
		if o == nil {
			continue
		}
		s.Overrides += o.Layer.Len()
		s.Orphans += len(o.Layer.Orphans(a.in.Tokens))
	}

	doc := a.in.Document
	if doc == nil {
		doc = document.FromResolved(report.Resolved)
	}
	s.Sections = len(document.Sections) - len(doc.Missing())
}
