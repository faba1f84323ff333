// Package cssimport turns CSS custom properties into tokens. Properties under
// :root become the base set; properties under theme selectors such as .dark,
// [data-theme="dark"] or @media (prefers-color-scheme: dark) become override
// layers.
package cssimport

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/naming"
	"github.com/yacobolo/tokenforge/internal/theme"
	"github.com/yacobolo/tokenforge/internal/token"
)

// Options tunes the import.
type Options struct {
	Prefix   string // variable prefix to strip, e.g. "tf" for --tf-color-primary
	SystemID string // stamped on imported overrides
}

// Result is the outcome of one import.
type Result struct {
	Tokens   []token.Token
	Themes   []*theme.Override
	Warnings []string
}

// Set builds a token set from the imported tokens.
func (r *Result) Set() (*token.Set, error) {
	return token.NewSet(r.Tokens...)
}

// importState maintains context while walking the stylesheet
type importState struct {
	opts    Options
	content string
	result  *Result
	seen    map[token.Path]bool
	themes  map[string]*theme.Override

	// current rule target: nil layer means :root
	inRule   bool
	layer    *theme.Override
	skipping bool
	media    []*theme.Override // theme opened by an enclosing @media, per nesting level
}

// Import reads a stylesheet and parses it. Only a failure to read r is an
// error.
func Import(r io.Reader, opts Options) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	return ImportString(string(data), opts), nil
}

// ImportString parses CSS content. Unsupported rules are skipped with a
// warning.
func ImportString(content string, opts Options) *Result {
	s := &importState{
		opts:    opts,
		content: content,
		result:  &Result{},
		seen:    make(map[token.Path]bool),
		themes:  make(map[string]*theme.Override),
	}

	p := css.NewParser(parse.NewInputString(content), false)

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err == io.EOF {
				return s.result
			} else if err != nil {
				s.warnf(p.Offset(), "%v", err)
			}

		case css.BeginRulesetGrammar:
			s.beginRule(strings.Split(joinValues(p.Values()), ","), p.Offset())

		case css.EndRulesetGrammar:
			s.inRule, s.layer, s.skipping = false, nil, false

		case css.BeginAtRuleGrammar:
			s.beginAtRule(string(data), joinValues(p.Values()), p.Offset())

		case css.EndAtRuleGrammar:
			if len(s.media) > 0 {
				s.media = s.media[:len(s.media)-1]
			}

		case css.CustomPropertyGrammar:
			if !s.inRule || s.skipping {
				continue
			}
			values := p.Values()
			if len(values) == 0 {
				continue
			}
			s.declare(string(data), strings.TrimSpace(string(values[0].Data)), p.Offset())
		}
	}
}

func (s *importState) warnf(offset int, format string, args ...any) {
	line := strings.Count(s.content[:min(offset, len(s.content))], "\n") + 1
	s.result.Warnings = append(s.result.Warnings, fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)))
}

func joinValues(values []css.Token) string {
	var b strings.Builder
	for _, v := range values {
		b.Write(v.Data)
	}
	return strings.TrimSpace(b.String())
}

// beginAtRule tracks @media blocks. A prefers-color-scheme query opens a
// theme for the rules it contains; other media queries are skipped.
func (s *importState) beginAtRule(name, prelude string, offset int) {
	if name != "@media" {
		s.media = append(s.media, s.current())
		return
	}
	if m := colorScheme.FindStringSubmatch(prelude); m != nil {
		s.media = append(s.media, s.theme(m[1], theme.Mode(m[1])))
		return
	}
	s.warnf(offset, "skipping @media %s", prelude)
	s.media = append(s.media, skipped)
}

// skipped marks a media level whose rules are ignored.
var skipped = &theme.Override{}

var colorScheme = regexp.MustCompile(`prefers-color-scheme:\s*(light|dark)`)

// current is the theme opened by the innermost @media, or nil.
func (s *importState) current() *theme.Override {
	if len(s.media) == 0 {
		return nil
	}
	return s.media[len(s.media)-1]
}

var (
	attrTheme  = regexp.MustCompile(`^\[data-(?:theme|mode)=["']?([\w-]+)["']?\]$`)
	modeClass  = regexp.MustCompile(`^\.(dark|light)$`)
	themeClass = regexp.MustCompile(`^\.(?:theme|brand)-([\w-]+)$`)
)

// beginRule picks the target of a ruleset from its selectors.
func (s *importState) beginRule(selectors []string, offset int) {
	s.inRule = true
	media := s.current()
	if media == skipped {
		s.skipping = true
		return
	}

	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		sel = strings.TrimPrefix(strings.TrimPrefix(sel, "html"), ":root")
		if sel == "" {
			s.layer = media
			return
		}
		var id string
		if m := attrTheme.FindStringSubmatch(sel); m != nil {
			id = m[1]
		} else if m := modeClass.FindStringSubmatch(sel); m != nil {
			id = m[1]
		} else if m := themeClass.FindStringSubmatch(sel); m != nil {
			id = m[1]
		}
		if id != "" {
			s.layer = s.theme(id, modeFor(id))
			return
		}
	}
	s.skipping = true
	s.warnf(offset, "skipping selector %q", strings.Join(selectors, ", "))
}

func modeFor(id string) theme.Mode {
	switch theme.Mode(id) {
	case theme.ModeLight, theme.ModeDark:
		return theme.Mode(id)
	}
	return theme.ModeBrand
}

func (s *importState) theme(id string, mode theme.Mode) *theme.Override {
	if o, ok := s.themes[id]; ok {
		return o
	}
	o := &theme.Override{SystemID: s.opts.SystemID, ThemeID: id, Mode: mode, Layer: theme.NewLayer()}
	s.themes[id] = o
	s.result.Themes = append(s.result.Themes, o)
	return o
}

// declare records one custom property.
func (s *importState) declare(name, raw string, offset int) {
	path, ok := s.path(name)
	if !ok {
		s.warnf(offset, "skipping %s: prefix %q not present", name, s.opts.Prefix)
		return
	}
	value := s.value(raw, offset)

	if s.layer != nil {
		if value.IsReference() {
			value = s.snapshot(value, raw, offset)
		}
		s.layer.Layer.Set(path, value)
		return
	}

	if s.seen[path] {
		s.warnf(offset, "duplicate property %s", name)
		return
	}
	s.seen[path] = true
	s.result.Tokens = append(s.result.Tokens, token.Token{
		Path:   path,
		Name:   titleFor(path),
		Type:   inferType(path, value),
		Value:  value,
		Status: token.StatusPublished,
	})
}

// snapshot replaces an alias in an override layer by the value it points at
// in the same layer, or else in the base, since override values are used
// as-is.
func (s *importState) snapshot(ref token.Value, raw string, offset int) token.Value {
	if v, ok := s.layer.Layer.Lookup(ref.Ref()); ok {
		return v
	}
	for _, t := range s.result.Tokens {
		if t.Path == ref.Ref() && !t.IsAlias() {
			return t.Value
		}
	}
	s.warnf(offset, "override %s kept as text: %s does not name a literal token", raw, ref.Ref())
	return token.String(raw)
}

// path maps --color-brand-500 to color.brand-500. The first dash-separated
// word becomes the group.
func (s *importState) path(name string) (token.Path, bool) {
	name = strings.TrimPrefix(name, "--")
	if s.opts.Prefix != "" {
		prefix := strings.TrimSuffix(s.opts.Prefix, "-") + "-"
		if !strings.HasPrefix(name, prefix) {
			return "", false
		}
		name = strings.TrimPrefix(name, prefix)
	}
	group, rest, ok := strings.Cut(name, "-")
	if !ok || rest == "" {
		return token.Path(name), name != ""
	}
	return token.Path(group + "." + rest), true
}

var varRef = regexp.MustCompile(`^var\(\s*(--[\w-]+)\s*(?:,.*)?\)$`)

// value parses a property value: var(--x) becomes a reference, bare numbers
// become numbers, everything else stays text.
func (s *importState) value(raw string, offset int) token.Value {
	if m := varRef.FindStringSubmatch(raw); m != nil {
		if strings.Contains(raw, ",") {
			s.warnf(offset, "fallback dropped from %s", raw)
		}
		if p, ok := s.path(m[1]); ok {
			return token.Reference(p)
		}
	}
	if n, err := cast.ToFloat64E(raw); err == nil {
		return token.Number(n)
	}
	return token.String(unquote(raw))
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// groupTypes maps the leading path word to a token type.
var groupTypes = map[string]token.Type{
	"color":      token.TypeColor,
	"colors":     token.TypeColor,
	"font":       token.TypeTypography,
	"text":       token.TypeTypography,
	"spacing":    token.TypeSpacing,
	"space":      token.TypeSpacing,
	"size":       token.TypeDimension,
	"radius":     token.TypeBorderRadius,
	"rounded":    token.TypeBorderRadius,
	"shadow":     token.TypeShadow,
	"elevation":  token.TypeShadow,
	"border":     token.TypeBorder,
	"grid":       token.TypeDimension,
	"breakpoint": token.TypeDimension,
}

var dimension = regexp.MustCompile(`^-?\d*\.?\d+(px|rem|em|%|vh|vw|pt)$`)

// inferType guesses a type from the path group, then from the value.
func inferType(path token.Path, v token.Value) token.Type {
	group := path.Segments()[0]
	if t, ok := groupTypes[group]; ok {
		return t
	}
	if v.IsReference() {
		return token.TypeOther
	}
	text := v.Text()
	switch {
	case export.IsColor(text):
		return token.TypeColor
	case dimension.MatchString(text):
		return token.TypeDimension
	}
	return token.TypeOther
}

func titleFor(path token.Path) string {
	segments := path.Segments()
	if _, ok := document.ParseSection(segments[0]); ok && len(segments) > 1 {
		segments = segments[1:]
	}
	return naming.Title(strings.Join(segments, " "))
}
