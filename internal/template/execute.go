package template

import (
	"fmt"
	"strings"
)

// Scope resolves field names for interpolation. The second result is false
// for fields the scope does not know.
type Scope interface {
	Field(name string) (string, bool)
}

// Fields is a map backed Scope.
type Fields map[string]string

// Field implements Scope.
func (f Fields) Field(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// Data is the input of a render: top-level fields and the token collection.
type Data struct {
	Fields Scope
	Tokens []Scope
}

// Warning is a non-fatal template problem, typically an unknown field. The
// field still renders, as the empty string.
type Warning struct {
	Pos     Pos
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%d:%d: %s", w.Pos.Line, w.Pos.Column, w.Message)
}

func newWarning(pos Pos, field, format string, args ...any) Warning {
	return Warning{Pos: pos, Field: field, Message: fmt.Sprintf(format, args...)}
}

// frames is the scope stack; the innermost scope is last.
type frames []Scope

func (f frames) lookup(name string) (string, bool) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == nil {
			continue
		}
		if v, ok := f[i].Field(name); ok {
			return v, true
		}
	}
	return "", false
}

// Execute renders the template. Warnings include parse problems and each
// unknown field position once.
func (t *Template) Execute(data Data) (string, []Warning) {
	r := &renderer{reported: make(map[Pos]bool)}
	r.warnings = append(r.warnings, t.warnings...)

	var b strings.Builder
	r.render(&b, t.nodes, frames{data.Fields}, data.Tokens)
	return b.String(), r.warnings
}

type renderer struct {
	warnings []Warning
	reported map[Pos]bool
}

func (r *renderer) render(b *strings.Builder, nodes []node, scopes frames, tokens []Scope) {
	for _, n := range nodes {
		switch n.kind {
		case nodeText:
			b.WriteString(n.text)

		case nodeField:
			v, ok := scopes.lookup(n.text)
			if !ok && !r.reported[n.pos] {
				r.reported[n.pos] = true
				r.warnings = append(r.warnings, newWarning(n.pos, n.text, "unknown field %q", n.text))
			}
			b.WriteString(v)

		case nodeBlock:
			for _, tok := range tokens {
				r.render(b, n.body, append(scopes, tok), nil)
			}
		}
	}
}

// Render parses and executes src in one call.
func Render(src string, data Data) (string, []Warning) {
	return Parse(src).Execute(data)
}

// Lint reports problems without rendering. Fields outside blocks are checked
// against topLevel, fields inside blocks against tokenFields and then
// topLevel.
func Lint(src string, topLevel, tokenFields []string) []Warning {
	t := Parse(src)
	warnings := append([]Warning(nil), t.warnings...)

	top := toSet(topLevel)
	inner := toSet(tokenFields)

	var walk func(nodes []node, inBlock bool)
	walk = func(nodes []node, inBlock bool) {
		for _, n := range nodes {
			switch n.kind {
			case nodeField:
				if top[n.text] || (inBlock && (inner[n.text] || isValueField(n.text))) {
					continue
				}
				warnings = append(warnings, newWarning(n.pos, n.text, "unknown field %q", n.text))
			case nodeBlock:
				walk(n.body, true)
			}
		}
	}
	walk(t.nodes, false)
	return warnings
}

// isValueField matches record sub-fields such as "value.fontSize", which are
// only known once a token is bound.
func isValueField(name string) bool {
	return strings.HasPrefix(name, "value.") && len(name) > len("value.")
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
