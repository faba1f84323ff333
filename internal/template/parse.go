// Package template implements the custom exporter language: a deliberately
// small text substitution layer.
//
//	{{field}}                  interpolate a field of the current scope
//	{{#tokens}} ... {{/tokens}} repeat the body once per token
//
// There are no conditionals, expressions or helpers, so user-authored
// templates cannot run logic. Blocks do not nest and "tokens" is the only
// collection. Malformed input never fails: unmatched markers render as
// literal text and produce a Warning.
package template

import (
	"strings"
)

// BlockName is the only iterable collection.
const BlockName = "tokens"

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeField
	nodeBlock
)

type node struct {
	kind  nodeKind
	text  string // literal text, or the field name
	pos   Pos
	body  []node // block body
	block string // block name
}

// Pos is a 1-based location inside a template.
type Pos struct {
	Line   int
	Column int
}

// Template is a parsed template. It is immutable and safe for concurrent
// Execute calls.
type Template struct {
	nodes    []node
	warnings []Warning // structural problems found while parsing
}

// marker is one "{{...}}" occurrence found by the scanner.
type marker struct {
	kind  byte // '#', '/', or 0 for a field
	name  string
	raw   string
	start int
	pos   Pos
}

type item struct {
	text   string  // literal text when mark is nil
	mark   *marker // marker otherwise
	offset int
}

// Parse scans src in one linear pass. It never fails.
func Parse(src string) *Template {
	lines := newLineIndex(src)
	items := scan(src, lines)

	t := &Template{}
	t.nodes = t.build(items, lines)
	return t
}

// scan splits src into literal text and markers.
func scan(src string, lines lineIndex) []item {
	var items []item
	i := 0
	for i < len(src) {
		j := strings.Index(src[i:], openDelim)
		if j < 0 {
			items = append(items, item{text: src[i:], offset: i})
			break
		}
		if j > 0 {
			items = append(items, item{text: src[i : i+j], offset: i})
		}

		start := i + j
		k := strings.Index(src[start+len(openDelim):], closeDelim)
		if k < 0 {
			// unterminated marker: the rest is literal
			items = append(items, item{text: src[start:], offset: start})
			break
		}
		// {{a {{name}}: the first opener is literal, scanning resumes at the second
		if n := strings.Index(src[start+len(openDelim):start+len(openDelim)+k], openDelim); n >= 0 {
			next := start + len(openDelim) + n
			items = append(items, item{text: src[start:next], offset: start})
			i = next
			continue
		}
		end := start + len(openDelim) + k + len(closeDelim)
		inner := strings.TrimSpace(src[start+len(openDelim) : start+len(openDelim)+k])

		m := &marker{raw: src[start:end], start: start, pos: lines.pos(start)}
		switch {
		case inner == "":
			items = append(items, item{text: m.raw, offset: start})
			i = end
			continue
		case inner[0] == '#' || inner[0] == '/':
			m.kind = inner[0]
			m.name = strings.TrimSpace(inner[1:])
		default:
			m.name = inner
		}
		items = append(items, item{mark: m, offset: start})
		i = end
	}
	return items
}

// build turns the flat item list into nodes, pairing each supported block
// opener with the next closer.
func (t *Template) build(items []item, lines lineIndex) []node {
	var nodes []node
	for i := 0; i < len(items); i++ {
		it := items[i]
		if it.mark == nil {
			nodes = append(nodes, node{kind: nodeText, text: it.text, pos: lines.pos(it.offset)})
			continue
		}

		m := it.mark
		switch m.kind {
		case 0:
			nodes = append(nodes, node{kind: nodeField, text: m.name, pos: m.pos})

		case '/':
			t.warn(m.pos, m.name, "closing {{/%s}} without a matching opener", m.name)
			nodes = append(nodes, node{kind: nodeText, text: m.raw, pos: m.pos})

		case '#':
			if m.name != BlockName {
				t.warn(m.pos, m.name, "unsupported block {{#%s}}; only {{#%s}} is available", m.name, BlockName)
				nodes = append(nodes, node{kind: nodeText, text: m.raw, pos: m.pos})
				continue
			}

			closeAt := -1
			for j := i + 1; j < len(items); j++ {
				if cm := items[j].mark; cm != nil && cm.kind == '/' && cm.name == BlockName {
					closeAt = j
					break
				}
			}
			if closeAt < 0 {
				t.warn(m.pos, m.name, "unterminated {{#%s}} block", m.name)
				nodes = append(nodes, node{kind: nodeText, text: m.raw, pos: m.pos})
				continue
			}

			nodes = append(nodes, node{
				kind:  nodeBlock,
				block: m.name,
				pos:   m.pos,
				body:  t.buildBody(items[i+1:closeAt], lines),
			})
			i = closeAt
		}
	}
	return nodes
}

// buildBody builds the inside of a block. Blocks do not nest, so any block
// marker here is literal text.
func (t *Template) buildBody(items []item, lines lineIndex) []node {
	var body []node
	for _, it := range items {
		if it.mark == nil {
			body = append(body, node{kind: nodeText, text: it.text, pos: lines.pos(it.offset)})
			continue
		}
		m := it.mark
		if m.kind != 0 {
			t.warn(m.pos, m.name, "blocks cannot nest; %s rendered as text", m.raw)
			body = append(body, node{kind: nodeText, text: m.raw, pos: m.pos})
			continue
		}
		body = append(body, node{kind: nodeField, text: m.name, pos: m.pos})
	}
	return body
}

func (t *Template) warn(pos Pos, field, format string, args ...any) {
	t.warnings = append(t.warnings, newWarning(pos, field, format, args...))
}

// Fields returns every distinct field name referenced, in order of first
// appearance. Fields inside blocks are included.
func (t *Template) Fields() []string {
	seen := make(map[string]bool)
	var fields []string
	var walk func(nodes []node)
	walk = func(nodes []node) {
		for _, n := range nodes {
			switch n.kind {
			case nodeField:
				if !seen[n.text] {
					seen[n.text] = true
					fields = append(fields, n.text)
				}
			case nodeBlock:
				walk(n.body)
			}
		}
	}
	walk(t.nodes)
	return fields
}

// lineIndex maps byte offsets to line/column positions.
type lineIndex []int

func newLineIndex(src string) lineIndex {
	starts := lineIndex{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (l lineIndex) pos(offset int) Pos {
	line := 0
	lo, hi := 0, len(l)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if l[mid] <= offset {
			line = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return Pos{Line: line + 1, Column: offset - l[line] + 1}
}
