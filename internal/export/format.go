package export

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/naming"
	"github.com/yacobolo/tokenforge/internal/token"
)

// remBase converts rem and em to pixels.
const remBase = 16

// view is the single derived input every generator formats: the document and
// its flattened entries.
type view struct {
	doc     *document.Document
	entries []document.Entry
	groups  map[document.Section][]document.Entry
}

func newView(doc *document.Document) *view {
	if doc == nil {
		doc = document.New()
	}
	entries := document.Flatten(doc)
	return &view{doc: doc, entries: entries, groups: document.BySection(entries)}
}

// section returns the entries of s. The result is empty for missing sections.
func (v *view) section(s document.Section) []document.Entry {
	return v.groups[s]
}

// present lists sections with at least one entry, in canonical order.
func (v *view) present() []document.Section {
	var out []document.Section
	for _, s := range document.Sections {
		if len(v.groups[s]) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func (v *view) title() string {
	if name := v.doc.Name(); name != "" {
		return name
	}
	return "Design System"
}

func sectionTitle(s document.Section) string {
	return naming.Title(string(s))
}

// tree regroups flat entries into nested objects for formats that need them.
type tree struct {
	key      string
	leaf     *document.Entry
	children []*tree
	index    map[string]*tree
}

func newTree() *tree {
	return &tree{index: make(map[string]*tree)}
}

func (t *tree) insert(path []string, e document.Entry) {
	node := t
	for _, key := range path {
		child, ok := node.index[key]
		if !ok {
			child = &tree{key: key, index: make(map[string]*tree)}
			node.index[key] = child
			node.children = append(node.children, child)
		}
		node = child
	}
	node.leaf = &e
}

func (t *tree) isLeaf() bool { return len(t.children) == 0 && t.leaf != nil }

// ordered converts the tree into ordered JSON data.
func (t *tree) ordered(value func(document.Entry) any) *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	for _, c := range t.children {
		if c.isLeaf() {
			out.Set(c.key, value(*c.leaf))
			continue
		}
		out.Set(c.key, c.ordered(value))
	}
	return out
}

// encodeJSON renders v as indented JSON without HTML escaping.
func encodeJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		// values come from decoded documents, which always encode
		return "{}\n"
	}
	return buf.String()
}

var jsIdent = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// jsKey returns key as an object key, quoting it when it is not an identifier.
func jsKey(key string) string {
	if jsIdent.MatchString(key) {
		return key
	}
	return jsString(key)
}

// jsString quotes s with single quotes.
func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// jsValue renders a literal: numbers and booleans bare, everything else quoted.
func jsValue(v token.Value) string {
	switch v.Kind() {
	case token.KindNumber, token.KindBool:
		return v.Text()
	default:
		return jsString(v.Text())
	}
}

// writeJS writes the children of t as a JavaScript object body.
func writeJS(b *strings.Builder, t *tree, depth int, value func(document.Entry) string) {
	indent := strings.Repeat("  ", depth)
	for _, c := range t.children {
		if c.isLeaf() {
			b.WriteString(indent + jsKey(c.key) + ": " + value(*c.leaf) + ",\n")
			continue
		}
		b.WriteString(indent + jsKey(c.key) + ": {\n")
		writeJS(b, c, depth+1, value)
		b.WriteString(indent + "},\n")
	}
}

// sectionTree groups entries under their section name.
func sectionTree(entries []document.Entry) *tree {
	t := newTree()
	for _, e := range entries {
		t.insert(append([]string{string(e.Section)}, e.Key...), e)
	}
	return t
}

// prefixTree groups entries under their section prefix: color, font, ...
func prefixTree(entries []document.Entry) *tree {
	t := newTree()
	for _, e := range entries {
		t.insert(append([]string{e.Section.Prefix()}, e.Key...), e)
	}
	return t
}

// doubleQuoted quotes s for C-like languages. Dollar signs are escaped for
// Kotlin and Dart string templates.
func doubleQuoted(s string) string {
	return strings.ReplaceAll(strconv.Quote(s), "$", `\$`)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var dimensionRe = regexp.MustCompile(`^(-?\d*\.?\d+)(px|rem|em)?$`)

// pixels converts a dimension value to pixels. Bare numbers count as pixels.
func pixels(v token.Value) (float64, bool) {
	if n, ok := v.Number(); ok {
		return n, true
	}
	if v.Kind() != token.KindString {
		return 0, false
	}
	m := dimensionRe.FindStringSubmatch(strings.TrimSpace(v.Text()))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "rem" || m[2] == "em" {
		n *= remBase
	}
	return n, true
}

var durationRe = regexp.MustCompile(`^(\d*\.?\d+)(ms|s)$`)

// milliseconds converts "150ms" or "0.3s" to milliseconds.
func milliseconds(v token.Value) (float64, bool) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(v.Text()))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "s" {
		n *= 1000
	}
	return n, true
}

// identifier joins the entry key into a camelCase name that is valid in
// every target language.
func identifier(e document.Entry, prefix ...string) string {
	return naming.Identifier("v", naming.Camel(append(prefix, e.Key...)...))
}

// fontProperty names the typography property of a leaf, or "".
func fontProperty(e document.Entry) string {
	switch naming.Camel(e.Name()) {
	case "fontFamily", "family":
		return "fontFamily"
	case "fontSize", "size":
		return "fontSize"
	case "fontWeight", "weight":
		return "fontWeight"
	case "lineHeight":
		return "lineHeight"
	case "letterSpacing":
		return "letterSpacing"
	}
	return ""
}
