// Package document models the design system document: the fixed set of
// sections that generators consume, and the canonical flatten step that
// turns it into an ordered list of entries.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/yacobolo/tokenforge/internal/token"
)

// Section is one of the fixed top-level groups of a document.
type Section string

// Document sections, in output order.
const (
	Colors       Section = "colors"
	Typography   Section = "typography"
	Spacing      Section = "spacing"
	Shadows      Section = "shadows"
	BorderRadius Section = "borderRadius"
	Grid         Section = "grid"
	Animations   Section = "animations"
	Components   Section = "components"
)

// Sections lists every section in canonical order.
var Sections = []Section{Colors, Typography, Spacing, Shadows, BorderRadius, Grid, Animations, Components}

var prefixes = map[Section]string{
	Colors:       "color",
	Typography:   "font",
	Spacing:      "spacing",
	Shadows:      "shadow",
	BorderRadius: "radius",
	Grid:         "grid",
	Animations:   "animation",
	Components:   "component",
}

// Prefix is the naming prefix of the section's variables, e.g. "color" for
// --color-primary.
func (s Section) Prefix() string {
	if p, ok := prefixes[s]; ok {
		return p
	}
	return string(s)
}

// ParseSection maps a section name or its prefix to a Section.
func ParseSection(name string) (Section, bool) {
	for _, s := range Sections {
		if string(s) == name || s.Prefix() == name {
			return s, true
		}
	}
	return "", false
}

// Document is a design system bundle. Keys keep their insertion order in every
// section. Top-level keys that are not sections, such as "name", live in Meta.
type Document struct {
	Meta     *token.Record
	sections map[Section]*token.Record
}

// New returns an empty document.
func New() *Document {
	return &Document{Meta: token.NewRecord(), sections: make(map[Section]*token.Record)}
}

// Section returns the record of s, or nil when the document has none.
func (d *Document) Section(s Section) *token.Record {
	if d == nil {
		return nil
	}
	return d.sections[s]
}

// Has reports whether section s is present, even if empty.
func (d *Document) Has(s Section) bool {
	return d.Section(s) != nil
}

// SetSection replaces the record of s.
func (d *Document) SetSection(s Section, r *token.Record) {
	if r == nil {
		delete(d.sections, s)
		return
	}
	d.sections[s] = r
}

// Set stores a value in section s, creating the section when needed.
func (d *Document) Set(s Section, key string, v token.Value) {
	rec := d.sections[s]
	if rec == nil {
		rec = token.NewRecord()
		d.sections[s] = rec
	}
	rec.Set(key, v)
}

// Missing lists the sections the document lacks.
func (d *Document) Missing() []Section {
	var missing []Section
	for _, s := range Sections {
		if !d.Has(s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// MetaText returns a top-level scalar as text, or "".
func (d *Document) MetaText(key string) string {
	if d == nil {
		return ""
	}
	v, ok := d.Meta.Get(key)
	if !ok {
		return ""
	}
	return v.Text()
}

// Name is the "name" meta field.
func (d *Document) Name() string { return d.MetaText("name") }

// Decode parses a JSON or YAML document.
func Decode(data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return DecodeNode(&node)
}

// DecodeNode converts a yaml.v3 node into a Document.
func DecodeNode(n *yaml.Node) (*Document, error) {
	v, err := token.DecodeNode(n)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return FromValue(v)
}

// FromValue builds a Document from a decoded record. A null section counts as
// absent.
func FromValue(v token.Value) (*Document, error) {
	root := v.Record()
	if root == nil {
		return nil, fmt.Errorf("document must be an object, got %s", v.Kind())
	}

	doc := New()
	var err error
	root.Each(func(key string, val token.Value) {
		if err != nil {
			return
		}
		s, ok := sectionByName(key)
		if !ok {
			doc.Meta.Set(key, val)
			return
		}
		switch {
		case val.IsNull():
		case val.Record() != nil:
			doc.sections[s] = val.Record()
		default:
			err = fmt.Errorf("section %q must be an object, got %s", key, val.Kind())
		}
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func sectionByName(name string) (Section, bool) {
	for _, s := range Sections {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}

// Ordered returns the document as plain ordered data: meta keys first, then
// present sections in canonical order.
func (d *Document) Ordered() *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	if d == nil {
		return out
	}
	d.Meta.Each(func(key string, v token.Value) {
		out.Set(key, v.Interface())
	})
	for _, s := range Sections {
		if rec := d.sections[s]; rec != nil {
			out.Set(string(s), token.RecordOf(rec).Interface())
		}
	}
	return out
}

// MarshalJSON encodes the document in canonical section order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d.Ordered()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a document, keeping key order.
func (d *Document) UnmarshalJSON(data []byte) error {
	parsed, err := Decode(data)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}
