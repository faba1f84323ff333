package document

import (
	"strings"

	"github.com/yacobolo/tokenforge/internal/naming"
	"github.com/yacobolo/tokenforge/internal/resolve"
	"github.com/yacobolo/tokenforge/internal/token"
)

// Entry is one leaf of a flattened document. Nested records are walked, so a
// typography style yields one entry per property.
type Entry struct {
	Section Section
	Key     []string // record keys below the section, outermost first
	Value   token.Value
}

// Name is the innermost key.
func (e Entry) Name() string {
	if len(e.Key) == 0 {
		return ""
	}
	return e.Key[len(e.Key)-1]
}

// Group is the key without its last element, e.g. "heading" for
// typography.heading.fontSize.
func (e Entry) Group() []string {
	if len(e.Key) <= 1 {
		return nil
	}
	return e.Key[:len(e.Key)-1]
}

// Path is the dotted token path: color.primary, font.heading.fontSize.
func (e Entry) Path() token.Path {
	return token.Path(e.Section.Prefix() + "." + strings.Join(e.Key, "."))
}

// Variable is the kebab-case variable name: color-primary,
// font-heading-font-size.
func (e Entry) Variable() string {
	return naming.Kebab(append([]string{e.Section.Prefix()}, e.Key...)...)
}

// Text is the serialized value.
func (e Entry) Text() string { return e.Value.Text() }

// Flatten walks the document once, in canonical section order and record
// insertion order. Missing sections contribute nothing.
func Flatten(d *Document) []Entry {
	var entries []Entry
	for _, s := range Sections {
		rec := d.Section(s)
		if rec == nil {
			continue
		}
		entries = flattenRecord(entries, s, nil, rec)
	}
	return entries
}

func flattenRecord(entries []Entry, s Section, prefix []string, rec *token.Record) []Entry {
	rec.Each(func(key string, v token.Value) {
		path := make([]string, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = key

		if nested := v.Record(); nested != nil && nested.Len() > 0 {
			entries = flattenRecord(entries, s, path, nested)
			return
		}
		entries = append(entries, Entry{Section: s, Key: path, Value: v})
	})
	return entries
}

// BySection groups entries by section, keeping order. Sections without
// entries are absent from the result.
func BySection(entries []Entry) map[Section][]Entry {
	out := make(map[Section][]Entry)
	for _, e := range entries {
		out[e.Section] = append(out[e.Section], e)
	}
	return out
}

// typeSections maps token types to the section they land in when no path
// prefix names a section.
var typeSections = map[token.Type]Section{
	token.TypeColor:        Colors,
	token.TypeTypography:   Typography,
	token.TypeSpacing:      Spacing,
	token.TypeDimension:    Spacing,
	token.TypeBorderRadius: BorderRadius,
	token.TypeShadow:       Shadows,
	token.TypeBorder:       Components,
	token.TypeOther:        Components,
}

// SectionFor picks the section of a token and the key segments below it. A
// leading path segment that names a section, or its prefix, wins over the
// token type and is stripped.
func SectionFor(t token.Token) (Section, []string) {
	segments := t.Path.Segments()
	if len(segments) > 1 {
		if s, ok := ParseSection(segments[0]); ok {
			return s, segments[1:]
		}
	}
	s, ok := typeSections[t.Type]
	if !ok {
		s = Components
	}
	return s, segments
}

// FromResolved derives a document from resolved tokens. Multi-segment keys
// become nested records.
func FromResolved(resolved []resolve.Resolved) *Document {
	doc := New()
	for _, r := range resolved {
		s, key := SectionFor(r.Token)
		if len(key) == 0 {
			continue
		}
		rec := doc.sections[s]
		if rec == nil {
			rec = token.NewRecord()
			doc.sections[s] = rec
		}
		v := r.Value()
		if nested := v.Record(); nested != nil {
			v = token.RecordOf(nested.Clone())
		}
		setNested(rec, key, v)
	}
	return doc
}

// setNested stores v under the key path, creating intermediate records. When
// an intermediate key already holds a scalar, the remaining segments are
// joined into one key instead. The result does not depend on whether the
// shorter or the longer path arrives first.
func setNested(rec *token.Record, key []string, v token.Value) {
	for len(key) > 1 {
		existing, ok := rec.Get(key[0])
		if !ok {
			child := token.NewRecord()
			rec.Set(key[0], token.RecordOf(child))
			rec = child
			key = key[1:]
			continue
		}
		child := existing.Record()
		if child == nil {
			rec.Set(strings.Join(key, "-"), v)
			return
		}
		rec = child
		key = key[1:]
	}

	last := key[0]
	existing, ok := rec.Get(last)
	held := existing.Record()
	rec.Set(last, v)
	if !ok || held == nil || held.Len() == 0 {
		return
	}
	// Longer paths below last came first. A record value absorbs them; a
	// scalar pushes them out to joined keys.
	if nested := v.Record(); nested != nil {
		held.Each(func(k string, hv token.Value) {
			setNested(nested, []string{k}, hv)
		})
		return
	}
	hoist(rec, []string{last}, held)
}

// hoist stores every leaf of held in rec under its joined key.
func hoist(rec *token.Record, prefix []string, held *token.Record) {
	held.Each(func(k string, v token.Value) {
		key := append(append([]string(nil), prefix...), k)
		if nested := v.Record(); nested != nil && nested.Len() > 0 {
			hoist(rec, key, nested)
			return
		}
		rec.Set(strings.Join(key, "-"), v)
	})
}

// sectionTypes is the token type given to tokens taken from a section.
var sectionTypes = map[Section]token.Type{
	Colors:       token.TypeColor,
	Typography:   token.TypeTypography,
	Spacing:      token.TypeSpacing,
	Shadows:      token.TypeShadow,
	BorderRadius: token.TypeBorderRadius,
	Grid:         token.TypeDimension,
	Animations:   token.TypeOther,
	Components:   token.TypeOther,
}

// ToTokens turns a document into literal tokens, one per leaf. A typography
// style whose properties are all scalars stays a single record token.
func ToTokens(d *Document) []token.Token {
	var tokens []token.Token
	for _, s := range Sections {
		rec := d.Section(s)
		if rec == nil {
			continue
		}
		tokens = appendTokens(tokens, s, nil, rec)
	}
	return tokens
}

func appendTokens(tokens []token.Token, s Section, prefix []string, rec *token.Record) []token.Token {
	rec.Each(func(key string, v token.Value) {
		path := append(append([]string(nil), prefix...), key)
		if nested := v.Record(); nested != nil && nested.Len() > 0 && !(s == Typography && isFlat(nested)) {
			tokens = appendTokens(tokens, s, path, nested)
			return
		}
		tokens = append(tokens, token.Token{
			Path:  token.Path(s.Prefix() + "." + strings.Join(path, ".")),
			Name:  naming.Title(strings.Join(path, " ")),
			Type:  sectionTypes[s],
			Value: v,
		})
	})
	return tokens
}

func isFlat(rec *token.Record) bool {
	flat := true
	rec.Each(func(_ string, v token.Value) {
		if v.Record() != nil {
			flat = false
		}
	})
	return flat
}

// Overlay returns a document with the sections of base, then every entry of
// top written over them. Meta keys of top win as well. Neither input is
// modified.
func Overlay(base, top *Document) *Document {
	out := New()
	for _, d := range []*Document{base, top} {
		if d == nil {
			continue
		}
		d.Meta.Each(func(key string, v token.Value) { out.Meta.Set(key, v) })
		for _, e := range Flatten(d) {
			rec := out.sections[e.Section]
			if rec == nil {
				rec = token.NewRecord()
				out.sections[e.Section] = rec
			}
			v := e.Value
			if r := v.Record(); r != nil {
				v = token.RecordOf(r.Clone())
			}
			setNested(rec, e.Key, v)
		}
		for _, s := range Sections {
			if d.Has(s) && !out.Has(s) {
				out.sections[s] = token.NewRecord()
			}
		}
	}
	return out
}
