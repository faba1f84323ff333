package export

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/naming"
	"github.com/yacobolo/tokenforge/internal/token"
)

const generatedNotice = "Generated by tokenforge. Do not edit."

// lineComment writes a header using a line comment marker such as "//".
func lineComment(b *strings.Builder, marker string, lines ...string) {
	for _, l := range lines {
		b.WriteString(marker + " " + l + "\n")
	}
	b.WriteString("\n")
}

func (v *view) headline() string {
	return fmt.Sprintf("%s design tokens", v.title())
}

func entryInterface(e document.Entry) any { return e.Value.Interface() }

func generateJSON(v *view) string {
	out := orderedmap.New[string, any]()
	v.doc.Meta.Each(func(key string, val token.Value) {
		out.Set(key, val.Interface())
	})
	sections := sectionTree(v.entries).ordered(entryInterface)
	for p := sections.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, p.Value)
	}
	return encodeJSON(out)
}

func generateCSS(v *view) string {
	var b strings.Builder
	b.WriteString("/**\n")
	b.WriteString(" * " + v.headline() + "\n")
	b.WriteString(" * " + generatedNotice + "\n")
	b.WriteString(" */\n\n")

	b.WriteString(":root {\n")
	for i, s := range v.present() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  /* " + sectionTitle(s) + " */\n")
		for _, e := range v.section(s) {
			fmt.Fprintf(&b, "  --%s: %s;\n", e.Variable(), e.Text())
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func generateSCSS(v *view) string {
	var b strings.Builder
	lineComment(&b, "//", v.headline(), generatedNotice)

	for i, s := range v.present() {
		if i > 0 {
			b.WriteString("\n")
		}
		entries := v.section(s)
		b.WriteString("// " + sectionTitle(s) + "\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "$%s: %s;\n", e.Variable(), e.Text())
		}

		// a map per section for @each loops
		fmt.Fprintf(&b, "\n$%s: (\n", naming.Kebab(string(s)))
		for _, e := range entries {
			fmt.Fprintf(&b, "  %q: $%s,\n", naming.Kebab(e.Key...), e.Variable())
		}
		b.WriteString(");\n")
	}
	return b.String()
}

// tailwindPath maps an entry to its place in theme.extend, or nil when
// Tailwind has no matching scale.
func tailwindPath(e document.Entry) []string {
	key := naming.Kebab(e.Key...)
	switch e.Section {
	case document.Colors:
		path := []string{"colors"}
		for _, k := range e.Key {
			path = append(path, naming.Kebab(k))
		}
		return path
	case document.Spacing:
		return []string{"spacing", key}
	case document.BorderRadius:
		return []string{"borderRadius", key}
	case document.Shadows:
		return []string{"boxShadow", key}
	case document.Typography:
		prop := fontProperty(e)
		if prop == "" {
			return nil
		}
		group := naming.Kebab(e.Group()...)
		if group == "" {
			group = "DEFAULT"
		}
		return []string{prop, group}
	case document.Animations:
		if _, ok := milliseconds(e.Value); ok {
			return []string{"transitionDuration", key}
		}
	}
	return nil
}

func generateTailwind(v *view) string {
	t := newTree()
	for _, e := range v.entries {
		if path := tailwindPath(e); path != nil {
			t.insert(path, e)
		}
	}

	var b strings.Builder
	lineComment(&b, "//", v.headline(), generatedNotice)
	b.WriteString("/** @type {import('tailwindcss').Config} */\n")
	b.WriteString("module.exports = {\n")
	b.WriteString("  theme: {\n")
	b.WriteString("    extend: {\n")
	writeJS(&b, t, 3, func(e document.Entry) string { return jsString(e.Text()) })
	b.WriteString("    },\n")
	b.WriteString("  },\n")
	b.WriteString("};\n")
	return b.String()
}

func generateCSSInJS(v *view) string {
	var b strings.Builder
	lineComment(&b, "//", v.headline(), generatedNotice)

	b.WriteString("export const tokens = {\n")
	writeJS(&b, sectionTree(v.entries), 1, func(e document.Entry) string { return jsValue(e.Value) })
	b.WriteString("} as const;\n\n")

	b.WriteString("export const cssVars = {\n")
	for _, e := range v.entries {
		fmt.Fprintf(&b, "  %s: %s,\n", jsKey(naming.Camel(e.Variable())), jsString("var(--"+e.Variable()+")"))
	}
	b.WriteString("} as const;\n\n")

	b.WriteString("export type Tokens = typeof tokens;\n")
	return b.String()
}
