package export

import (
	"fmt"
	"strings"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/naming"
)

// mdCell escapes a value for a Markdown table cell.
func mdCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

func writeTable(b *strings.Builder, entries []document.Entry) {
	b.WriteString("| Token | Variable | Value |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, e := range entries {
		fmt.Fprintf(b, "| %s | `--%s` | `%s` |\n", mdCell(naming.Kebab(e.Key...)), e.Variable(), mdCell(e.Text()))
	}
}

func generateStyleguide(v *view) string {
	var b strings.Builder
	b.WriteString("# " + v.title() + " Style Guide\n\n")
	if desc := v.doc.MetaText("description"); desc != "" {
		b.WriteString(desc + "\n\n")
	}
	b.WriteString("> " + generatedNotice + "\n")

	for _, s := range document.Sections {
		b.WriteString("\n## " + sectionTitle(s) + "\n\n")
		entries := v.section(s)
		if len(entries) == 0 {
			b.WriteString("_No tokens defined._\n")
			continue
		}
		writeTable(&b, entries)
	}
	return b.String()
}

func generateStorybook(v *view) string {
	var b strings.Builder
	b.WriteString("import { Meta, ColorPalette, ColorItem, Typeset } from '@storybook/blocks';\n\n")
	b.WriteString("<Meta title=\"Design System/Tokens\" />\n\n")
	b.WriteString("{/* " + generatedNotice + " */}\n\n")
	b.WriteString("# " + v.title() + " Design Tokens\n")

	for _, s := range v.present() {
		entries := v.section(s)
		b.WriteString("\n## " + sectionTitle(s) + "\n\n")
		switch s {
		case document.Colors:
			b.WriteString("<ColorPalette>\n")
			for _, e := range entries {
				fmt.Fprintf(&b, "  <ColorItem title=%q subtitle=%q colors={{ %s: %s }} />\n",
					naming.Kebab(e.Key...), "--"+e.Variable(), jsKey(naming.Camel(e.Key...)), jsString(e.Text()))
			}
			b.WriteString("</ColorPalette>\n")
		case document.Typography:
			for _, style := range typographyStyles(entries) {
				fmt.Fprintf(&b, "### %s\n\n", naming.Title(style.name))
				fmt.Fprintf(&b, "<Typeset fontFamily=%s fontSizes={[%s]} fontWeight={%s} sampleText=\"The quick brown fox jumps over the lazy dog\" />\n\n",
					jsxString(style.props["fontFamily"]), jsString(style.props["fontSize"]), jsString(style.props["fontWeight"]))
			}
			writeTable(&b, entries)
		default:
			writeTable(&b, entries)
		}
	}
	return b.String()
}

func jsxString(s string) string {
	return "{" + jsString(s) + "}"
}

type typographyStyle struct {
	name  string
	props map[string]string
}

// typographyStyles regroups typography leaves into named styles, in order of
// first appearance.
func typographyStyles(entries []document.Entry) []typographyStyle {
	var styles []typographyStyle
	index := make(map[string]int)
	for _, e := range entries {
		prop := fontProperty(e)
		if prop == "" {
			continue
		}
		name := strings.Join(e.Group(), " ")
		if name == "" {
			name = "base"
		}
		i, ok := index[name]
		if !ok {
			i = len(styles)
			index[name] = i
			styles = append(styles, typographyStyle{name: name, props: make(map[string]string)})
		}
		styles[i].props[prop] = e.Text()
	}
	return styles
}

func generateStorybookPro(v *view) string {
	var b strings.Builder
	lineComment(&b, "//", v.headline(), generatedNotice)
	b.WriteString("import type { Meta, StoryObj } from '@storybook/react';\n")
	b.WriteString("import React from 'react';\n\n")

	// flat per-section maps keep Object.entries simple in the stories
	b.WriteString("const tokens = {\n")
	for _, s := range v.present() {
		b.WriteString("  " + jsKey(string(s)) + ": {\n")
		for _, e := range v.section(s) {
			fmt.Fprintf(&b, "    %s: %s,\n", jsString(naming.Kebab(e.Key...)), jsString(e.Text()))
		}
		b.WriteString("  },\n")
	}
	b.WriteString("} as const;\n\n")

	b.WriteString(`const TokenTable = ({ values }: { values: Record<string, string> }) => (
  <table>
    <thead>
      <tr>
        <th>Token</th>
        <th>Value</th>
      </tr>
    </thead>
    <tbody>
      {Object.entries(values).map(([name, value]) => (
        <tr key={name}>
          <td>
            <code>{name}</code>
          </td>
          <td>{value}</td>
        </tr>
      ))}
    </tbody>
  </table>
);

const Swatches = ({ values }: { values: Record<string, string> }) => (
  <div style={{ display: 'grid', gridTemplateColumns: 'repeat(auto-fill, minmax(160px, 1fr))', gap: 16 }}>
    {Object.entries(values).map(([name, value]) => (
      <div key={name}>
        <div style={{ background: value, height: 64, borderRadius: 8 }} />
        <code>{name}</code>
        <div>{value}</div>
      </div>
    ))}
  </div>
);

`)
	fmt.Fprintf(&b, "const meta: Meta = {\n  title: %s,\n  parameters: { layout: 'padded' },\n};\n\n", jsString("Design System/"+v.title()))
	b.WriteString("export default meta;\n\n")
	b.WriteString("type Story = StoryObj;\n\n")

	fmt.Fprintf(&b, "export const Overview: Story = {\n  render: () => <p>%d tokens in %d sections.</p>,\n};\n",
		len(v.entries), len(v.present()))

	for _, s := range v.present() {
		component := "TokenTable"
		if s == document.Colors {
			component = "Swatches"
		}
		fmt.Fprintf(&b, "\nexport const %s: Story = {\n  render: () => <%s values={tokens.%s} />,\n};\n",
			naming.Pascal(string(s)), component, string(s))
	}
	return b.String()
}
