// Package export turns a design system document into the text of each export
// target, and runs user authored templates through the template engine.
//
// Generators are pure: the same document always yields byte-identical output,
// missing sections render empty, and keys keep the document's order.
package export

import (
	"fmt"
	"sort"

	"github.com/yacobolo/tokenforge/internal/document"
)

// Target is one built-in export format.
type Target struct {
	ID       string
	Label    string
	Filename string
	Syntax   string // code fence language, for previews
	generate func(*view) string
}

// Generate renders doc. It never fails.
func (t Target) Generate(doc *document.Document) string {
	return t.generate(newView(doc))
}

var targets = []Target{
	{ID: "json", Label: "JSON", Filename: "design-tokens.json", Syntax: "json", generate: generateJSON},
	{ID: "css", Label: "CSS Variables", Filename: "tokens.css", Syntax: "css", generate: generateCSS},
	{ID: "scss", Label: "SCSS", Filename: "_tokens.scss", Syntax: "scss", generate: generateSCSS},
	{ID: "tailwind", Label: "Tailwind Config", Filename: "tailwind.config.js", Syntax: "js", generate: generateTailwind},
	{ID: "react-native", Label: "React Native", Filename: "theme.ts", Syntax: "ts", generate: generateReactNative},
	{ID: "swiftui", Label: "SwiftUI", Filename: "DesignTokens.swift", Syntax: "swift", generate: generateSwiftUI},
	{ID: "compose", Label: "Jetpack Compose", Filename: "DesignTokens.kt", Syntax: "kotlin", generate: generateCompose},
	{ID: "flutter", Label: "Flutter", Filename: "design_tokens.dart", Syntax: "dart", generate: generateFlutter},
	{ID: "css-in-js", Label: "CSS-in-JS", Filename: "tokens.ts", Syntax: "ts", generate: generateCSSInJS},
	{ID: "storybook", Label: "Storybook Docs", Filename: "DesignTokens.mdx", Syntax: "mdx", generate: generateStorybook},
	{ID: "styleguide", Label: "Style Guide", Filename: "STYLEGUIDE.md", Syntax: "markdown", generate: generateStyleguide},
	{ID: "figma", Label: "Figma Tokens", Filename: "figma-tokens.json", Syntax: "json", generate: generateFigma},
	{ID: "figma-variables", Label: "Figma Variables", Filename: "figma-variables.json", Syntax: "json", generate: generateFigmaVariables},
	{ID: "style-dictionary", Label: "Style Dictionary", Filename: "style-dictionary.json", Syntax: "json", generate: generateStyleDictionary},
	{ID: "storybook-pro", Label: "Storybook Stories", Filename: "DesignTokens.stories.tsx", Syntax: "tsx", generate: generateStorybookPro},
	{ID: "w3c", Label: "W3C Design Tokens", Filename: "tokens.w3c.json", Syntax: "json", generate: generateW3C},
}

// Targets returns every built-in target in registry order.
func Targets() []Target {
	return append([]Target(nil), targets...)
}

// Lookup finds a target by id.
func Lookup(id string) (Target, bool) {
	for _, t := range targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}

// IDs returns the target ids in registry order.
func IDs() []string {
	ids := make([]string, len(targets))
	for i, t := range targets {
		ids[i] = t.ID
	}
	return ids
}

// Select resolves a list of ids to targets. An empty list selects every
// target. Unknown ids are reported together.
func Select(ids []string) ([]Target, error) {
	if len(ids) == 0 {
		return Targets(), nil
	}
	var (
		out     []Target
		unknown []string
	)
	for _, id := range ids {
		t, ok := Lookup(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		out = append(out, t)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown export targets %v (available: %v)", unknown, IDs())
	}
	return out, nil
}
