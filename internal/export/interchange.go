package export

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/token"
)

// figmaType is the Tokens Studio type of an entry.
func figmaType(e document.Entry) string {
	switch e.Section {
	case document.Colors:
		return "color"
	case document.Spacing:
		return "spacing"
	case document.BorderRadius:
		return "borderRadius"
	case document.Shadows:
		return "boxShadow"
	case document.Typography:
		switch fontProperty(e) {
		case "fontFamily":
			return "fontFamilies"
		case "fontSize":
			return "fontSizes"
		case "fontWeight":
			return "fontWeights"
		case "lineHeight":
			return "lineHeights"
		case "letterSpacing":
			return "letterSpacing"
		}
		return "typography"
	case document.Grid:
		return "sizing"
	}
	return "other"
}

func generateFigma(v *view) string {
	global := prefixTree(v.entries).ordered(func(e document.Entry) any {
		leaf := orderedmap.New[string, any]()
		leaf.Set("value", e.Value.Interface())
		leaf.Set("type", figmaType(e))
		return leaf
	})

	meta := orderedmap.New[string, any]()
	meta.Set("tokenSetOrder", []string{"global"})

	out := orderedmap.New[string, any]()
	out.Set("global", global)
	out.Set("$metadata", meta)
	return encodeJSON(out)
}

func generateStyleDictionary(v *view) string {
	return encodeJSON(prefixTree(v.entries).ordered(func(e document.Entry) any {
		leaf := orderedmap.New[string, any]()
		leaf.Set("value", e.Value.Interface())
		return leaf
	}))
}

// w3cType is the Design Tokens Community Group $type of an entry, or "" when
// none applies.
func w3cType(e document.Entry) string {
	switch e.Section {
	case document.Colors:
		if _, ok := parseColor(e.Text()); ok {
			return "color"
		}
	case document.Spacing, document.BorderRadius:
		if _, ok := pixels(e.Value); ok {
			return "dimension"
		}
	case document.Shadows:
		return "shadow"
	case document.Typography:
		switch fontProperty(e) {
		case "fontFamily":
			return "fontFamily"
		case "fontWeight":
			return "fontWeight"
		case "fontSize", "letterSpacing":
			return "dimension"
		case "lineHeight":
			return "number"
		}
	case document.Animations:
		if _, ok := milliseconds(e.Value); ok {
			return "duration"
		}
	}
	if e.Value.Kind() == token.KindNumber {
		return "number"
	}
	return ""
}

func generateW3C(v *view) string {
	return encodeJSON(prefixTree(v.entries).ordered(func(e document.Entry) any {
		leaf := orderedmap.New[string, any]()
		leaf.Set("$value", e.Value.Interface())
		if t := w3cType(e); t != "" {
			leaf.Set("$type", t)
		}
		return leaf
	}))
}

type figmaCollection struct {
	Name      string          `json:"name"`
	Modes     []string        `json:"modes"`
	Variables []figmaVariable `json:"variables"`
}

type figmaVariable struct {
	Name         string         `json:"name"`
	ResolvedType string         `json:"resolvedType"`
	ValuesByMode map[string]any `json:"valuesByMode"`
}

type figmaColor struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

const figmaMode = "Default"

func figmaVariableOf(e document.Entry) figmaVariable {
	fv := figmaVariable{Name: strings.Join(e.Key, "/"), ResolvedType: "STRING"}
	var value any = e.Text()

	if c, ok := parseColor(e.Text()); ok && e.Section == document.Colors {
		c = c.rounded()
		fv.ResolvedType = "COLOR"
		value = figmaColor{R: c.R, G: c.G, B: c.B, A: c.A}
	} else if e.Value.Kind() == token.KindBool {
		fv.ResolvedType = "BOOLEAN"
		value = e.Value.Interface()
	} else if px, ok := pixels(e.Value); ok {
		fv.ResolvedType = "FLOAT"
		value = px
	}
	fv.ValuesByMode = map[string]any{figmaMode: value}
	return fv
}

func generateFigmaVariables(v *view) string {
	collections := []figmaCollection{}
	for _, s := range v.present() {
		c := figmaCollection{Name: sectionTitle(s), Modes: []string{figmaMode}}
		for _, e := range v.section(s) {
			c.Variables = append(c.Variables, figmaVariableOf(e))
		}
		collections = append(collections, c)
	}
	return encodeJSON(map[string]any{"collections": collections})
}
