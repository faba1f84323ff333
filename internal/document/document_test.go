package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/tokenforge/internal/resolve"
	"github.com/yacobolo/tokenforge/internal/token"
)

const sample = `{
  "name": "Acme",
  "colors": {"primary": "hsl(262,83%,58%)", "background": "#ffffff"},
  "typography": {
    "heading": {"fontFamily": "Inter", "fontSize": "2rem", "fontWeight": 700}
  },
  "spacing": {"sm": "8px", "md": "16px"},
  "animations": null
}`

func TestDecode(t *testing.T) {
	doc, err := Decode([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "Acme", doc.Name())
	assert.Equal(t, []string{"primary", "background"}, doc.Section(Colors).Keys())
	assert.True(t, doc.Has(Typography))
	assert.False(t, doc.Has(Animations), "null section is absent")
	assert.Equal(t, []Section{Shadows, BorderRadius, Grid, Animations, Components}, doc.Missing())
}

func TestDecode_YAML(t *testing.T) {
	doc, err := Decode([]byte("name: Acme\nspacing:\n  lg: 24px\n  xs: 4px\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"lg", "xs"}, doc.Section(Spacing).Keys())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not an object", input: `["colors"]`},
		{name: "scalar section", input: `{"colors": "red"}`},
		{name: "malformed", input: `{"colors": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestMarshalJSON_CanonicalOrder(t *testing.T) {
	doc, err := Decode([]byte(`{"spacing": {"md": "16px"}, "name": "Acme", "colors": {"b": "#000", "a": "#fff"}}`))
	require.NoError(t, err)

	data, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Acme","colors":{"b":"#000","a":"#fff"},"spacing":{"md":"16px"}}`, string(data))
}

func TestFlatten(t *testing.T) {
	doc, err := Decode([]byte(sample))
	require.NoError(t, err)

	entries := Flatten(doc)
	var vars, paths, texts []string
	for _, e := range entries {
		vars = append(vars, e.Variable())
		paths = append(paths, e.Path().String())
		texts = append(texts, e.Text())
	}

	assert.Equal(t, []string{
		"color-primary",
		"color-background",
		"font-heading-font-family",
		"font-heading-font-size",
		"font-heading-font-weight",
		"spacing-sm",
		"spacing-md",
	}, vars)
	assert.Equal(t, "font.heading.fontSize", paths[3])
	assert.Equal(t, []string{"hsl(262,83%,58%)", "#ffffff", "Inter", "2rem", "700", "8px", "16px"}, texts)

	heading := entries[2]
	assert.Equal(t, []string{"heading"}, heading.Group())
	assert.Equal(t, "fontFamily", heading.Name())
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(New()))
	assert.Empty(t, Flatten(nil))
}

func TestSectionFor(t *testing.T) {
	tests := []struct {
		path    string
		typ     token.Type
		section Section
		key     []string
	}{
		{path: "color.primary", typ: token.TypeColor, section: Colors, key: []string{"primary"}},
		{path: "colors.primary", typ: token.TypeOther, section: Colors, key: []string{"primary"}},
		{path: "brand.accent", typ: token.TypeColor, section: Colors, key: []string{"brand", "accent"}},
		{path: "radius.button", typ: token.TypeBorderRadius, section: BorderRadius, key: []string{"button"}},
		{path: "gap", typ: token.TypeDimension, section: Spacing, key: []string{"gap"}},
		{path: "card.border", typ: token.TypeBorder, section: Components, key: []string{"card", "border"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			s, key := SectionFor(token.Token{Path: token.Path(tt.path), Type: tt.typ})
			assert.Equal(t, tt.section, s)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestFromResolved(t *testing.T) {
	heading := token.NewRecord()
	heading.Set("fontFamily", token.String("Inter"))

	resolved := []resolve.Resolved{
		{Token: token.Token{Path: "color.primary", Type: token.TypeColor}, Resolution: resolve.Resolution{Value: token.String("#7c3aed")}},
		{Token: token.Token{Path: "color.cta", Type: token.TypeColor}, Resolution: resolve.Resolution{Value: token.String("#7c3aed")}},
		{Token: token.Token{Path: "font.heading", Type: token.TypeTypography}, Resolution: resolve.Resolution{Value: token.RecordOf(heading)}},
		{Token: token.Token{Path: "font.heading.fontSize", Type: token.TypeTypography}, Resolution: resolve.Resolution{Value: token.String("2rem")}},
		{Token: token.Token{Path: "spacing.md", Type: token.TypeSpacing}, Resolution: resolve.Resolution{Value: token.String("16px")}},
	}

	doc := FromResolved(resolved)
	assert.Equal(t, []string{"primary", "cta"}, doc.Section(Colors).Keys())

	var vars []string
	for _, e := range Flatten(doc) {
		vars = append(vars, e.Variable())
	}
	assert.Equal(t, []string{
		"color-primary", "color-cta", "font-heading-font-family", "font-heading-font-size", "spacing-md",
	}, vars)

	assert.Equal(t, 1, heading.Len(), "input records are not modified")
}

func TestFromResolved_PrefixPaths(t *testing.T) {
	primary := token.Token{Path: "color.primary", Type: token.TypeColor, Value: token.String("#000")}
	light := token.Token{Path: "color.primary.light", Type: token.TypeColor, Value: token.String("#aaa")}
	hover := token.Token{Path: "color.primary.light.hover", Type: token.TypeColor, Value: token.String("#bbb")}

	tests := []struct {
		name   string
		tokens []token.Token
	}{
		{name: "shorter first", tokens: []token.Token{primary, light, hover}},
		{name: "longer first", tokens: []token.Token{light, hover, primary}},
		{name: "deepest first", tokens: []token.Token{hover, primary, light}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := token.NewSet(tt.tokens...)
			require.NoError(t, err)

			got := map[string]string{}
			for _, e := range Flatten(FromResolved(resolve.ResolveAll(set, nil).Resolved)) {
				got[e.Variable()] = e.Text()
			}
			assert.Equal(t, map[string]string{
				"color-primary":             "#000",
				"color-primary-light":       "#aaa",
				"color-primary-light-hover": "#bbb",
			}, got)
		})
	}
}

func TestFromResolved_RecordAbsorbsLongerPaths(t *testing.T) {
	heading := token.NewRecord()
	heading.Set("fontFamily", token.String("Inter"))
	size := resolve.Resolved{Token: token.Token{Path: "font.heading.fontSize", Type: token.TypeTypography}, Resolution: resolve.Resolution{Value: token.String("2rem")}}
	style := resolve.Resolved{Token: token.Token{Path: "font.heading", Type: token.TypeTypography}, Resolution: resolve.Resolution{Value: token.RecordOf(heading)}}

	doc := FromResolved([]resolve.Resolved{size, style})
	rec := doc.Section(Typography)
	require.NotNil(t, rec)
	v, ok := rec.Get("heading")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"fontFamily", "fontSize"}, v.Record().Keys())
	assert.Equal(t, 1, heading.Len(), "input records are not modified")
}

func TestToTokens(t *testing.T) {
	doc, err := Decode([]byte(sample))
	require.NoError(t, err)

	tokens := ToTokens(doc)
	require.Len(t, tokens, 5)

	assert.Equal(t, token.Path("color.primary"), tokens[0].Path)
	assert.Equal(t, token.TypeColor, tokens[0].Type)
	assert.Equal(t, "Primary", tokens[0].Name)

	heading := tokens[2]
	assert.Equal(t, token.Path("font.heading"), heading.Path)
	assert.Equal(t, token.TypeTypography, heading.Type)
	require.NotNil(t, heading.Value.Record())
	assert.Equal(t, []string{"fontFamily", "fontSize", "fontWeight"}, heading.Value.Record().Keys())

	assert.Equal(t, token.Path("spacing.md"), tokens[4].Path)
	assert.Equal(t, token.TypeSpacing, tokens[4].Type)
}

func TestToTokens_RoundTrip(t *testing.T) {
	doc, err := Decode([]byte(sample))
	require.NoError(t, err)

	set, err := token.NewSet(ToTokens(doc)...)
	require.NoError(t, err)
	report := resolve.ResolveAll(set, nil)
	require.True(t, report.OK())

	back := FromResolved(report.Resolved)
	doc.Meta = token.NewRecord()
	assert.JSONEq(t, mustJSON(t, doc), mustJSON(t, back))
}

func TestOverlay(t *testing.T) {
	base, err := Decode([]byte(`{"name": "Base", "colors": {"primary": "#111111", "accent": "#222222"}, "grid": {}}`))
	require.NoError(t, err)
	top, err := Decode([]byte(`{"name": "Top", "colors": {"primary": "#000000", "muted": "#333333"}}`))
	require.NoError(t, err)

	out := Overlay(base, top)
	assert.Equal(t, "Top", out.Name())
	assert.Equal(t, []string{"primary", "accent", "muted"}, out.Section(Colors).Keys())
	v, _ := out.Section(Colors).Get("primary")
	assert.Equal(t, "#000000", v.Text())
	assert.True(t, out.Has(Grid), "empty sections survive")

	v, _ = base.Section(Colors).Get("primary")
	assert.Equal(t, "#111111", v.Text(), "base is untouched")
	assert.Equal(t, "Base", base.Name())

	assert.Equal(t, "Base", Overlay(base, nil).Name())
}

func mustJSON(t *testing.T, d *Document) string {
	t.Helper()
	data, err := d.MarshalJSON()
	require.NoError(t, err)
	return string(data)
}
