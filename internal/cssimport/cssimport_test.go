package cssimport

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/tokenforge/internal/resolve"
	"github.com/yacobolo/tokenforge/internal/theme"
	"github.com/yacobolo/tokenforge/internal/token"
)

const stylesheet = `
/* brand tokens */
:root {
  --color-primary: #7c3aed;
  --color-cta: var(--color-primary);
  --spacing-md: 16px;
  --font-weight-bold: 700;
  --font-family: "Inter";
  --z-modal: 100;
  --accent: hsl(262, 83%, 58%);
  color: red;
}

.dark, [data-theme="dark"] {
  --color-primary: #000000;
  --color-cta: var(--color-primary);
}

@media (prefers-color-scheme: light) {
  :root { --color-primary: #ffffff; }
}

@media (min-width: 768px) {
  :root { --spacing-md: 24px; }
}

.button { --button-bg: red; }

.brand-acme { --color-primary: #ff5500; }
`

func TestImportString(t *testing.T) {
	result := ImportString(stylesheet, Options{SystemID: "sys-1"})

	paths := make([]token.Path, len(result.Tokens))
	for i, tok := range result.Tokens {
		paths[i] = tok.Path
	}
	assert.Equal(t, []token.Path{
		"color.primary", "color.cta", "spacing.md", "font.weight-bold", "font.family", "z.modal", "accent",
	}, paths)

	tests := []struct {
		path     token.Path
		wantType token.Type
		wantText string
	}{
		{"color.primary", token.TypeColor, "#7c3aed"},
		{"spacing.md", token.TypeSpacing, "16px"},
		{"font.weight-bold", token.TypeTypography, "700"},
		{"font.family", token.TypeTypography, "Inter"},
		{"z.modal", token.TypeOther, "100"},
		{"accent", token.TypeColor, "hsl(262, 83%, 58%)"},
	}
	set, err := result.Set()
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(string(tt.path), func(t *testing.T) {
			tok, ok := set.Lookup(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, tok.Type)
			assert.Equal(t, tt.wantText, tok.Value.Text())
			assert.Equal(t, token.StatusPublished, tok.Status)
		})
	}

	cta, _ := set.Lookup("color.cta")
	assert.True(t, cta.IsAlias())
	assert.Equal(t, token.Path("color.primary"), cta.Value.Ref())

	weight, _ := set.Lookup("font.weight-bold")
	n, ok := weight.Value.Number()
	assert.True(t, ok)
	assert.InDelta(t, 700.0, n, 0.001)
}

func TestImportString_Themes(t *testing.T) {
	result := ImportString(stylesheet, Options{SystemID: "sys-1"})
	require.Len(t, result.Themes, 3)

	dark := result.Themes[0]
	assert.Equal(t, "dark", dark.ThemeID)
	assert.Equal(t, theme.ModeDark, dark.Mode)
	assert.Equal(t, "sys-1", dark.SystemID)
	assert.Equal(t, []token.Path{"color.primary", "color.cta"}, dark.Layer.Paths())

	cta, _ := dark.Layer.Lookup("color.cta")
	assert.Equal(t, "#000000", cta.Text(), "aliases in overrides are snapshotted")

	light := result.Themes[1]
	assert.Equal(t, "light", light.ThemeID)
	assert.Equal(t, theme.ModeLight, light.Mode)

	brand := result.Themes[2]
	assert.Equal(t, "acme", brand.ThemeID)
	assert.Equal(t, theme.ModeBrand, brand.Mode)

	set, err := result.Set()
	require.NoError(t, err)
	v, err := resolve.Value("color.cta", set, dark)
	require.NoError(t, err)
	assert.Equal(t, "#000000", v.Text())
}

func TestImportString_Warnings(t *testing.T) {
	result := ImportString(stylesheet, Options{})

	joined := strings.Join(result.Warnings, "\n")
	assert.Contains(t, joined, "skipping @media (min-width:768px)")
	assert.Contains(t, joined, `skipping selector ".button"`)

	set, err := result.Set()
	require.NoError(t, err)
	md, _ := set.Lookup("spacing.md")
	assert.Equal(t, "16px", md.Value.Text(), "skipped media does not override")
}

func TestImportString_Prefix(t *testing.T) {
	result := ImportString(`:root { --tf-color-primary: red; --other: 1px; --tf-gap: var(--tf-color-primary); }`, Options{Prefix: "tf"})

	require.Len(t, result.Tokens, 2)
	assert.Equal(t, token.Path("color.primary"), result.Tokens[0].Path)
	assert.Equal(t, token.Path("gap"), result.Tokens[1].Path)
	assert.Equal(t, token.Path("color.primary"), result.Tokens[1].Value.Ref())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `skipping --other: prefix "tf" not present`)
}

func TestImportString_Duplicates(t *testing.T) {
	result := ImportString(":root {\n  --a-b: 1px;\n}\n:root {\n  --a-b: 2px;\n}\n", Options{})

	require.Len(t, result.Tokens, 1)
	assert.Equal(t, "1px", result.Tokens[0].Value.Text())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "duplicate property --a-b")
}

func TestImport_ReadError(t *testing.T) {
	_, err := Import(failingReader{}, Options{})
	assert.Error(t, err)

	result, err := Import(strings.NewReader(":root { --x-y: 1; }"), Options{})
	require.NoError(t, err)
	assert.Len(t, result.Tokens, 1)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }
