package tokenforge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importStylesheet = `:root {
  --tf-color-primary: #7c3aed;
  --tf-color-cta: var(--tf-color-primary);
  --tf-spacing-md: 16px;
}

[data-theme="dark"] {
  --tf-color-primary: #a78bfa;
}
`

func TestImportCSS(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(t.TempDir(), "Brand Tokens.css")
	require.NoError(t, os.WriteFile(source, []byte(importStylesheet), 0o644))

	result, err := ImportCSS(ImportConfig{Root: root, Source: source, Prefix: "tf"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Tokens)
	assert.Equal(t, 1, result.Themes)
	assert.Equal(t, []string{
		filepath.Join(root, "tokens", "brand-tokens.json"),
		filepath.Join(root, "themes", "dark.json"),
	}, result.Files)

	// The written workspace exports through the imported theme.
	export, err := Export(ExportConfig{
		Workspace: Workspace{Root: root},
		Targets:   []string{"css"},
		Theme:     "dark",
		DryRun:    true,
	})
	require.NoError(t, err)
	assert.Empty(t, export.Failures)
	require.Len(t, export.Files, 1)
	assert.Contains(t, export.Files[0].Content, "  --color-cta: #a78bfa;\n")

	_, err = ImportCSS(ImportConfig{Root: root, Source: source, Prefix: "tf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = ImportCSS(ImportConfig{Root: root, Source: source, Prefix: "tf", Force: true})
	require.NoError(t, err)
}

func TestImportCSS_MissingSource(t *testing.T) {
	_, err := ImportCSS(ImportConfig{Root: t.TempDir(), Source: "nope.css"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open stylesheet")
}
