package tokenforge

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint(t *testing.T) {
	root := writeWorkspace(t, map[string]string{
		"tokens/colors.yaml": "- path: color.primary\n" +
			"  type: color\n" +
			"  value: \"#7c3aed\"\n" +
			"- path: color.link\n" +
			"  type: color\n" +
			"  ref: \"{color.missing}\"\n" +
			"- path: color.other\n" +
			"  type: color\n" +
			"  ref: \"{color.gone}\"\n",
		"themes/dark.yaml": "themeId: dark\nmode: dark\noverrides:\n  color.nothing: \"#000\"\n",
	})

	result, err := Lint(LintConfig{Workspace: Workspace{Root: root}})
	require.NoError(t, err)

	errors, warnings := result.Counts()
	assert.Equal(t, 2, errors)
	assert.GreaterOrEqual(t, warnings, 1)
	assert.Equal(t, 2, result.ByLinter()["tokenref"])
	assert.True(t, Failed(result, false))

	limited, err := Lint(LintConfig{Workspace: Workspace{Root: root}, MaxIssuesPerLinter: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, limited.ByLinter()["tokenref"])
	assert.Positive(t, limited.TruncatedCount)
}

func TestLint_Clean(t *testing.T) {
	root := writeWorkspace(t, map[string]string{
		"tokens/colors.yaml": "- path: color.primary\n  type: color\n  value: \"#7c3aed\"\n",
	})

	result, err := Lint(LintConfig{Workspace: Workspace{Root: root}})
	require.NoError(t, err)
	assert.False(t, Failed(result, false))
	assert.Equal(t, 1, result.Stats.Resolved)
}

func TestFailed(t *testing.T) {
	tests := []struct {
		name   string
		issues []Issue
		strict bool
		want   bool
	}{
		{name: "clean", want: false},
		{name: "warning", issues: []Issue{{Severity: SeverityWarning}}, want: false},
		{name: "warning strict", issues: []Issue{{Severity: SeverityWarning}}, strict: true, want: true},
		{name: "info strict", issues: []Issue{{Severity: SeverityInfo}}, strict: true, want: false},
		{name: "error", issues: []Issue{{Severity: SeverityError}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Failed(&LintResult{Issues: tt.issues}, tt.strict))
		})
	}
}

func TestWriteOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	result := &LintResult{Issues: []Issue{{FromLinter: "tokenref", Text: "broken", Severity: SeverityError}}}

	WriteOutput(&buf, result, DetermineOutputFormat("json", false), LintConfig{})

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "1.0", out["version"])
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Tokens\n\nSome *text*.\n", 40)
	require.NoError(t, err)
	assert.Contains(t, out, "Tokens")
	assert.Contains(t, out, "text")
}
