package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

// execute runs the CLI with fresh configuration and flag state, returning
// what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeWithStderr(t, args...)
	return stdout, err
}

func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetKoanf()
	resetFlags(rootCmd)
	t.Setenv("FORCE_COLOR", "")
	t.Setenv("GITHUB_ACTIONS", "")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default. Cobra keeps parsed values
// between Execute calls on the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func writeWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"tokens/colors.yaml": "- path: color.primary\n" +
			"  type: color\n" +
			"  value: \"#7c3aed\"\n" +
			"- path: color.cta\n" +
			"  type: color\n" +
			"  ref: \"{color.primary}\"\n" +
			"- path: spacing.md\n" +
			"  type: spacing\n" +
			"  value: 16px\n",
		"themes/dark.yaml": "themeId: dark\nmode: dark\noverrides:\n  color.primary: \"#a78bfa\"\n",
		"templates/list.yaml": "name: List\nextension: txt\n" +
			"template: \"{{#tokens}}{{path}}={{value}}\\n{{/tokens}}\"\n",
		"design.yaml": "name: Acme\ndescription: Acme brand\n",
	}
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func exitCode(err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return -1
}

// --- commands ---

func TestTargetsCommand(t *testing.T) {
	out, err := execute(t, "targets")
	require.NoError(t, err)
	assert.Contains(t, out, "css")
	assert.Contains(t, out, "tokens.css")
	assert.Contains(t, out, "figma-variables")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 17)
}

func TestResolveCommand(t *testing.T) {
	root := writeWorkspace(t)

	out, err := execute(t, "resolve", "-C", root, "color.cta", "{color.primary}")
	require.NoError(t, err)
	assert.Contains(t, out, "color.cta = #7c3aed\n")
	assert.Contains(t, out, "  color.cta -> color.primary\n")
	assert.Contains(t, out, "color.primary = #7c3aed\n")

	out, err = execute(t, "resolve", "-C", root, "--theme", "dark", "color.cta")
	require.NoError(t, err)
	assert.Contains(t, out, "color.cta = #a78bfa\n")
	assert.Contains(t, out, "overridden at color.primary")

	out, err = execute(t, "resolve", "-C", root, "--json", "color.cta")
	require.NoError(t, err)
	assert.Contains(t, out, `"chain": [`)

	out, err = execute(t, "resolve", "-C", root, "color.nope")
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, "color.nope:")

	_, err = execute(t, "resolve", "-C", root, "--theme", "sepia", "color.cta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown theme "sepia"`)
}

func TestExportCommand(t *testing.T) {
	root := writeWorkspace(t)
	outDir := filepath.Join(t.TempDir(), "dist")

	out, err := execute(t, "export", "-C", root, "-o", outDir, "-t", "css,scss", "--theme", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 tokens to "+outDir)
	assert.Contains(t, out, "Files written: 2 (0 unchanged)")

	css, err := os.ReadFile(filepath.Join(outDir, "tokens.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), "  --color-cta: #a78bfa;\n")

	// The gen alias reaches the same command.
	out, err = execute(t, "gen", "-C", root, "-o", outDir, "-t", "css,scss", "--theme", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "Files written: 0 (2 unchanged)")
}

func TestExportCommand_Check(t *testing.T) {
	root := writeWorkspace(t)
	outDir := t.TempDir()

	_, err := execute(t, "export", "-C", root, "-o", outDir, "-t", "css")
	require.NoError(t, err)

	out, err := execute(t, "export", "-C", root, "-o", outDir, "-t", "css", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "1 files up to date")

	out, err = execute(t, "export", "-C", root, "-o", outDir, "-t", "css", "--check", "--theme", "dark")
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, "-  --color-primary: #7c3aed;\n")
	assert.Contains(t, out, "+  --color-primary: #a78bfa;\n")
	assert.Contains(t, out, "1 of 1 files out of date")
}

func TestExportCommand_Stdout(t *testing.T) {
	root := writeWorkspace(t)
	outDir := filepath.Join(t.TempDir(), "never")

	out, err := execute(t, "export", "-C", root, "-o", outDir, "-t", "css", "--stdout")
	require.NoError(t, err)
	assert.Contains(t, out, ":root {")
	assert.Contains(t, out, "  --color-primary: #7c3aed;\n")

	_, err = os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRenderCommand(t *testing.T) {
	root := writeWorkspace(t)

	out, err := execute(t, "render", "-C", root, "List", "--theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "color.primary=#a78bfa\ncolor.cta=#a78bfa\nspacing.md=16px\n", out)

	tmpl := filepath.Join(t.TempDir(), "count.txt.tmpl")
	require.NoError(t, os.WriteFile(tmpl, []byte("{{name}}: {{tokenCount}}"), 0o644))
	out, err = execute(t, "render", "-C", root, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "Acme: 3", out)

	_, err = execute(t, "render", "-C", root, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown template "missing"`)
}

func TestRenderCommand_ReportsBrokenReferences(t *testing.T) {
	root := writeWorkspace(t)
	broken := filepath.Join(root, "tokens", "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("- path: color.link\n  type: color\n  ref: \"{color.gone}\"\n"), 0o644))

	out, stderr, err := executeWithStderr(t, "render", "-C", root, "List")
	require.NoError(t, err)
	assert.NotContains(t, out, "color.link")
	assert.Contains(t, stderr, "skipped:")
	assert.Contains(t, stderr, "color.gone")
}

func TestLintCommand(t *testing.T) {
	root := writeWorkspace(t)

	out, err := execute(t, "lint", "-C", root, "--output-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)

	broken := filepath.Join(root, "tokens", "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("- path: color.link\n  ref: \"{color.gone}\"\n"), 0o644))

	out, err = execute(t, "lint", "-C", root)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, "color.gone")
	assert.Contains(t, out, "(tokenref)")

	out, err = execute(t, "lint", "-C", root, "--quiet")
	assert.Equal(t, 1, exitCode(err))
	assert.Empty(t, out)
}

func TestImportCSSCommand(t *testing.T) {
	root := t.TempDir()
	css := filepath.Join(t.TempDir(), "theme.css")
	require.NoError(t, os.WriteFile(css, []byte(":root { --color-primary: #7c3aed; }\n.dark { --color-primary: #000; }\n"), 0o644))

	out, err := execute(t, "import-css", "-C", root, css)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 tokens and 1 themes")

	_, err = os.Stat(filepath.Join(root, "tokens", "theme.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "themes", "dark.json"))
	require.NoError(t, err)
}

func TestStoreCommands(t *testing.T) {
	root := writeWorkspace(t)
	db := filepath.Join(t.TempDir(), "tokens.db")

	out, err := execute(t, "store", "push", "-C", root, "--store", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Pushed Acme")
	assert.Contains(t, out, "3 tokens, 1 themes, 1 templates")

	// A second push updates the same system.
	_, err = execute(t, "store", "push", "-C", root, "--store", db)
	require.NoError(t, err)

	out, err = execute(t, "store", "list", "--store", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Acme")
	assert.Regexp(t, `Acme\s+3\s+1\s+`, lines[1])
}
