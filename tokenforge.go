// Package tokenforge resolves design tokens and exports them to code.
//
// A workspace holds token files (tokens/**), an optional design document
// (design.yaml), brand and theme override layers (themes/**) and custom export
// templates (templates/**). Aliases such as {color.primary} are resolved
// through the selected override layer at every hop.
//
// # Export
//
// Write every built-in target for the dark theme:
//
//	result, err := tokenforge.Export(tokenforge.ExportConfig{
//		Workspace: tokenforge.Workspace{Root: "design"},
//		OutputDir: "dist/tokens",
//		Theme:     "dark",
//	})
//
// With Check set, nothing is written and each stale file carries a diff.
//
// # Linting
//
// Report broken aliases, orphan overrides and template mistakes:
//
//	result, err := tokenforge.Lint(tokenforge.LintConfig{
//		Workspace: tokenforge.Workspace{Root: "design"},
//	})
//	tokenforge.WriteOutput(os.Stdout, result, tokenforge.OutputIssues, config)
//
// # CLI Tool
//
//	go install github.com/yacobolo/tokenforge/cmd/tokenforge@latest
package tokenforge

import "github.com/yacobolo/tokenforge/internal/loader"

// Workspace locates the files of a token workspace.
type Workspace struct {
	Root     string   // workspace directory, "." when empty
	Include  []string // doublestar patterns, loader defaults when empty
	Exclude  []string
	NoIgnore bool // do not honor .gitignore
}

func (w Workspace) loaderConfig(templates bool) loader.Config {
	return loader.Config{
		Root:      w.Root,
		Include:   w.Include,
		Exclude:   w.Exclude,
		NoIgnore:  w.NoIgnore,
		Templates: templates,
	}
}

// Load decodes the workspace, including custom templates.
func (w Workspace) Load() (*loader.Workspace, error) {
	return loader.Load(w.loaderConfig(true))
}

// LoaderConfig is the discovery configuration of w, templates included.
func (w Workspace) LoaderConfig() loader.Config {
	return w.loaderConfig(true)
}
