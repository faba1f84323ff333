package tokenforge

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/loader"
)

// AllTemplates selects every custom template of the workspace.
const AllTemplates = "all"

// ExportConfig controls an export run.
type ExportConfig struct {
	Workspace
	OutputDir string   // relative paths are taken from the current directory
	Targets   []string // built-in target IDs; every target when both Targets and Templates are empty
	Templates []string // custom template names or IDs, or AllTemplates
	Theme     string   // comma-separated override layers, first wins; "" for the base set
	Check     bool     // compare against OutputDir instead of writing
	DryRun    bool     // generate without touching the disk
	Verbose   bool
}

// ExportedFile is one generated artifact.
type ExportedFile struct {
	Path    string // OutputDir joined with the target filename
	Source  string // target ID or template name
	Content string
	Changed bool   // differs from the file on disk
	Diff    string // set in Check mode for changed files
}

// ExportResult summarizes an export run.
type ExportResult struct {
	FilesLoaded int
	Tokens      int
	Files       []ExportedFile
	Failures    []string // tokens that did not resolve and were left out
	Warnings    []string
}

// Stale returns the files whose content on disk is out of date.
func (r *ExportResult) Stale() []ExportedFile {
	var stale []ExportedFile
	for _, f := range r.Files {
		if f.Changed {
			stale = append(stale, f)
		}
	}
	return stale
}

// Export is the main entry point
func Export(config ExportConfig) (*ExportResult, error) {
	result := &ExportResult{}

	// 1. Load the workspace
	ws, err := loader.Load(config.loaderConfig(len(config.Templates) > 0))
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}
	result.FilesLoaded = ws.Stats.FilesLoaded
	result.Warnings = append(result.Warnings, ws.Warnings...)

	if config.Verbose {
		fmt.Printf("Loaded %d files (%d tokens)\n", ws.Stats.FilesLoaded, ws.Tokens.Len())
	}

	// 2. Resolve through the selected theme
	bundle, report, err := ws.Bundle(config.Theme)
	if err != nil {
		return nil, fmt.Errorf("resolve failed: %w", err)
	}
	result.Tokens = len(report.Resolved)
	for _, f := range report.Failures {
		result.Failures = append(result.Failures, f.Err.Error())
	}

	// 3. Select outputs
	targets, templates, err := selectOutputs(config, ws)
	if err != nil {
		return nil, err
	}

	// 4. Generate
	for _, t := range targets {
		result.Files = append(result.Files, ExportedFile{
			Path:    filepath.Join(config.OutputDir, t.Filename),
			Source:  t.ID,
			Content: t.Generate(bundle.Document),
		})
	}
	for _, c := range templates {
		content, warns := export.RenderCustom(c, bundle)
		for _, w := range warns {
			result.Warnings = append(result.Warnings, fmt.Sprintf("template %s: %s", c.Name, w))
		}
		result.Files = append(result.Files, ExportedFile{
			Path:    filepath.Join(config.OutputDir, c.Filename()),
			Source:  c.Name,
			Content: content,
		})
	}

	// 5. Compare with disk, then write
	for i := range result.Files {
		f := &result.Files[i]
		existing, err := os.ReadFile(f.Path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", f.Path, err)
		}
		f.Changed = err != nil || !bytes.Equal(existing, []byte(f.Content))
		if !f.Changed {
			continue
		}
		if config.Check {
			f.Diff = unifiedDiff(f.Path, string(existing), f.Content)
			continue
		}
		if config.DryRun {
			continue
		}
		if err := writeFile(f.Path, f.Content); err != nil {
			return nil, fmt.Errorf("write failed: %w", err)
		}
		if config.Verbose {
			fmt.Printf("Wrote %s\n", f.Path)
		}
	}

	return result, nil
}

func selectOutputs(config ExportConfig, ws *loader.Workspace) ([]export.Target, []export.CustomTemplate, error) {
	var targets []export.Target
	switch {
	case len(config.Targets) > 0:
		selected, err := export.Select(config.Targets)
		if err != nil {
			return nil, nil, err
		}
		targets = selected
	case len(config.Templates) == 0:
		targets = export.Targets()
	}

	if slices.Contains(config.Templates, AllTemplates) {
		return targets, ws.Templates, nil
	}
	templates := make([]export.CustomTemplate, 0, len(config.Templates))
	for _, key := range config.Templates {
		c, ok := ws.Template(key)
		if !ok {
			return nil, nil, fmt.Errorf("unknown template %q", key)
		}
		templates = append(templates, c)
	}
	return targets, templates, nil
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
