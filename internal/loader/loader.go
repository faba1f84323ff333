// Package loader discovers token, document, theme and template files in a
// workspace and decodes them, keeping source positions for lint reports.
package loader

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/report"
	"github.com/yacobolo/tokenforge/internal/resolve"
	"github.com/yacobolo/tokenforge/internal/theme"
	"github.com/yacobolo/tokenforge/internal/token"
)

// DefaultInclude is used when Config.Include is empty.
var DefaultInclude = []string{
	"tokens/**/*.{json,yaml,yml}",
	"themes/**/*.{json,yaml,yml}",
	"templates/**/*.{json,yaml,yml,tmpl}",
	"design.{json,yaml,yml}",
}

// Config controls file discovery.
type Config struct {
	Root      string   // workspace directory, "." when empty
	Include   []string // doublestar patterns relative to Root
	Exclude   []string // doublestar patterns relative to Root
	NoIgnore  bool     // do not consult Root/.gitignore
	Templates bool     // load templates (lint and render need them, export does not)
}

// Stats tracks file discovery statistics
type Stats struct {
	FilesDiscovered int // Total files found by glob patterns
	FilesLoaded     int // Files decoded into the workspace
	FilesSkipped    int // Files skipped by exclude patterns or .gitignore
}

// File is one loaded file.
type File struct {
	Path string // slash separated, relative to Root
	Kind Kind
}

// Workspace is the decoded content of a workspace.
type Workspace struct {
	Tokens    *token.Set
	Document  *document.Document
	Overrides []*theme.Override
	Templates []export.CustomTemplate
	Files     []File
	Locations report.Locations
	Warnings  []string
	Stats     Stats
}

// Template returns the template whose ID or name is key.
func (w *Workspace) Template(key string) (export.CustomTemplate, bool) {
	for _, c := range w.Templates {
		if c.ID == key || c.Name == key {
			return c, true
		}
	}
	return export.CustomTemplate{}, false
}

// ErrUnknownTheme is returned for a theme id with no override file.
var ErrUnknownTheme = theme.ErrUnknownTheme

// Layers stacks the overrides named in themes, a comma-separated list whose
// first entry wins. An empty list yields nil.
func (w *Workspace) Layers(themes string) (resolve.Overrides, error) {
	ids := theme.ParseIDs(themes)
	if len(ids) == 0 {
		return nil, nil
	}
	stack, err := theme.Select(w.Overrides, ids)
	if err != nil {
		return nil, err
	}
	return stack, nil
}

// Bundle resolves the workspace tokens through the listed themes ("" for
// none) and lays the result over the design document, so document-only
// entries survive an export. Tokens that fail to resolve are listed in the
// report.
func (w *Workspace) Bundle(themes string) (export.Bundle, *resolve.Report, error) {
	overrides, err := w.Layers(themes)
	if err != nil {
		return export.Bundle{}, nil, err
	}

	bundle, report := export.NewBundle(w.Tokens, overrides)
	if w.Document != nil {
		bundle.Document = document.Overlay(w.Document, bundle.Document)
	}
	return bundle, report, nil
}

// LintInput packages the workspace for report.Analyze.
func (w *Workspace) LintInput() report.Input {
	return report.Input{
		Tokens:    w.Tokens,
		Overrides: w.Overrides,
		Templates: w.Templates,
		Document:  w.Document,
		Locations: w.Locations,
		Files:     len(w.Files),
		Warnings:  w.Warnings,
	}
}

// Load expands the configured patterns and decodes every matching file.
// Decode failures of individual files become warnings; only discovery errors
// are returned.
func Load(cfg Config) (*Workspace, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}

	files, stats, err := Expand(root, cfg)
	if err != nil {
		return nil, err
	}

	tokens, _ := token.NewSet()
	ws := &Workspace{
		Tokens: tokens,
		Stats:  stats,
		Locations: report.Locations{
			Tokens:    make(map[token.Path]report.IssuePos),
			Overrides: make(map[string]report.IssuePos),
			Templates: make(map[string]report.IssuePos),
			Sources:   make(map[string][]string),
		},
	}
	origins := make(map[token.Path]string)

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			ws.warnf("%s: %v", name, err)
			continue
		}
		if err := ws.add(name, data, cfg.Templates, origins); err != nil {
			ws.warnf("%s: %v", name, err)
		}
	}

	ws.Stats.FilesLoaded = len(ws.Files)
	return ws, nil
}

func (w *Workspace) warnf(format string, args ...any) {
	w.Warnings = append(w.Warnings, fmt.Sprintf(format, args...))
}

func (w *Workspace) add(name string, data []byte, templates bool, origins map[token.Path]string) error {
	f, err := classify(name, data)
	if err != nil {
		return err
	}
	if f.kind == KindTemplate && !templates {
		return nil
	}

	switch f.kind {
	case KindTokens:
		list, err := token.DecodeTokenNode(f.node)
		if err != nil {
			return err
		}
		for _, t := range list {
			if first, dup := origins[t.Path]; dup {
				w.warnf("%s: duplicate token %q (first defined in %s)", name, t.Path, first)
				continue
			}
			if err := w.Tokens.Add(t); err != nil {
				return err
			}
			origins[t.Path] = name
		}
		for p, pos := range tokenPositions(f.node) {
			if origins[p] == name {
				pos.Filename = name
				w.Locations.Tokens[p] = pos
			}
		}

	case KindDocument:
		doc, err := document.DecodeNode(f.node)
		if err != nil {
			return err
		}
		if w.Document != nil {
			w.warnf("%s: second design document ignored (using %s)", name, w.Locations.Document)
			return nil
		}
		w.Document = doc
		w.Locations.Document = name

	case KindTheme:
		o, err := theme.DecodeNode(f.node)
		if err != nil {
			return err
		}
		if o.ThemeID == "" {
			o.ThemeID = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		w.Overrides = append(w.Overrides, o)
		w.Locations.Overrides[o.ThemeID] = report.IssuePos{Filename: name}
		for p, pos := range overridePositions(f.node) {
			pos.Filename = name
			w.Locations.Overrides[report.OverrideKey(o.ThemeID, p)] = pos
		}

	case KindTemplate:
		c, pos, err := decodeTemplate(f, data)
		if err != nil {
			return err
		}
		pos.Filename = name
		w.Templates = append(w.Templates, c)
		w.Locations.Templates[report.TemplateKey(c)] = pos
	}

	w.Files = append(w.Files, File{Path: name, Kind: f.kind})
	w.Locations.Sources[name] = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	return nil
}

// Expand resolves include patterns below root, skipping excluded and
// gitignored files. Paths are slash separated, relative to root and sorted.
func Expand(root string, cfg Config) ([]string, Stats, error) {
	var stats Stats

	include := cfg.Include
	if len(include) == 0 {
		include = DefaultInclude
	}

	var gi *ignore.GitIgnore
	if !cfg.NoIgnore {
		gi = loadGitIgnore(root)
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, stats, fmt.Errorf("invalid include pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, stats, fmt.Errorf("expand %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			stats.FilesDiscovered++

			if shouldSkipFile(match, cfg.Exclude, gi) {
				stats.FilesSkipped++
				continue
			}
			files = append(files, match)
		}
	}

	sort.Strings(files)
	return files, stats, nil
}

// loadGitIgnore loads root/.gitignore. A missing file means no rules.
func loadGitIgnore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// shouldSkipFile applies exclude patterns, then .gitignore rules.
func shouldSkipFile(name string, exclude []string, gi *ignore.GitIgnore) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return gi != nil && gi.MatchesPath(name)
}

// Walk lists every directory below root that holds an included file. The
// watcher subscribes to these.
func Walk(root string, cfg Config) ([]string, error) {
	files, _, err := Expand(root, cfg)
	if err != nil {
		return nil, err
	}
	dirs := map[string]bool{root: true}
	for _, f := range files {
		dirs[filepath.Join(root, filepath.FromSlash(path.Dir(f)))] = true
	}
	out := make([]string, 0, len(dirs))
	for d := range dirs {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out, nil
}
