package tokenforge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yacobolo/tokenforge/internal/cssimport"
	"github.com/yacobolo/tokenforge/internal/naming"
)

// ImportConfig controls a CSS custom-property import.
type ImportConfig struct {
	Root     string // workspace to write into
	Source   string // stylesheet to read
	Name     string // tokens/<name>.json, the stylesheet base name when empty
	Prefix   string // variable prefix to strip
	SystemID string
	Force    bool // overwrite existing files
}

// ImportResult lists what an import wrote.
type ImportResult struct {
	Tokens   int
	Themes   int
	Files    []string
	Warnings []string
}

// ImportCSS converts the custom properties of a stylesheet into a token
// file plus one override file per theme selector or media query.
func ImportCSS(config ImportConfig) (*ImportResult, error) {
	f, err := os.Open(config.Source)
	if err != nil {
		return nil, fmt.Errorf("open stylesheet: %w", err)
	}
	defer f.Close()

	imported, err := cssimport.Import(f, cssimport.Options{Prefix: config.Prefix, SystemID: config.SystemID})
	if err != nil {
		return nil, err
	}
	if _, err := imported.Set(); err != nil {
		return nil, fmt.Errorf("import %s: %w", config.Source, err)
	}

	name := config.Name
	if name == "" {
		name = naming.Kebab(strings.TrimSuffix(filepath.Base(config.Source), filepath.Ext(config.Source)))
	}
	root := config.Root
	if root == "" {
		root = "."
	}

	result := &ImportResult{
		Tokens:   len(imported.Tokens),
		Themes:   len(imported.Themes),
		Warnings: imported.Warnings,
	}

	files := map[string]any{filepath.Join(root, "tokens", name+".json"): imported.Tokens}
	order := []string{filepath.Join(root, "tokens", name+".json")}
	for _, o := range imported.Themes {
		path := filepath.Join(root, "themes", naming.Kebab(o.ThemeID)+".json")
		files[path] = o
		order = append(order, path)
	}

	if !config.Force {
		for _, path := range order {
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	for _, path := range order {
		data, err := encodeIndented(files[path])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", path, err)
		}
		if err := writeFile(path, string(data)); err != nil {
			return nil, fmt.Errorf("write failed: %w", err)
		}
		result.Files = append(result.Files, path)
	}
	return result, nil
}

func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
