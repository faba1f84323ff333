package loader

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/report"
	"github.com/yacobolo/tokenforge/internal/token"
)

// Kind is the shape of a workspace file.
type Kind string

const (
	KindTokens   Kind = "tokens"
	KindDocument Kind = "document"
	KindTheme    Kind = "theme"
	KindTemplate Kind = "template"
)

// ErrUnrecognized is returned for files that match no known shape.
var ErrUnrecognized = errors.New("unrecognized file")

// classified is a file whose shape is known, with its parsed root node.
// Raw templates carry no node.
type classified struct {
	name string
	kind Kind
	node *yaml.Node
}

// templateExts are raw template files; the body is the whole file.
var templateExts = map[string]bool{".tmpl": true, ".tpl": true}

// Classify decides what a file holds. Raw .tmpl files are templates. JSON
// and YAML files are told apart by their root:
//   - a list, or an object with "tokens": tokens
//   - an object with "template": a custom template
//   - an object with "overrides": a theme
//   - an object with any section key: a design document
func Classify(name string, data []byte) (Kind, error) {
	c, err := classify(name, data)
	return c.kind, err
}

func classify(name string, data []byte) (classified, error) {
	if templateExts[path.Ext(name)] {
		return classified{name: name, kind: KindTemplate}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return classified{}, fmt.Errorf("parse: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return classified{}, fmt.Errorf("%w: empty", ErrUnrecognized)
		}
		root = root.Content[0]
	}

	c := classified{name: name, node: root}
	switch root.Kind {
	case yaml.SequenceNode:
		c.kind = KindTokens
		return c, nil
	case yaml.MappingNode:
	default:
		return classified{}, fmt.Errorf("%w: root is not a list or an object", ErrUnrecognized)
	}

	keys := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keys[root.Content[i].Value] = true
	}
	switch {
	case keys["tokens"]:
		c.kind = KindTokens
	case keys["template"]:
		c.kind = KindTemplate
	case keys["overrides"]:
		c.kind = KindTheme
	default:
		for _, s := range document.Sections {
			if keys[string(s)] {
				c.kind = KindDocument
				return c, nil
			}
		}
		return classified{}, fmt.Errorf("%w: no tokens, template, overrides or section key", ErrUnrecognized)
	}
	return c, nil
}

// decodeTemplate builds a template and the position where its body starts.
func decodeTemplate(c classified, data []byte) (export.CustomTemplate, report.IssuePos, error) {
	if c.node == nil {
		// android.xml.tmpl: name "android", extension "xml"
		base := strings.TrimSuffix(path.Base(c.name), path.Ext(c.name))
		ext := strings.TrimPrefix(path.Ext(base), ".")
		stem := strings.TrimSuffix(base, path.Ext(base))
		return export.CustomTemplate{
			ID:        stem,
			Name:      stem,
			Extension: ext,
			Template:  string(data),
		}, report.IssuePos{Line: 1, Column: 1}, nil
	}

	var t export.CustomTemplate
	if err := c.node.Decode(&t); err != nil {
		return export.CustomTemplate{}, report.IssuePos{}, fmt.Errorf("parse template: %w", err)
	}
	if t.Name == "" {
		return export.CustomTemplate{}, report.IssuePos{}, fmt.Errorf("template has no name")
	}

	var pos report.IssuePos
	if key, val := field(c.node, "template"); val != nil {
		switch {
		case val.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0:
			// block scalar: body starts on the next line, indented
			pos = report.IssuePos{Line: val.Line + 1, Column: key.Column + 2}
		case val.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0:
			pos = report.IssuePos{Line: val.Line, Column: val.Column + 1}
		default:
			pos = report.IssuePos{Line: val.Line, Column: val.Column}
		}
	}
	return t, pos, nil
}

// field returns the key and value nodes of a mapping entry.
func field(n *yaml.Node, name string) (*yaml.Node, *yaml.Node) {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == name {
			return n.Content[i], n.Content[i+1]
		}
	}
	return nil, nil
}

// tokenPositions maps each token path to the position worth pointing at:
// the ref value for aliases, the token object otherwise.
func tokenPositions(root *yaml.Node) map[token.Path]report.IssuePos {
	list := root
	if root.Kind == yaml.MappingNode {
		_, list = field(root, "tokens")
	}
	out := make(map[token.Path]report.IssuePos)
	if list == nil || list.Kind != yaml.SequenceNode {
		return out
	}
	for _, item := range list.Content {
		_, p := field(item, "path")
		if p == nil {
			continue
		}
		pos := report.IssuePos{Line: item.Line, Column: item.Column}
		if _, ref := field(item, "ref"); ref != nil {
			pos = report.IssuePos{Line: ref.Line, Column: ref.Column}
		}
		out[token.Path(p.Value)] = pos
	}
	return out
}

// overridePositions maps each overridden path to its key in the file.
func overridePositions(root *yaml.Node) map[token.Path]report.IssuePos {
	out := make(map[token.Path]report.IssuePos)
	_, overrides := field(root, "overrides")
	if overrides == nil || overrides.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(overrides.Content); i += 2 {
		key := overrides.Content[i]
		out[token.Path(key.Value)] = report.IssuePos{Line: key.Line, Column: key.Column}
	}
	return out
}
