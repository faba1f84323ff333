// Package theme models brand and mode override layers. A layer is a sparse
// path to value mapping that the resolver consults at every alias hop. Layers
// are never merged into the base token set.
package theme

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yacobolo/tokenforge/internal/token"
)

// Mode describes what a layer is for.
type Mode string

// Common modes. Any other string is accepted.
const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
	ModeBrand Mode = "brand"
)

// Layer is a sparse, insertion-ordered mapping from token path to override
// value. The zero Layer is empty and usable.
type Layer struct {
	values *token.Record
}

// NewLayer returns an empty layer.
func NewLayer() *Layer {
	return &Layer{values: token.NewRecord()}
}

// Set overrides path with v.
func (l *Layer) Set(path token.Path, v token.Value) {
	if l.values == nil {
		l.values = token.NewRecord()
	}
	l.values.Set(string(path), v)
}

// Lookup returns the override for path.
func (l *Layer) Lookup(path token.Path) (token.Value, bool) {
	if l == nil {
		return token.Value{}, false
	}
	return l.values.Get(string(path))
}

// Len returns the number of overridden paths.
func (l *Layer) Len() int {
	if l == nil {
		return 0
	}
	return l.values.Len()
}

// Paths returns the overridden paths in insertion order.
func (l *Layer) Paths() []token.Path {
	if l == nil {
		return nil
	}
	keys := l.values.Keys()
	paths := make([]token.Path, len(keys))
	for i, k := range keys {
		paths[i] = token.Path(k)
	}
	return paths
}

// Orphans returns the overridden paths that do not exist in base. They are
// legal, since the base may gain those paths later, but they do nothing today.
func (l *Layer) Orphans(base *token.Set) []token.Path {
	var orphans []token.Path
	for _, p := range l.Paths() {
		if _, ok := base.Lookup(p); !ok {
			orphans = append(orphans, p)
		}
	}
	return orphans
}

// Override is a persisted theme: a named layer scoped to one design system.
type Override struct {
	ID       string
	SystemID string
	ThemeID  string
	Mode     Mode
	Layer    *Layer
}

// Lookup makes an Override usable directly as a resolver layer.
func (o *Override) Lookup(path token.Path) (token.Value, bool) {
	if o == nil {
		return token.Value{}, false
	}
	return o.Layer.Lookup(path)
}

type wireOverride struct {
	ID        string      `json:"id,omitempty"`
	SystemID  string      `json:"systemId,omitempty"`
	ThemeID   string      `json:"themeId"`
	Mode      string      `json:"mode"`
	Overrides token.Value `json:"overrides"`
}

// MarshalJSON encodes { themeId, mode, overrides } keeping override order.
func (o *Override) MarshalJSON() ([]byte, error) {
	values := token.NewRecord()
	if o.Layer != nil && o.Layer.values != nil {
		values = o.Layer.values
	}
	w := wireOverride{
		ID:        o.ID,
		SystemID:  o.SystemID,
		ThemeID:   o.ThemeID,
		Mode:      string(o.Mode),
		Overrides: token.RecordOf(values),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes { themeId, mode, overrides }.
func (o *Override) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*o = *decoded
	return nil
}

// Decode parses a JSON or YAML override document.
func Decode(data []byte) (*Override, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse override: %w", err)
	}
	return DecodeNode(&node)
}

// DecodeNode builds an Override from a parsed mapping node.
func DecodeNode(n *yaml.Node) (*Override, error) {
	v, err := token.DecodeNode(n)
	if err != nil {
		return nil, fmt.Errorf("parse override: %w", err)
	}
	rec := v.Record()
	if rec == nil {
		return nil, fmt.Errorf("override must be an object")
	}

	o := &Override{Layer: NewLayer()}
	if id, ok := rec.Get("id"); ok {
		o.ID = id.Text()
	}
	if sys, ok := rec.Get("systemId"); ok {
		o.SystemID = sys.Text()
	}
	if themeID, ok := rec.Get("themeId"); ok {
		o.ThemeID = themeID.Text()
	}
	if mode, ok := rec.Get("mode"); ok {
		o.Mode = Mode(mode.Text())
	}

	overrides, ok := rec.Get("overrides")
	if !ok {
		return nil, fmt.Errorf("override %q has no overrides field", o.ThemeID)
	}
	overrides.Record().Each(func(path string, v token.Value) {
		o.Layer.Set(token.Path(path), v)
	})
	return o, nil
}
