package export

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/naming"
	"github.com/yacobolo/tokenforge/internal/resolve"
	"github.com/yacobolo/tokenforge/internal/template"
	"github.com/yacobolo/tokenforge/internal/token"
)

// CustomTemplate is a user authored exporter.
type CustomTemplate struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	Template  string `json:"template" yaml:"template"`
	Extension string `json:"extension" yaml:"extension" validate:"required"`
}

// Filename derives the output file name: "Android XML" + "xml" gives
// android-xml.xml.
func (c CustomTemplate) Filename() string {
	base := naming.Kebab(c.Name)
	if base == "" {
		base = "tokens"
	}
	ext := strings.TrimPrefix(c.Extension, ".")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// DecodeTemplate parses a JSON or YAML template definition.
func DecodeTemplate(data []byte) (CustomTemplate, error) {
	var c CustomTemplate
	if err := yaml.Unmarshal(data, &c); err != nil {
		return CustomTemplate{}, fmt.Errorf("parse template: %w", err)
	}
	if c.Name == "" {
		return CustomTemplate{}, fmt.Errorf("template has no name")
	}
	return c, nil
}

// Bundle is everything an exporter can draw on: the document for built-in
// generators, the resolved tokens for templates, and caller supplied fields
// such as timestamps.
type Bundle struct {
	Document *document.Document
	Resolved []resolve.Resolved
	Fields   map[string]string
}

// NewBundle resolves tokens through overrides and derives the document. The
// report lists tokens that did not resolve; they are left out of the bundle.
func NewBundle(tokens *token.Set, overrides resolve.Overrides) (Bundle, *resolve.Report) {
	report := resolve.ResolveAll(tokens, overrides)
	return Bundle{
		Document: document.FromResolved(report.Resolved),
		Resolved: report.Resolved,
	}, report
}

// TokenFields are the fields available inside a {{#tokens}} block, besides
// value.<field> for record values.
var TokenFields = []string{
	"path", "name", "type", "value", "ref", "status", "syncStatus",
	"section", "cssVariable", "scssVariable", "source", "overridden",
}

// tokenScope exposes one resolved token to the template engine.
type tokenScope struct {
	r       resolve.Resolved
	section document.Section
	key     []string
}

func newTokenScope(r resolve.Resolved) tokenScope {
	s, key := document.SectionFor(r.Token)
	return tokenScope{r: r, section: s, key: key}
}

func (s tokenScope) variable() string {
	return naming.Kebab(append([]string{s.section.Prefix()}, s.key...)...)
}

// Field implements template.Scope.
func (s tokenScope) Field(name string) (string, bool) {
	t := s.r.Token
	switch name {
	case "path":
		return string(t.Path), true
	case "name":
		return t.Label(), true
	case "type":
		return string(t.Type), true
	case "value":
		return s.r.Value().Text(), true
	case "ref":
		if t.IsAlias() {
			return token.FormatRef(t.Value.Ref()), true
		}
		return "", true
	case "status":
		return string(t.Status), true
	case "syncStatus":
		return string(t.SyncStatus), true
	case "section":
		return string(s.section), true
	case "cssVariable":
		return "--" + s.variable(), true
	case "scssVariable":
		return "$" + s.variable(), true
	case "source":
		return string(s.r.Resolution.Source()), true
	case "overridden":
		return strconv.FormatBool(s.r.Resolution.Overridden()), true
	}

	if sub, ok := strings.CutPrefix(name, "value."); ok {
		v, ok := s.r.Value().Field(sub)
		if !ok {
			return "", false
		}
		return v.Text(), true
	}
	return "", false
}

// topLevel builds the fields visible outside blocks. Caller fields win over
// document meta.
func (b Bundle) topLevel(c CustomTemplate) template.Fields {
	fields := template.Fields{}
	if b.Document != nil {
		b.Document.Meta.Each(func(key string, v token.Value) {
			if v.Record() == nil {
				fields[key] = v.Text()
			}
		})
	}
	if _, ok := fields["name"]; !ok {
		fields["name"] = c.Name
	}
	fields["extension"] = strings.TrimPrefix(c.Extension, ".")
	fields["tokenCount"] = strconv.Itoa(len(b.Resolved))
	for k, v := range b.Fields {
		fields[k] = v
	}
	return fields
}

// Data converts the bundle into template input.
func (b Bundle) Data(c CustomTemplate) template.Data {
	scopes := make([]template.Scope, len(b.Resolved))
	for i, r := range b.Resolved {
		scopes[i] = newTokenScope(r)
	}
	return template.Data{Fields: b.topLevel(c), Tokens: scopes}
}

// RenderCustom renders a user template. It never fails; problems come back as
// warnings and the output holds whatever could be rendered.
func RenderCustom(c CustomTemplate, b Bundle) (string, []template.Warning) {
	return template.Render(c.Template, b.Data(c))
}

// LintCustom reports unknown fields and structural problems without
// rendering.
func LintCustom(c CustomTemplate, b Bundle) []template.Warning {
	top := b.topLevel(c)
	names := make([]string, 0, len(top))
	for k := range top {
		names = append(names, k)
	}
	return template.Lint(c.Template, names, TokenFields)
}
