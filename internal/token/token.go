// Package token defines design tokens: typed values addressable by a unique
// path, optionally aliasing another token.
package token

import (
	"strings"
)

// Path uniquely identifies a token within a set, e.g. "color.primary".
type Path string

// Segments splits the path on dots.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

func (p Path) String() string { return string(p) }

// ParseRef extracts the target of a wrapped alias such as "{color.primary}".
// It reports false when s is not wrapped or the target is empty.
func ParseRef(s string) (Path, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return "", false
	}
	target := strings.TrimSpace(s[1 : len(s)-1])
	if target == "" || strings.ContainsAny(target, "{}") {
		return "", false
	}
	return Path(target), true
}

// FormatRef wraps a path in alias delimiters.
func FormatRef(p Path) string { return "{" + string(p) + "}" }

// Type is the kind of design value a token holds. It drives rendering only;
// resolution ignores it.
type Type string

// Token types.
const (
	TypeColor        Type = "color"
	TypeTypography   Type = "typography"
	TypeSpacing      Type = "spacing"
	TypeDimension    Type = "dimension"
	TypeBorder       Type = "border"
	TypeBorderRadius Type = "borderRadius"
	TypeShadow       Type = "shadow"
	TypeOther        Type = "other"
)

// Types lists every known token type.
var Types = []Type{
	TypeColor, TypeTypography, TypeSpacing, TypeDimension,
	TypeBorder, TypeBorderRadius, TypeShadow, TypeOther,
}

// ParseType maps a type name to a Type. Unknown names become TypeOther.
func ParseType(s string) Type {
	for _, t := range Types {
		if string(t) == s {
			return t
		}
	}
	return TypeOther
}

// Status is the lifecycle marker of a token.
type Status string

// Token statuses. The empty status predates lifecycle tracking.
const (
	StatusNone       Status = ""
	StatusDraft      Status = "draft"
	StatusPublished  Status = "published"
	StatusDeprecated Status = "deprecated"
)

// SyncStatus marks divergence from a remote source such as Figma.
type SyncStatus string

// SyncChanged means the token differs from its remote copy.
const SyncChanged SyncStatus = "changed"

// Token is the unit of design data.
type Token struct {
	Path       Path
	Name       string
	Type       Type
	Value      Value // literal payload, or a Reference for aliases
	Status     Status
	SyncStatus SyncStatus
}

// IsAlias reports whether the token points at another token.
func (t Token) IsAlias() bool { return t.Value.IsReference() }

// Visible reports whether the token belongs in published output.
func (t Token) Visible() bool {
	return t.Status == StatusNone || t.Status == StatusPublished
}

// Label returns the human name, falling back to the path.
func (t Token) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return string(t.Path)
}
