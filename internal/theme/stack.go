package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yacobolo/tokenforge/internal/token"
)

// ErrUnknownTheme is returned by Select for a theme id with no override.
var ErrUnknownTheme = errors.New("unknown theme")

// Source is anything that can answer an override lookup.
type Source interface {
	Lookup(path token.Path) (token.Value, bool)
}

// Stack composes layers. The first layer holding a path wins.
type Stack []Source

// Lookup returns the first override found for path.
func (s Stack) Lookup(path token.Path) (token.Value, bool) {
	for _, src := range s {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(path); ok {
			return v, true
		}
	}
	return token.Value{}, false
}

// Find returns the override with the given theme id.
func Find(overrides []*Override, themeID string) (*Override, bool) {
	for _, o := range overrides {
		if o.ThemeID == themeID {
			return o, true
		}
	}
	return nil, false
}

// ParseIDs splits a comma-separated theme list such as "brand-b,dark".
// Blank entries are dropped.
func ParseIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Select stacks the overrides named by ids. The first id wins where layers
// overlap.
func Select(overrides []*Override, ids []string) (Stack, error) {
	stack := make(Stack, 0, len(ids))
	for _, id := range ids {
		o, ok := Find(overrides, id)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownTheme, id)
		}
		stack = append(stack, o)
	}
	return stack, nil
}
