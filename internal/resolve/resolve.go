// Package resolve follows alias chains to concrete token values.
//
// Resolution is a pure function of its arguments: the token set, the path and
// an optional override layer. The override layer is consulted before every
// lookup, not just for the requested path, so a theme can redirect a single
// link of a chain:
//
//	color.cta -> color.brand -> color.primary
//
// With an override for color.brand, color.cta resolves to the override while
// color.primary keeps its base value.
package resolve

import (
	"github.com/yacobolo/tokenforge/internal/token"
)

// Overrides is a sparse override layer. A nil Overrides means none.
type Overrides interface {
	Lookup(path token.Path) (token.Value, bool)
}

// Resolution is the outcome of resolving one path.
type Resolution struct {
	Value token.Value
	// Chain lists the paths visited, starting with the requested one.
	Chain []token.Path
	// OverriddenAt is the path whose override supplied Value, or "".
	OverriddenAt token.Path
}

// Overridden reports whether an override layer supplied the value.
func (r Resolution) Overridden() bool { return r.OverriddenAt != "" }

// Source returns the path that supplied the final value.
func (r Resolution) Source() token.Path {
	if len(r.Chain) == 0 {
		return ""
	}
	return r.Chain[len(r.Chain)-1]
}

// Resolve returns the effective value of path. Errors are returned as values:
// *UnknownReferenceError when a path is missing from tokens, and
// *CyclicReferenceError when an alias chain loops. Chains of any length are
// followed; only a revisit stops the walk.
func Resolve(path token.Path, tokens *token.Set, overrides Overrides) (Resolution, error) {
	var (
		chain   []token.Path
		visited = make(map[token.Path]int)
		current = path
	)

	for {
		chain = append(chain, current)

		if overrides != nil {
			if v, ok := overrides.Lookup(current); ok {
				return Resolution{Value: v, Chain: chain, OverriddenAt: current}, nil
			}
		}

		if first, seen := visited[current]; seen {
			cycle := append([]token.Path(nil), chain[first:]...)
			return Resolution{Chain: chain}, &CyclicReferenceError{Cycle: cycle}
		}
		visited[current] = len(chain) - 1

		tok, ok := tokens.Lookup(current)
		if !ok {
			via := append([]token.Path(nil), chain[:len(chain)-1]...)
			return Resolution{Chain: chain}, &UnknownReferenceError{Path: current, Via: via}
		}

		if !tok.IsAlias() {
			return Resolution{Value: tok.Value, Chain: chain}, nil
		}
		current = tok.Value.Ref()
	}
}

// Value is Resolve without the chain bookkeeping.
func Value(path token.Path, tokens *token.Set, overrides Overrides) (token.Value, error) {
	res, err := Resolve(path, tokens, overrides)
	if err != nil {
		return token.Value{}, err
	}
	return res.Value, nil
}
