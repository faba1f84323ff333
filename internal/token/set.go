package token

import (
	"errors"
	"fmt"
)

// ErrDuplicatePath is returned when two tokens share a path.
var ErrDuplicatePath = errors.New("duplicate token path")

// Set is an insertion-ordered collection of tokens with unique paths.
// Consumers treat a Set as read-only once built.
type Set struct {
	tokens []Token
	index  map[Path]int
}

// NewSet builds a set from tokens, rejecting duplicate paths.
func NewSet(tokens ...Token) (*Set, error) {
	s := &Set{index: make(map[Path]int, len(tokens))}
	for _, t := range tokens {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a token.
func (s *Set) Add(t Token) error {
	if t.Path == "" {
		return ErrMissingPath
	}
	if s.index == nil {
		s.index = make(map[Path]int)
	}
	if _, exists := s.index[t.Path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, t.Path)
	}
	s.index[t.Path] = len(s.tokens)
	s.tokens = append(s.tokens, t)
	return nil
}

// Lookup returns the token stored at path.
func (s *Set) Lookup(path Path) (Token, bool) {
	if s == nil {
		return Token{}, false
	}
	i, ok := s.index[path]
	if !ok {
		return Token{}, false
	}
	return s.tokens[i], true
}

// Len returns the number of tokens.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tokens)
}

// Tokens returns a copy of the tokens in insertion order.
func (s *Set) Tokens() []Token {
	if s == nil {
		return nil
	}
	return append([]Token(nil), s.tokens...)
}

// Paths returns every path in insertion order.
func (s *Set) Paths() []Path {
	if s == nil {
		return nil
	}
	paths := make([]Path, len(s.tokens))
	for i, t := range s.tokens {
		paths[i] = t.Path
	}
	return paths
}

// Filter returns a new set holding the tokens for which keep returns true.
func (s *Set) Filter(keep func(Token) bool) *Set {
	out := &Set{index: make(map[Path]int)}
	if s == nil {
		return out
	}
	for _, t := range s.tokens {
		if keep(t) {
			out.index[t.Path] = len(out.tokens)
			out.tokens = append(out.tokens, t)
		}
	}
	return out
}

// Published returns the tokens visible to public consumers.
// Aliases into hidden tokens still resolve when callers use the full set.
func (s *Set) Published() *Set {
	return s.Filter(Token.Visible)
}
