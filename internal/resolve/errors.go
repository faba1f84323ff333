package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yacobolo/tokenforge/internal/token"
)

// Sentinels for errors.Is checks.
var (
	ErrUnknownReference = errors.New("unknown reference")
	ErrCyclicReference  = errors.New("cyclic reference")
)

// UnknownReferenceError reports a path that is absent from the token set.
type UnknownReferenceError struct {
	Path token.Path   // the missing path
	Via  []token.Path // aliases followed before reaching it, starting at the root
}

func (e *UnknownReferenceError) Error() string {
	if len(e.Via) == 0 {
		return fmt.Sprintf("unknown reference %q", e.Path)
	}
	return fmt.Sprintf("unknown reference %q (via %s)", e.Path, joinPaths(e.Via))
}

// Is matches ErrUnknownReference.
func (e *UnknownReferenceError) Is(target error) bool { return target == ErrUnknownReference }

// CyclicReferenceError reports an alias chain that revisits a path.
type CyclicReferenceError struct {
	Cycle []token.Path // the loop, first and last element equal
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("cyclic reference: %s", joinPaths(e.Cycle))
}

// Is matches ErrCyclicReference.
func (e *CyclicReferenceError) Is(target error) bool { return target == ErrCyclicReference }

func joinPaths(paths []token.Path) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = string(p)
	}
	return strings.Join(parts, " -> ")
}
