package resolve

import (
	"errors"

	"github.com/yacobolo/tokenforge/internal/token"
)

// Resolved pairs a token with its effective value.
type Resolved struct {
	Token      token.Token
	Resolution Resolution
}

// Value returns the effective value.
func (r Resolved) Value() token.Value { return r.Resolution.Value }

// Failure records a token that could not be resolved.
type Failure struct {
	Token token.Token
	Err   error
}

// Unknown reports whether the failure is a missing reference.
func (f Failure) Unknown() bool { return errors.Is(f.Err, ErrUnknownReference) }

// Cyclic reports whether the failure is a reference loop.
func (f Failure) Cyclic() bool { return errors.Is(f.Err, ErrCyclicReference) }

// Report is the outcome of resolving a whole token set.
type Report struct {
	Resolved []Resolved // in token set order
	Failures []Failure  // in token set order
}

// OK reports whether every token resolved.
func (r *Report) OK() bool { return len(r.Failures) == 0 }

// Lookup returns the resolution of path, if it succeeded.
func (r *Report) Lookup(path token.Path) (Resolved, bool) {
	for _, res := range r.Resolved {
		if res.Token.Path == path {
			return res, true
		}
	}
	return Resolved{}, false
}

// Errors returns the failure errors in order.
func (r *Report) Errors() []error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f.Err
	}
	return errs
}

// ResolveAll resolves every token of the set. A broken token is recorded and
// the walk continues, so one pass reports every problem.
func ResolveAll(tokens *token.Set, overrides Overrides) *Report {
	report := &Report{}
	for _, tok := range tokens.Tokens() {
		res, err := Resolve(tok.Path, tokens, overrides)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Token: tok, Err: err})
			continue
		}
		report.Resolved = append(report.Resolved, Resolved{Token: tok, Resolution: res})
	}
	return report
}

// Dependents returns the aliases in tokens that point directly at path.
func Dependents(tokens *token.Set, path token.Path) []token.Token {
	var out []token.Token
	for _, tok := range tokens.Tokens() {
		if tok.IsAlias() && tok.Value.Ref() == path {
			out = append(out, tok)
		}
	}
	return out
}
