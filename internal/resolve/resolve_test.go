package resolve

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/yacobolo/tokenforge/internal/theme"
	"github.com/yacobolo/tokenforge/internal/token"
)

func literal(path, value string) token.Token {
	return token.Token{Path: token.Path(path), Type: token.TypeColor, Value: token.String(value)}
}

func alias(path, target string) token.Token {
	return token.Token{Path: token.Path(path), Type: token.TypeColor, Value: token.Reference(token.Path(target))}
}

func mustSet(t *testing.T, tokens ...token.Token) *token.Set {
	t.Helper()
	set, err := token.NewSet(tokens...)
	require.NoError(t, err)
	return set
}

func layer(pairs ...string) *theme.Layer {
	l := theme.NewLayer()
	for i := 0; i+1 < len(pairs); i += 2 {
		l.Set(token.Path(pairs[i]), token.String(pairs[i+1]))
	}
	return l
}

func TestResolve(t *testing.T) {
	set := mustSet(t,
		literal("color.primary", "#7c3aed"),
		alias("color.cta", "color.primary"),
		alias("color.button", "color.cta"),
		alias("color.broken", "color.nope"),
		alias("loop.a", "loop.b"),
		alias("loop.b", "loop.a"),
		alias("self", "self"),
	)

	tests := []struct {
		name      string
		path      token.Path
		overrides Overrides
		want      string
		wantChain []token.Path
		wantErr   error
	}{
		{
			name:      "literal",
			path:      "color.primary",
			want:      "#7c3aed",
			wantChain: []token.Path{"color.primary"},
		},
		{
			name:      "single alias",
			path:      "color.cta",
			want:      "#7c3aed",
			wantChain: []token.Path{"color.cta", "color.primary"},
		},
		{
			name:      "two hop alias",
			path:      "color.button",
			want:      "#7c3aed",
			wantChain: []token.Path{"color.button", "color.cta", "color.primary"},
		},
		{
			name:    "unknown root",
			path:    "color.missing",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "unknown target",
			path:    "color.broken",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "two node cycle",
			path:    "loop.a",
			wantErr: ErrCyclicReference,
		},
		{
			name:    "self reference",
			path:    "self",
			wantErr: ErrCyclicReference,
		},
		{
			name:      "override at root",
			path:      "color.primary",
			overrides: layer("color.primary", "#000"),
			want:      "#000",
			wantChain: []token.Path{"color.primary"},
		},
		{
			name:      "override through chain",
			path:      "color.button",
			overrides: layer("color.primary", "#000"),
			want:      "#000",
			wantChain: []token.Path{"color.button", "color.cta", "color.primary"},
		},
		{
			name:      "override mid chain",
			path:      "color.button",
			overrides: layer("color.cta", "#111"),
			want:      "#111",
			wantChain: []token.Path{"color.button", "color.cta"},
		},
		{
			name:      "override breaks a cycle",
			path:      "loop.a",
			overrides: layer("loop.b", "red"),
			want:      "red",
			wantChain: []token.Path{"loop.a", "loop.b"},
		},
		{
			name:      "override repairs a broken target",
			path:      "color.broken",
			overrides: layer("color.nope", "blue"),
			want:      "blue",
			wantChain: []token.Path{"color.broken", "color.nope"},
		},
		{
			name:      "orphan override is inert",
			path:      "color.cta",
			overrides: layer("colr.primary", "#000"),
			want:      "#7c3aed",
			wantChain: []token.Path{"color.cta", "color.primary"},
		},
		{
			name:      "nil layer behaves like none",
			path:      "color.cta",
			overrides: (*theme.Layer)(nil),
			want:      "#7c3aed",
			wantChain: []token.Path{"color.cta", "color.primary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.path, set, tt.overrides)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, res.Value.IsNull(), "failed resolution must not carry a value")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Value.Text())
			assert.Equal(t, tt.wantChain, res.Chain)
		})
	}
}

func TestResolve_ErrorDetails(t *testing.T) {
	set := mustSet(t,
		alias("a", "b"),
		alias("b", "c"),
		alias("c", "a"),
		alias("x", "y"),
	)

	_, err := Resolve("a", set, nil)
	var cyc *CyclicReferenceError
	require.True(t, errors.As(err, &cyc))
	assert.Equal(t, []token.Path{"a", "b", "c", "a"}, cyc.Cycle)
	assert.Equal(t, "cyclic reference: a -> b -> c -> a", err.Error())

	_, err = Resolve("x", set, nil)
	var unk *UnknownReferenceError
	require.True(t, errors.As(err, &unk))
	assert.Equal(t, token.Path("y"), unk.Path)
	assert.Equal(t, []token.Path{"x"}, unk.Via)
	assert.Equal(t, `unknown reference "y" (via x)`, err.Error())
}

func TestResolve_LongChain(t *testing.T) {
	const depth = 10000
	tokens := []token.Token{literal("n0", "end")}
	for i := 1; i <= depth; i++ {
		tokens = append(tokens, alias(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i-1)))
	}
	set := mustSet(t, tokens...)

	v, err := Value(token.Path(fmt.Sprintf("n%d", depth)), set, nil)
	require.NoError(t, err)
	assert.Equal(t, "end", v.Text())
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	set := mustSet(t, literal("a", "1"), alias("b", "a"))
	over := layer("a", "2")

	before := set.Tokens()
	_, err := Resolve("b", set, over)
	require.NoError(t, err)

	assert.Equal(t, before, set.Tokens())
	assert.Equal(t, 1, over.Len())
}

func TestResolveAll(t *testing.T) {
	set := mustSet(t,
		literal("color.primary", "#fff"),
		alias("color.cta", "color.primary"),
		alias("color.ghost", "color.gone"),
		alias("loop.a", "loop.b"),
		alias("loop.b", "loop.a"),
	)

	report := ResolveAll(set, nil)
	assert.False(t, report.OK())
	require.Len(t, report.Resolved, 2)
	require.Len(t, report.Failures, 3)

	assert.Equal(t, token.Path("color.primary"), report.Resolved[0].Token.Path)
	assert.Equal(t, token.Path("color.cta"), report.Resolved[1].Token.Path)
	assert.Equal(t, "#fff", report.Resolved[1].Value().Text())

	assert.True(t, report.Failures[0].Unknown())
	assert.True(t, report.Failures[1].Cyclic())
	assert.True(t, report.Failures[2].Cyclic())
	assert.Len(t, report.Errors(), 3)

	got, ok := report.Lookup("color.cta")
	require.True(t, ok)
	assert.Equal(t, []token.Path{"color.cta", "color.primary"}, got.Resolution.Chain)
}

func TestDependents(t *testing.T) {
	set := mustSet(t,
		literal("color.primary", "#fff"),
		alias("color.cta", "color.primary"),
		alias("color.link", "color.primary"),
		alias("color.hover", "color.cta"),
	)

	deps := Dependents(set, "color.primary")
	require.Len(t, deps, 2)
	assert.Equal(t, token.Path("color.cta"), deps[0].Path)
	assert.Equal(t, token.Path("color.link"), deps[1].Path)
}

// === Property tests ===

func TestProperty_LiteralResolvesToItself(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		var tokens []token.Token
		for i := 0; i < n; i++ {
			value := rapid.StringMatching(`#[0-9a-f]{6}`).Draw(t, "value")
			tokens = append(tokens, literal(fmt.Sprintf("t%d", i), value))
		}
		set, err := token.NewSet(tokens...)
		require.NoError(t, err)

		for _, tok := range tokens {
			v, err := Value(tok.Path, set, nil)
			require.NoError(t, err)
			require.True(t, v.Equal(tok.Value))
		}
	})
}

func TestProperty_ChainResolvesToTail(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(1, 50).Draw(t, "length")
		tail := rapid.StringMatching(`[0-9]{1,3}px`).Draw(t, "tail")

		tokens := []token.Token{literal("p0", tail)}
		for i := 1; i < length; i++ {
			tokens = append(tokens, alias(fmt.Sprintf("p%d", i), fmt.Sprintf("p%d", i-1)))
		}
		set, err := token.NewSet(tokens...)
		require.NoError(t, err)

		for _, tok := range tokens {
			v, err := Value(tok.Path, set, nil)
			require.NoError(t, err)
			require.Equal(t, tail, v.Text())
		}
	})
}

func TestProperty_CyclesAlwaysDetected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 20).Draw(t, "size")
		lead := rapid.IntRange(0, 10).Draw(t, "lead")

		// c0 -> c1 -> ... -> c(size-1) -> c0, with a lead-in chain into c0
		var tokens []token.Token
		for i := 0; i < size; i++ {
			tokens = append(tokens, alias(fmt.Sprintf("c%d", i), fmt.Sprintf("c%d", (i+1)%size)))
		}
		prev := "c0"
		for i := 0; i < lead; i++ {
			name := fmt.Sprintf("l%d", i)
			tokens = append(tokens, alias(name, prev))
			prev = name
		}
		set, err := token.NewSet(tokens...)
		require.NoError(t, err)

		for _, tok := range tokens {
			res, err := Resolve(tok.Path, set, nil)
			require.ErrorIs(t, err, ErrCyclicReference)
			require.True(t, res.Value.IsNull())

			var cyc *CyclicReferenceError
			require.True(t, errors.As(err, &cyc))
			require.Len(t, cyc.Cycle, size+1)
			require.Equal(t, cyc.Cycle[0], cyc.Cycle[len(cyc.Cycle)-1])
		}
	})
}

func TestProperty_OverrideAppliesThroughChain(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(1, 30).Draw(t, "length")
		at := rapid.IntRange(0, length-1).Draw(t, "at")

		tokens := []token.Token{literal("p0", "base")}
		for i := 1; i < length; i++ {
			tokens = append(tokens, alias(fmt.Sprintf("p%d", i), fmt.Sprintf("p%d", i-1)))
		}
		set, err := token.NewSet(tokens...)
		require.NoError(t, err)
		over := layer(fmt.Sprintf("p%d", at), "themed")

		for i := range tokens {
			v, err := Value(token.Path(fmt.Sprintf("p%d", i)), set, over)
			require.NoError(t, err)
			if i >= at {
				require.Equal(t, "themed", v.Text())
			} else {
				require.Equal(t, "base", v.Text())
			}
		}
	})
}
