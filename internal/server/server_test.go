package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/store"
	"github.com/yacobolo/tokenforge/internal/theme"
	"github.com/yacobolo/tokenforge/internal/token"
)

const testKey = "test-key"

type fakeGenerator struct {
	doc   string
	err   error
	calls int
}

func (g *fakeGenerator) Generate(_ context.Context, brief string) (*document.Document, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return document.Decode([]byte(g.doc))
}

type fixture struct {
	srv    *httptest.Server
	store  *store.Store
	gen    *fakeGenerator
	system store.System
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sys, err := st.CreateSystem(ctx, "acme", "Acme design language")
	require.NoError(t, err)

	tokens, err := token.NewSet(
		token.Token{Path: "color.primary", Name: "Primary", Type: token.TypeColor, Value: token.String("#7c3aed"), Status: token.StatusPublished},
		token.Token{Path: "color.cta", Name: "CTA", Type: token.TypeColor, Value: token.Reference("color.primary")},
		token.Token{Path: "color.old", Name: "Old", Type: token.TypeColor, Value: token.String("#999999"), Status: token.StatusDeprecated},
		token.Token{Path: "color.broken", Name: "Broken", Type: token.TypeColor, Value: token.Reference("color.gone")},
		token.Token{Path: "spacing.md", Name: "Medium", Type: token.TypeSpacing, Value: token.String("16px"), Status: token.StatusDraft},
	)
	require.NoError(t, err)
	require.NoError(t, st.ReplaceTokens(ctx, sys.ID, tokens))

	dark := &theme.Override{SystemID: sys.ID, ThemeID: "dark", Mode: theme.ModeDark, Layer: theme.NewLayer()}
	dark.Layer.Set("color.primary", token.String("#a78bfa"))
	require.NoError(t, st.SaveTheme(ctx, dark))

	gen := &fakeGenerator{doc: `{"name":"Calm","description":"Calm fintech","colors":{"primary":"#0ea5e9"},"spacing":{"md":"16px"}}`}
	s, err := New(st, gen, Config{APIKey: testKey, CacheSize: 8}, zaptest.NewLogger(t))
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, store: st, gen: gen, system: sys}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set(APIKeyHeader, testKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(nil, nil, Config{}, nil)
	assert.Error(t, err)
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		key  string
	}{
		{name: "missing key", key: ""},
		{name: "wrong key", key: "nope"},
		{name: "prefix of key", key: "test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/v1/targets", nil)
			require.NoError(t, err)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			resp, err := f.srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			e := decode[Error](t, resp)
			assert.Equal(t, CodeUnauthenticated, e.Code)
		})
	}
}

func TestTargets(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/v1/targets", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	targets := decode[[]targetInfo](t, resp)
	assert.Len(t, targets, len(export.Targets()))
	assert.Equal(t, "json", targets[0].ID)
}

func TestTokens(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/v1/tokens?system=acme", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[tokensResponse](t, resp)

	assert.Equal(t, f.system.ID, body.System)
	require.Len(t, body.Tokens, 4)
	cta := body.Tokens[1]
	assert.Equal(t, "color.cta", cta.Path)
	assert.Equal(t, "#7c3aed", cta.Value.Text())
	assert.Equal(t, "{color.primary}", cta.Ref)
	assert.Equal(t, "color.primary", cta.Source)
	assert.False(t, cta.Overridden)

	require.Len(t, body.Failures, 1)
	assert.Equal(t, "color.broken", body.Failures[0].Path)
	assert.Equal(t, "unknown_reference", body.Failures[0].Code)
}

func TestTokens_Theme(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/v1/tokens?system="+f.system.ID+"&theme=dark", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[tokensResponse](t, resp)

	assert.Equal(t, "dark", body.Theme)
	assert.Equal(t, "#a78bfa", body.Tokens[0].Value.Text())
	assert.True(t, body.Tokens[0].Overridden)
	assert.Equal(t, "#a78bfa", body.Tokens[1].Value.Text(), "override applies through the alias")
	assert.True(t, body.Tokens[1].Overridden)
}

func TestTokens_StackedThemes(t *testing.T) {
	f := newFixture(t)

	brand := &theme.Override{SystemID: f.system.ID, ThemeID: "brand-b", Layer: theme.NewLayer()}
	brand.Layer.Set("color.primary", token.String("#e11d48"))
	require.NoError(t, f.store.SaveTheme(context.Background(), brand))

	tests := []struct {
		themes string
		want   string
	}{
		{themes: "brand-b,dark", want: "#e11d48"},
		{themes: "dark,brand-b", want: "#a78bfa"},
	}
	for _, tt := range tests {
		t.Run(tt.themes, func(t *testing.T) {
			resp := f.do(t, http.MethodGet, "/v1/tokens?system=acme&theme="+tt.themes, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			body := decode[tokensResponse](t, resp)
			assert.Equal(t, tt.want, body.Tokens[0].Value.Text())
			assert.Equal(t, tt.want, body.Tokens[1].Value.Text())
		})
	}

	resp := f.do(t, http.MethodPost, "/v1/export", `{"system":"acme","target":"scss","theme":"brand-b,dark"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decode[rendered](t, resp).Content, "$color-primary: #e11d48;\n")

	missing := f.do(t, http.MethodGet, "/v1/tokens?system=acme&theme=brand-b,sepia", "")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestTokens_StatusFilter(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		status string
		want   []string
	}{
		{status: "published", want: []string{"color.primary", "color.cta"}},
		{status: "draft", want: []string{"spacing.md"}},
		{status: "deprecated", want: []string{"color.old"}},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			resp := f.do(t, http.MethodGet, "/v1/tokens?system=acme&status="+tt.status, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			body := decode[tokensResponse](t, resp)

			var paths []string
			for _, tok := range body.Tokens {
				paths = append(paths, tok.Path)
			}
			assert.Equal(t, tt.want, paths)
		})
	}
}

func TestTokens_Format(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/v1/tokens?system=acme&format=css", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get(CacheHeader))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "tokens.css")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "  --color-primary: #7c3aed;\n")
	assert.Contains(t, string(data), "  --color-cta: #7c3aed;\n")
	assert.NotContains(t, string(data), "color-broken")

	again := f.do(t, http.MethodGet, "/v1/tokens?system=acme&format=css", "")
	assert.Equal(t, "hit", again.Header.Get(CacheHeader))
}

func TestTokens_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		query  string
		status int
		code   ErrorCode
	}{
		{name: "missing system", query: "", status: http.StatusBadRequest, code: CodeInvalidArgument},
		{name: "bad status", query: "system=acme&status=gone", status: http.StatusBadRequest, code: CodeInvalidArgument},
		{name: "unknown format", query: "system=acme&format=pdf", status: http.StatusBadRequest, code: CodeInvalidArgument},
		{name: "unknown system", query: "system=zen", status: http.StatusNotFound, code: CodeNotFound},
		{name: "unknown theme", query: "system=acme&theme=sepia", status: http.StatusNotFound, code: CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodGet, "/v1/tokens?"+tt.query, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			e := decode[Error](t, resp)
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/v1/export", `{"system":"acme","target":"scss","theme":"dark"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get(CacheHeader))
	out := decode[rendered](t, resp)
	assert.Equal(t, "scss", out.Target)
	assert.Equal(t, "_tokens.scss", out.Filename)
	assert.Contains(t, out.Content, "$color-primary: #a78bfa;\n")

	again := f.do(t, http.MethodPost, "/v1/export", `{"system":"acme","target":"scss","theme":"dark"}`)
	assert.Equal(t, "hit", again.Header.Get(CacheHeader))

	light := f.do(t, http.MethodPost, "/v1/export", `{"system":"acme","target":"scss"}`)
	assert.Equal(t, "miss", light.Header.Get(CacheHeader), "a different theme is a different key")
}

func TestExport_ReportsBrokenReferences(t *testing.T) {
	f := newFixture(t)

	tokens, err := token.NewSet(
		token.Token{Path: "color.primary", Type: token.TypeColor, Value: token.String("#7c3aed")},
		token.Token{Path: "color.broken", Type: token.TypeColor, Value: token.Reference("color.gone")},
		token.Token{Path: "color.a", Type: token.TypeColor, Value: token.Reference("color.b")},
		token.Token{Path: "color.b", Type: token.TypeColor, Value: token.Reference("color.a")},
	)
	require.NoError(t, err)
	require.NoError(t, f.store.ReplaceTokens(context.Background(), f.system.ID, tokens))

	want := []failure{
		{Path: "color.broken", Code: "unknown_reference"},
		{Path: "color.a", Code: "cyclic_reference"},
		{Path: "color.b", Code: "cyclic_reference"},
	}
	strip := func(in []failure) []failure {
		out := make([]failure, len(in))
		for i, fl := range in {
			assert.NotEmpty(t, fl.Message)
			out[i] = failure{Path: fl.Path, Code: fl.Code}
		}
		return out
	}

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "export", path: "/v1/export", body: `{"system":"acme","target":"css"}`},
		{name: "render", path: "/v1/render", body: `{"system":"acme","template":{"name":"list","extension":"txt","template":"{{#tokens}}{{path}}\n{{/tokens}}"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			out := decode[rendered](t, resp)
			assert.NotContains(t, out.Content, "color.broken")
			assert.NotContains(t, out.Content, "color-broken")
			assert.Equal(t, want, strip(out.Failures))

			cached := f.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, "hit", cached.Header.Get(CacheHeader))
			assert.Len(t, decode[rendered](t, cached).Failures, 3)
		})
	}
}

func TestExport_CacheInvalidatedByEdit(t *testing.T) {
	f := newFixture(t)

	first := f.do(t, http.MethodPost, "/v1/export", `{"system":"acme","target":"css"}`)
	require.Equal(t, http.StatusOK, first.StatusCode)

	tokens, err := token.NewSet(token.Token{Path: "color.primary", Type: token.TypeColor, Value: token.String("#000000")})
	require.NoError(t, err)
	require.NoError(t, f.store.ReplaceTokens(context.Background(), f.system.ID, tokens))

	second := f.do(t, http.MethodPost, "/v1/export", `{"system":"acme","target":"css"}`)
	assert.Equal(t, "miss", second.Header.Get(CacheHeader))
	assert.Contains(t, decode[rendered](t, second).Content, "--color-primary: #000000;")
}

func TestExport_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "malformed", body: `{`, status: http.StatusBadRequest},
		{name: "missing target", body: `{"system":"acme"}`, status: http.StatusBadRequest},
		{name: "unknown target", body: `{"system":"acme","target":"pdf"}`, status: http.StatusBadRequest},
		{name: "unknown system", body: `{"system":"zen","target":"css"}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/v1/export", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stored := &export.CustomTemplate{
		Name:      "Android XML",
		Template:  "<resources>\n{{#tokens}}  <color name=\"{{path}}\">{{value}}</color>\n{{/tokens}}</resources>",
		Extension: "xml",
	}
	require.NoError(t, f.store.SaveTemplate(ctx, f.system.ID, stored))

	resp := f.do(t, http.MethodPost, "/v1/render", `{"system":"acme","templateId":"`+stored.ID+`","theme":"dark"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[rendered](t, resp)
	assert.Equal(t, "android-xml.xml", out.Filename)
	assert.Contains(t, out.Content, `<color name="color.primary">#a78bfa</color>`)
	assert.Empty(t, out.Warnings)
}

func TestRender_InlineTemplateWarnings(t *testing.T) {
	f := newFixture(t)

	body := `{"system":"acme","template":{"name":"list","extension":"txt","template":"{{#tokens}}{{path}}={{nope}}\n{{/tokens}}"}}`
	resp := f.do(t, http.MethodPost, "/v1/render", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[rendered](t, resp)
	assert.Equal(t, "list.txt", out.Filename)
	assert.Contains(t, out.Content, "color.primary=\n")
	require.NotEmpty(t, out.Warnings)
	assert.Equal(t, "nope", out.Warnings[0].Field)
	assert.Equal(t, 1, out.Warnings[0].Line)
}

func TestRender_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "no template", body: `{"system":"acme"}`, status: http.StatusBadRequest},
		{name: "inline without extension", body: `{"system":"acme","template":{"name":"x","template":"{{name}}"}}`, status: http.StatusBadRequest},
		{name: "unknown template id", body: `{"system":"acme","templateId":"missing"}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/v1/render", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/v1/generate", `{"brief":"calm fintech","name":"calm"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[struct {
		System store.System    `json:"system"`
		Tokens int             `json:"tokens"`
		Doc    json.RawMessage `json:"document"`
	}](t, resp)

	assert.Equal(t, "calm", out.System.Name)
	assert.Equal(t, "Calm fintech", out.System.Description)
	assert.Equal(t, 2, out.Tokens)
	assert.Contains(t, string(out.Doc), `"primary":"#0ea5e9"`)

	stored, err := f.store.Tokens(context.Background(), out.System.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Len())

	// The new system is immediately servable.
	css := f.do(t, http.MethodGet, "/v1/tokens?system=calm&format=css", "")
	data, err := io.ReadAll(css.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "--color-primary: #0ea5e9;")
}

func TestGenerate_Errors(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/v1/generate", `{"brief":"again","name":"acme"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Zero(t, f.gen.calls, "existing names are rejected before calling the service")

	resp = f.do(t, http.MethodPost, "/v1/generate", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[Error](t, resp).Message, "brief: required")

	f.gen.err = errors.New("connection refused")
	resp = f.do(t, http.MethodPost, "/v1/generate", `{"brief":"b","name":"new"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, CodeUnavailable, decode[Error](t, resp).Code)
}

func TestGenerate_NotConfigured(t *testing.T) {
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	defer st.Close()

	s, err := New(st, nil, Config{APIKey: testKey}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(`{"brief":"b","name":"n"}`))
	req.Header.Set(APIKeyHeader, testKey)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
