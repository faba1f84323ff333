package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/resolve"
	"github.com/yacobolo/tokenforge/internal/store"
	"github.com/yacobolo/tokenforge/internal/template"
	"github.com/yacobolo/tokenforge/internal/theme"
	"github.com/yacobolo/tokenforge/internal/token"
)

// CacheHeader reports whether a render came from the cache.
const CacheHeader = "X-Cache"

type tokensQuery struct {
	System string `schema:"system" validate:"required"`
	Theme  string `schema:"theme"`
	Status string `schema:"status" validate:"omitempty,oneof=draft published deprecated"`
	Format string `schema:"format"`
}

type resolvedToken struct {
	Path       string      `json:"path"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Value      token.Value `json:"value"`
	Ref        string      `json:"ref,omitempty"`
	Status     string      `json:"status,omitempty"`
	Source     string      `json:"source,omitempty"`
	Overridden bool        `json:"overridden,omitempty"`
}

type failure struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tokensResponse struct {
	System   string          `json:"system"`
	Theme    string          `json:"theme,omitempty"`
	Tokens   []resolvedToken `json:"tokens"`
	Failures []failure       `json:"failures,omitempty"`
}

type generateRequest struct {
	Brief string `json:"brief" validate:"required,max=4000"`
	Name  string `json:"name" validate:"required,max=200"`
}

type generateResponse struct {
	System   store.System       `json:"system"`
	Tokens   int                `json:"tokens"`
	Document *document.Document `json:"document"`
}

type exportRequest struct {
	System string `json:"system" validate:"required"`
	Target string `json:"target" validate:"required"`
	Theme  string `json:"theme"`
}

type renderRequest struct {
	System     string                 `json:"system" validate:"required"`
	TemplateID string                 `json:"templateId" validate:"required_without=Template"`
	Template   *export.CustomTemplate `json:"template" validate:"required_without=TemplateID"`
	Theme      string                 `json:"theme"`
}

type warning struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// rendered is one cached export or render.
type rendered struct {
	Target   string    `json:"target,omitempty"`
	Filename string    `json:"filename"`
	Content  string    `json:"content"`
	Warnings []warning `json:"warnings,omitempty"`
	Failures []failure `json:"failures,omitempty"`
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
	}
	return s.validate.Struct(v)
}

// workspace is a loaded system with its selected themes, first wins.
type workspace struct {
	system store.System
	tokens *token.Set
	themes []*theme.Override
}

// load reads a system and the themes named in themes, a comma-separated list.
func (s *Server) load(ctx context.Context, system, themes string) (*workspace, error) {
	sys, err := s.repo.System(ctx, system)
	if err != nil {
		return nil, err
	}
	tokens, err := s.repo.Tokens(ctx, sys.ID)
	if err != nil {
		return nil, err
	}
	ws := &workspace{system: sys, tokens: tokens}
	for _, id := range theme.ParseIDs(themes) {
		o, err := s.repo.Theme(ctx, sys.ID, id)
		if err != nil {
			return nil, err
		}
		ws.themes = append(ws.themes, o)
	}
	return ws, nil
}

// overrides avoids handing the resolver an empty stack.
func (ws *workspace) overrides() resolve.Overrides {
	if len(ws.themes) == 0 {
		return nil
	}
	stack := make(theme.Stack, len(ws.themes))
	for i, o := range ws.themes {
		stack[i] = o
	}
	return stack
}

// withStatus narrows tokens to a status filter. Resolution still runs on the
// full set, so aliases into filtered-out tokens resolve.
func withStatus(tokens *token.Set, status string) *token.Set {
	switch status {
	case "":
		return tokens
	case string(token.StatusPublished):
		return tokens.Published()
	default:
		return tokens.Filter(func(t token.Token) bool { return string(t.Status) == status })
	}
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	var q tokensQuery
	if err := s.decoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, Errorf(CodeInvalidArgument, "failed to decode query: %v", err))
		return
	}
	if err := s.validate.Struct(q); err != nil {
		writeError(w, toError(err))
		return
	}

	var target export.Target
	if q.Format != "" {
		var ok bool
		if target, ok = export.Lookup(q.Format); !ok {
			writeError(w, Errorf(CodeInvalidArgument, "unknown format %q (available: %s)", q.Format, strings.Join(export.IDs(), ", ")))
			return
		}
	}

	ws, err := s.load(r.Context(), q.System, q.Theme)
	if err != nil {
		writeError(w, toError(err))
		return
	}

	report := resolve.ResolveAll(ws.tokens, ws.overrides())
	visible := withStatus(ws.tokens, q.Status)
	keep := func(t token.Token) bool {
		_, ok := visible.Lookup(t.Path)
		return ok
	}
	var kept []resolve.Resolved
	for _, res := range report.Resolved {
		if keep(res.Token) {
			kept = append(kept, res)
		}
	}

	if target.ID != "" {
		out := s.cached(w, []any{"tokens", target.ID, q.Status, ws.tokens.Tokens(), ws.themes}, func() rendered {
			return rendered{
				Target:   target.ID,
				Filename: target.Filename,
				Content:  target.Generate(document.FromResolved(kept)),
			}
		})
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
		_, _ = w.Write([]byte(out.Content))
		return
	}

	resp := tokensResponse{System: ws.system.ID, Theme: q.Theme, Tokens: make([]resolvedToken, 0, len(kept))}
	for _, res := range kept {
		t := res.Token
		rt := resolvedToken{
			Path:       string(t.Path),
			Name:       t.Label(),
			Type:       string(t.Type),
			Value:      res.Value(),
			Status:     string(t.Status),
			Overridden: res.Resolution.Overridden(),
		}
		if t.IsAlias() {
			rt.Ref = token.FormatRef(t.Value.Ref())
			rt.Source = string(res.Resolution.Source())
		}
		resp.Tokens = append(resp.Tokens, rt)
	}
	resp.Failures = toFailures(report.Failures, keep)
	writeJSON(w, http.StatusOK, resp)
}

// toFailures reports the broken tokens that keep accepts; a nil keep accepts all.
func toFailures(failures []resolve.Failure, keep func(token.Token) bool) []failure {
	var out []failure
	for _, f := range failures {
		if keep != nil && !keep(f.Token) {
			continue
		}
		code := "unknown_reference"
		if f.Cyclic() {
			code = "cyclic_reference"
		}
		out = append(out, failure{Path: string(f.Token.Path), Code: code, Message: f.Err.Error()})
	}
	return out
}

type targetInfo struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Filename string `json:"filename"`
}

func (s *Server) handleTargets(w http.ResponseWriter, _ *http.Request) {
	targets := export.Targets()
	out := make([]targetInfo, len(targets))
	for i, t := range targets {
		out[i] = targetInfo{ID: t.ID, Label: t.Label, Filename: t.Filename}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		writeError(w, Errorf(CodeNotImplemented, "no generation service configured"))
		return
	}
	var req generateRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, toError(err))
		return
	}

	ctx := r.Context()
	if _, err := s.repo.System(ctx, req.Name); err == nil {
		writeError(w, Errorf(CodeAlreadyExists, "system %q already exists", req.Name))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, toError(err))
		return
	}

	doc, err := s.gen.Generate(ctx, req.Brief)
	if err != nil {
		s.log.Warn("generation failed", zap.Error(err))
		apiErr := toError(err)
		if apiErr.Code == CodeInternal {
			apiErr.Code = CodeUnavailable
		}
		writeError(w, apiErr)
		return
	}
	tokens, err := token.NewSet(document.ToTokens(doc)...)
	if err != nil {
		writeError(w, toError(err))
		return
	}

	sys, err := s.repo.CreateSystem(ctx, req.Name, doc.MetaText("description"))
	if err != nil {
		writeError(w, toError(err))
		return
	}
	if err := s.repo.ReplaceTokens(ctx, sys.ID, tokens); err != nil {
		writeError(w, toError(err))
		return
	}
	s.log.Info("generated system", zap.String("system", sys.ID), zap.Int("tokens", tokens.Len()))
	writeJSON(w, http.StatusCreated, generateResponse{System: sys, Tokens: tokens.Len(), Document: doc})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, toError(err))
		return
	}
	target, ok := export.Lookup(req.Target)
	if !ok {
		writeError(w, Errorf(CodeInvalidArgument, "unknown target %q (available: %s)", req.Target, strings.Join(export.IDs(), ", ")))
		return
	}
	ws, err := s.load(r.Context(), req.System, req.Theme)
	if err != nil {
		writeError(w, toError(err))
		return
	}

	out := s.cached(w, []any{"export", target.ID, ws.tokens.Tokens(), ws.themes}, func() rendered {
		bundle, rep := export.NewBundle(ws.tokens, ws.overrides())
		return rendered{
			Target:   target.ID,
			Filename: target.Filename,
			Content:  target.Generate(bundle.Document),
			Failures: toFailures(rep.Failures, nil),
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeError(w, toError(err))
		return
	}
	ws, err := s.load(r.Context(), req.System, req.Theme)
	if err != nil {
		writeError(w, toError(err))
		return
	}

	var c export.CustomTemplate
	if req.Template != nil {
		c = *req.Template
	} else if c, err = s.repo.Template(r.Context(), ws.system.ID, req.TemplateID); err != nil {
		writeError(w, toError(err))
		return
	}

	out := s.cached(w, []any{"render", c, ws.tokens.Tokens(), ws.themes}, func() rendered {
		bundle, rep := export.NewBundle(ws.tokens, ws.overrides())
		content, warns := export.RenderCustom(c, bundle)
		return rendered{
			Filename: c.Filename(),
			Content:  content,
			Warnings: toWarnings(warns),
			Failures: toFailures(rep.Failures, nil),
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func toWarnings(warns []template.Warning) []warning {
	out := make([]warning, len(warns))
	for i, w := range warns {
		out[i] = warning{Line: w.Pos.Line, Column: w.Pos.Column, Field: w.Field, Message: w.Message}
	}
	return out
}

// cached looks up the render for the digest of parts, building and storing
// it on a miss.
func (s *Server) cached(w http.ResponseWriter, parts []any, build func() rendered) rendered {
	key, err := digest(parts)
	if err != nil {
		s.log.Warn("cache key", zap.Error(err))
		w.Header().Set(CacheHeader, "bypass")
		return build()
	}
	if out, ok := s.cache.Get(key); ok {
		w.Header().Set(CacheHeader, "hit")
		return out
	}
	out := build()
	s.cache.Add(key, out)
	w.Header().Set(CacheHeader, "miss")
	return out
}

func digest(parts []any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
