package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/report"
	"github.com/yacobolo/tokenforge/internal/resolve"
	"github.com/yacobolo/tokenforge/internal/token"
)

type targetInfo struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Filename string `json:"filename"`
}

func (s *Server) handleListTargets(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targets := export.Targets()
	out := make([]targetInfo, len(targets))
	for i, t := range targets {
		out[i] = targetInfo{ID: t.ID, Label: t.Label, Filename: t.Filename}
	}
	return mcp.NewToolResultJSON(out)
}

type resolution struct {
	Path         string      `json:"path"`
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	Status       string      `json:"status,omitempty"`
	Value        token.Value `json:"value"`
	Chain        []string    `json:"chain"`
	OverriddenAt string      `json:"overriddenAt,omitempty"`
}

func (s *Server) handleResolveToken(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := token.Path(strings.TrimSpace(raw))
	if ref, ok := token.ParseRef(raw); ok {
		path = ref
	}

	ws, err := s.source()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to load workspace", err), nil
	}
	overrides, err := ws.Layers(req.GetString("theme", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := resolve.Resolve(path, ws.Tokens, overrides)
	if err != nil {
		msg := err.Error()
		if deps := resolve.Dependents(ws.Tokens, path); len(deps) > 0 {
			names := make([]string, len(deps))
			for i, d := range deps {
				names[i] = string(d.Path)
			}
			msg += fmt.Sprintf(" (referenced by %s)", strings.Join(names, ", "))
		}
		return mcp.NewToolResultError(msg), nil
	}

	out := resolution{
		Path:         string(path),
		Value:        res.Value,
		OverriddenAt: string(res.OverriddenAt),
	}
	if t, ok := ws.Tokens.Lookup(path); ok {
		out.Name, out.Type, out.Status = t.Label(), string(t.Type), string(t.Status)
	}
	for _, p := range res.Chain {
		out.Chain = append(out.Chain, string(p))
	}
	return mcp.NewToolResultJSON(out)
}

type exported struct {
	Target   string   `json:"target"`
	Filename string   `json:"filename"`
	Content  string   `json:"content"`
	Failures []string `json:"failures,omitempty"`
}

func (s *Server) handleExportTokens(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, ok := export.Lookup(id)
	if !ok {
		return mcp.NewToolResultErrorf("unknown target %q (available: %s)", id, strings.Join(export.IDs(), ", ")), nil
	}

	ws, err := s.source()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to load workspace", err), nil
	}
	bundle, rep, err := ws.Bundle(req.GetString("theme", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := exported{
		Target:   target.ID,
		Filename: target.Filename,
		Content:  target.Generate(bundle.Document),
		Failures: failures(rep),
	}
	return mcp.NewToolResultJSON(out)
}

func failures(rep *resolve.Report) []string {
	var out []string
	for _, f := range rep.Failures {
		out = append(out, f.Err.Error())
	}
	return out
}

type renderedTemplate struct {
	Filename string   `json:"filename"`
	Content  string   `json:"content"`
	Warnings []string `json:"warnings,omitempty"`
	Failures []string `json:"failures,omitempty"`
}

func (s *Server) handleRenderTemplate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, err := s.source()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to load workspace", err), nil
	}

	var c export.CustomTemplate
	if key := req.GetString("template", ""); key != "" {
		var ok bool
		if c, ok = ws.Template(key); !ok {
			return mcp.NewToolResultErrorf("unknown template %q", key), nil
		}
	} else if src := req.GetString("source", ""); src != "" {
		c = export.CustomTemplate{Name: "inline", Template: src, Extension: req.GetString("extension", "txt")}
	} else {
		return mcp.NewToolResultError("either template or source is required"), nil
	}

	bundle, rep, err := ws.Bundle(req.GetString("theme", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, warns := export.RenderCustom(c, bundle)

	out := renderedTemplate{Filename: c.Filename(), Content: content, Failures: failures(rep)}
	for _, w := range warns {
		out.Warnings = append(out.Warnings, w.String())
	}
	return mcp.NewToolResultJSON(out)
}

func (s *Server) handleLintTokens(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws, err := s.source()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to load workspace", err), nil
	}
	result := report.Analyze(ws.LintInput())

	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, result); err != nil {
		return nil, fmt.Errorf("encode lint result: %w", err)
	}
	return mcp.NewToolResultText(buf.String()), nil
}
