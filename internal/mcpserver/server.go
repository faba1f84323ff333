// Package mcpserver exposes the token workspace to MCP clients over stdio:
// listing export targets, resolving a token, exporting, rendering a custom
// template and linting.
package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/yacobolo/tokenforge/internal/loader"
)

// Source loads the current workspace. It is called once per tool call so
// edits on disk are picked up without a restart.
type Source func() (*loader.Workspace, error)

// Server wraps the MCP server.
type Server struct {
	mcpServer *server.MCPServer
	source    Source
	log       *zap.Logger
}

// New creates an MCP server backed by source. version is reported to
// clients during initialization.
func New(source Source, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{source: source, log: log}

	s.mcpServer = server.NewMCPServer(
		"tokenforge",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(s.loggingMiddleware()),
	)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listTargetsTool(), Handler: s.handleListTargets},
		server.ServerTool{Tool: resolveTokenTool(), Handler: s.handleResolveToken},
		server.ServerTool{Tool: exportTokensTool(), Handler: s.handleExportTokens},
		server.ServerTool{Tool: renderTemplateTool(), Handler: s.handleRenderTemplate},
		server.ServerTool{Tool: lintTokensTool(), Handler: s.handleLintTokens},
	)
	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// loggingMiddleware records every tool call.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, req)

			fields := []zap.Field{
				zap.String("tool", req.Params.Name),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			if result != nil && result.IsError {
				fields = append(fields, zap.Bool("tool_error", true))
			}
			s.log.Info("tool call", fields...)
			return result, err
		}
	}
}
