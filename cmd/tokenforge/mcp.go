package main

import (
	"github.com/spf13/cobra"

	"github.com/yacobolo/tokenforge/internal/loader"
	"github.com/yacobolo/tokenforge/internal/logging"
	"github.com/yacobolo/tokenforge/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve workspace tools over MCP (stdio)",
	Long: `Expose list_targets, resolve_token, export_tokens, render_template and
lint_tokens to an MCP client. The workspace is reloaded on every call.`,
	PreRunE: preRun,
	RunE: func(_ *cobra.Command, _ []string) error {
		log, err := logging.New(buildLoggingConfig())
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		workspace := buildWorkspace()
		source := func() (*loader.Workspace, error) {
			return workspace.Load()
		}
		return mcpserver.New(source, version, log).ServeStdio()
	},
}
