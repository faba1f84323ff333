package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tokenforge",
	Short: "Design token resolver, linter and exporter",
	Long: `Resolve aliased design tokens through brand and theme overrides and
export them to CSS, SCSS, Tailwind, native platforms, design tools and
custom templates.`,
	// Default behavior: run export when no subcommand is given.
	// We must call loadConfig here because PreRunE of exportCmd
	// is not triggered when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runExport(cmd, nil)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.Bool("quiet", false, "Suppress all output (exit code only)")
	pf.Bool("color", false, "Force color output")
	pf.String("config", defaultConfigPath, "Config file path")
	pf.StringP("root", "C", ".", "Workspace directory")
	pf.StringSlice("include", nil, "Glob patterns for workspace files (default: tokens/**, themes/**, templates/**, design.*)")
	pf.StringSlice("exclude", nil, "Glob patterns to skip")
	pf.Bool("no-ignore", false, "Do not honor .gitignore")
	pf.String("log-level", "info", "Log level: debug|info|warn|error")
	pf.String("log-format", "console", "Log format: console|json")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(importCSSCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// preRun loads configuration for a subcommand.
func preRun(cmd *cobra.Command, _ []string) error {
	return loadConfig(cmd)
}

func quiet() bool {
	return getBoolWithFallback("quiet", "quiet", false)
}
