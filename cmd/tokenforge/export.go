package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yacobolo/tokenforge"
	"github.com/yacobolo/tokenforge/internal/report"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"gen"},
	Short:   "Export resolved tokens to code",
	Long: `Resolve every token through the selected theme and write the built-in
targets and custom templates to the output directory.`,
	PreRunE: preRun,
	RunE:    runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringP("output-dir", "o", defaultExportDir, "Output directory for generated files")
	f.StringSliceP("targets", "t", nil, "Built-in targets to export (default: all, see tokenforge targets)")
	f.StringSlice("templates", nil, `Custom templates to render by name or id ("all" for every template)`)
	f.String("theme", "", "Themes to resolve through, comma-separated; the first listed wins")
	f.Bool("check", false, "Exit 1 and print a diff when generated files are out of date")
	f.Bool("stdout", false, "Print generated files instead of writing them")
	f.Bool("pretty", false, "Render Markdown outputs for the terminal (with --stdout)")
	f.Bool("lint", false, "Run linter after export")
}

func runExport(cmd *cobra.Command, _ []string) error {
	config := buildExportConfig()
	stdout, _ := cmd.Flags().GetBool("stdout")
	config.DryRun = stdout

	result, err := tokenforge.Export(config)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	out := cmd.OutOrStdout()
	useColors := report.ShouldUseColors(getBoolWithFallback("color", "color", false))

	switch {
	case stdout:
		pretty, _ := cmd.Flags().GetBool("pretty")
		if err := printFiles(out, result.Files, pretty); err != nil {
			return err
		}
	case config.Check:
		if stale := result.Stale(); len(stale) > 0 {
			if !quiet() {
				for _, f := range stale {
					fmt.Fprint(out, f.Diff)
				}
				fmt.Fprintln(out, report.RenderStyle(report.StyleRed,
					fmt.Sprintf("%d of %d files out of date", len(stale), len(result.Files)), useColors))
			}
			return &exitError{code: 1}
		}
		if !quiet() {
			fmt.Fprintln(out, report.RenderStyle(report.StyleGreen, fmt.Sprintf("%d files up to date", len(result.Files)), useColors))
		}
	default:
		if !quiet() {
			printExportSummary(out, config, result, useColors)
		}
	}

	if !quiet() {
		for _, f := range result.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s\n", report.RenderStyle(report.StyleRed, "skipped:", useColors), f)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s\n", report.RenderStyle(report.StyleYellow, "warning:", useColors), w)
		}
	}

	// Run lint after export if --lint flag set
	if lint, _ := cmd.Flags().GetBool("lint"); lint {
		return runLint(cmd)
	}
	return nil
}

func printExportSummary(w io.Writer, config tokenforge.ExportConfig, result *tokenforge.ExportResult, useColors bool) {
	written := len(result.Stale())
	fmt.Fprintf(w, "Exported %d tokens to %s\n", result.Tokens, config.OutputDir)
	fmt.Fprintf(w, "  Files loaded: %d\n", result.FilesLoaded)
	fmt.Fprintf(w, "  Files written: %d (%d unchanged)\n", written, len(result.Files)-written)
	for _, f := range result.Files {
		mark := report.RenderStyle(report.StyleGray, "=", useColors)
		if f.Changed {
			mark = report.RenderStyle(report.StyleGreen, "+", useColors)
		}
		fmt.Fprintf(w, "  %s %s\n", mark, f.Path)
	}
}

func printFiles(w io.Writer, files []tokenforge.ExportedFile, pretty bool) error {
	for i, f := range files {
		if len(files) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "// %s\n", filepath.Base(f.Path))
		}
		content := f.Content
		if pretty && isMarkdown(f.Path) {
			rendered, err := tokenforge.RenderMarkdown(content, 100)
			if err != nil {
				return fmt.Errorf("render %s: %w", f.Path, err)
			}
			content = rendered
		}
		fmt.Fprint(w, content)
	}
	return nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdx", ".markdown":
		return true
	}
	return false
}
