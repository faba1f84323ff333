package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yacobolo/tokenforge"
	"github.com/yacobolo/tokenforge/internal/logging"
	"github.com/yacobolo/tokenforge/internal/report"
	"github.com/yacobolo/tokenforge/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export whenever workspace files change",
	Long: `Run an export, then watch the token, theme and template directories and
export again after each burst of edits. Accepts the export flags.`,
	PreRunE: preRun,
	RunE:    runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringP("output-dir", "o", defaultExportDir, "Output directory for generated files")
	f.StringSliceP("targets", "t", nil, "Built-in targets to export (default: all)")
	f.StringSlice("templates", nil, `Custom templates to render by name or id ("all" for every template)`)
	f.String("theme", "", "Themes to resolve through, comma-separated; the first listed wins")
	f.Duration("debounce", watch.DefaultDebounce, "Quiet period before re-exporting")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	log, err := logging.New(buildLoggingConfig())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	config := buildExportConfig()
	config.Check = false
	useColors := report.ShouldUseColors(getBoolWithFallback("color", "color", false))
	out := cmd.OutOrStdout()

	exportOnce := func() {
		start := time.Now()
		result, err := tokenforge.Export(config)
		if err != nil {
			fmt.Fprintln(out, report.RenderStyle(report.StyleRed, "export failed: "+err.Error(), useColors))
			return
		}
		written := len(result.Stale())
		fmt.Fprintf(out, "%s %d tokens, %d files written in %s\n",
			report.RenderStyle(report.StyleGreen, "exported", useColors),
			result.Tokens, written, time.Since(start).Round(time.Millisecond))
		for _, f := range result.Failures {
			fmt.Fprintf(out, "  %s %s\n", report.RenderStyle(report.StyleRed, "skipped:", useColors), f)
		}
	}

	w, err := watch.New(watch.Config{
		Loader:   config.LoaderConfig(),
		Debounce: getDurationWithFallback("debounce", "watch.debounce", watch.DefaultDebounce),
		Logger:   log,
		Ignore:   []string{config.OutputDir},
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exportOnce()
	fmt.Fprintln(out, report.RenderStyle(report.StyleGray, "watching for changes (ctrl-c to stop)", useColors))
	for {
		select {
		case change := <-changes:
			log.Debug("change", zap.Strings("paths", change.Paths))
			exportOnce()
		case <-ctx.Done():
			return nil
		}
	}
}
