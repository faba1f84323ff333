package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yacobolo/tokenforge/internal/report"
	"github.com/yacobolo/tokenforge/internal/resolve"
	"github.com/yacobolo/tokenforge/internal/token"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>...",
	Short: "Resolve token paths and show their alias chains",
	Example: `  tokenforge resolve color.cta
  tokenforge resolve "{color.cta}" --theme dark`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: preRun,
	RunE:    runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.String("theme", "", "Themes to resolve through, comma-separated; the first listed wins")
	f.Bool("json", false, "Print resolutions as JSON")
}

type resolution struct {
	Path         string      `json:"path"`
	Value        token.Value `json:"value,omitempty"`
	Chain        []string    `json:"chain,omitempty"`
	OverriddenAt string      `json:"overriddenAt,omitempty"`
	Error        string      `json:"error,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	ws, err := buildWorkspace().Load()
	if err != nil {
		return err
	}

	overrides, err := ws.Layers(getStringWithFallback("theme", "export.theme", ""))
	if err != nil {
		return err
	}

	var (
		out    []resolution
		failed bool
	)
	for _, arg := range args {
		path := token.Path(strings.TrimSpace(arg))
		if ref, ok := token.ParseRef(arg); ok {
			path = ref
		}
		r := resolution{Path: string(path)}
		res, err := resolve.Resolve(path, ws.Tokens, overrides)
		if err != nil {
			failed = true
			r.Error = err.Error()
		} else {
			r.Value = res.Value
			r.OverriddenAt = string(res.OverriddenAt)
			for _, p := range res.Chain {
				r.Chain = append(r.Chain, string(p))
			}
		}
		out = append(out, r)
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		useColors := report.ShouldUseColors(getBoolWithFallback("color", "color", false))
		for _, r := range out {
			if r.Error != "" {
				fmt.Fprintf(w, "%s %s\n", report.RenderStyle(report.StyleRed, r.Path+":", useColors), r.Error)
				continue
			}
			fmt.Fprintf(w, "%s = %s\n", report.RenderStyle(report.StyleCyan, r.Path, useColors), r.Value.Text())
			if len(r.Chain) > 1 {
				fmt.Fprintf(w, "  %s\n", report.RenderStyle(report.StyleGray, strings.Join(r.Chain, " -> "), useColors))
			}
			if r.OverriddenAt != "" {
				fmt.Fprintf(w, "  %s\n", report.RenderStyle(report.StyleYellow, "overridden at "+r.OverriddenAt, useColors))
			}
		}
	}

	if failed {
		return &exitError{code: 1}
	}
	return nil
}
