package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yacobolo/tokenforge"
	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/report"
)

var renderCmd = &cobra.Command{
	Use:   "render <template>",
	Short: "Render a custom template",
	Long: `Render a workspace template (by name or id) or a template file against
the resolved tokens. Unknown fields render empty and are reported as warnings.`,
	Example: `  tokenforge render android-colors --theme dark
  tokenforge render ./colors.xml.tmpl -o res/values/colors.xml`,
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE:    runRender,
}

func init() {
	f := renderCmd.Flags()
	f.String("theme", "", "Themes to resolve through, comma-separated; the first listed wins")
	f.StringP("output", "o", "", "Write to a file instead of stdout")
	f.Bool("pretty", false, "Render Markdown output for the terminal")
}

func runRender(cmd *cobra.Command, args []string) error {
	ws, err := buildWorkspace().Load()
	if err != nil {
		return err
	}

	c, ok := ws.Template(args[0])
	if !ok {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("unknown template %q", args[0])
		}
		base := filepath.Base(args[0])
		ext := strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(base, ".tmpl")), ".")
		if ext == "" {
			ext = "txt"
		}
		c = export.CustomTemplate{
			Name:      strings.TrimSuffix(strings.TrimSuffix(base, ".tmpl"), "."+ext),
			Template:  string(data),
			Extension: ext,
		}
	}

	bundle, rep, err := ws.Bundle(getStringWithFallback("theme", "export.theme", ""))
	if err != nil {
		return err
	}
	content, warns := export.RenderCustom(c, bundle)

	useColors := report.ShouldUseColors(getBoolWithFallback("color", "color", false))
	for _, f := range rep.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", report.RenderStyle(report.StyleRed, "skipped:", useColors), f.Err)
	}
	for _, w := range warns {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", report.RenderStyle(report.StyleYellow, c.Name+":", useColors), w)
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		if !quiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s to %s\n", c.Name, output)
		}
		return nil
	}

	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty && isMarkdown(c.Filename()) {
		if content, err = tokenforge.RenderMarkdown(content, 100); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}
