package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yacobolo/tokenforge"
)

var importCSSCmd = &cobra.Command{
	Use:   "import-css <stylesheet>",
	Short: "Import CSS custom properties as tokens and themes",
	Long: `Convert the custom properties of a stylesheet into tokens/<name>.json.
Properties set under theme selectors or prefers-color-scheme media queries
become override files in themes/. var() references become aliases.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: preRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		prefix, _ := cmd.Flags().GetString("prefix")
		systemID, _ := cmd.Flags().GetString("system-id")
		force, _ := cmd.Flags().GetBool("force")

		result, err := tokenforge.ImportCSS(tokenforge.ImportConfig{
			Root:     buildWorkspace().Root,
			Source:   args[0],
			Name:     name,
			Prefix:   prefix,
			SystemID: systemID,
			Force:    force,
		})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		if !quiet() {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d tokens and %d themes\n", result.Tokens, result.Themes)
			for _, f := range result.Files {
				fmt.Fprintf(out, "  %s\n", f)
			}
			for _, w := range result.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "  Warning: %s\n", w)
			}
		}
		return nil
	},
}

func init() {
	f := importCSSCmd.Flags()
	f.String("name", "", "Token file name (default: stylesheet name)")
	f.String("prefix", "", "Custom property prefix to strip, e.g. tf for --tf-color-primary")
	f.String("system-id", "", "System id stamped on imported themes")
	f.Bool("force", false, "Overwrite existing token and theme files")
}
