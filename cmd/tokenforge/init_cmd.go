package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .tokenforge.yaml config file",
	Long: `Create a .tokenforge.yaml configuration file in the current directory with
sensible defaults. With --example, also write a starter token file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(defaultConfigPath); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigPath)
		}

		if err := os.WriteFile(defaultConfigPath, []byte(defaultConfig), 0o644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", defaultConfigPath)

		if example, _ := cmd.Flags().GetBool("example"); example {
			const path = "tokens/colors.yaml"
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll("tokens", 0o755); err != nil {
				return fmt.Errorf("creating tokens directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(exampleTokens), 0o644); err != nil {
				return fmt.Errorf("writing example tokens: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		}
		return nil
	},
}

const defaultConfig = `# tokenforge configuration
# Precedence: flags > TOKENFORGE_* environment > this file > defaults

verbose: false

# Workspace discovery
workspace:
  root: .
  include:
    - "tokens/**/*.{json,yaml,yml}"
    - "themes/**/*.{json,yaml,yml}"
    - "templates/**/*.{json,yaml,yml,tmpl}"
    - "design.{json,yaml,yml}"
  exclude: []
  no-ignore: false

# Export settings
export:
  output-dir: dist/tokens
  targets: []              # empty = every built-in target
  templates: []            # template names, or "all"
  theme: ""                # themes to resolve through, e.g. "brand-b,dark"

# Linting settings
lint:
  strict: false
  output-format: issues    # issues | summary | full | json | markdown
  max-issues-per-linter: 0 # 0 = unlimited
  max-same-issues: 0       # 0 = unlimited
  print-lines: true
  print-linter-name: true

# Local database used by store and serve
store:
  path: .tokenforge/tokens.db

# HTTP gateway
serve:
  addr: ":8080"
  api-key: ""              # prefer TOKENFORGE_SERVE_API_KEY
  cache-size: 256

# Generation service used by POST /v1/generate
generate:
  url: ""
  api-key: ""              # prefer TOKENFORGE_GENERATE_API_KEY
  timeout: 1m

watch:
  debounce: 300ms

log:
  level: info              # debug | info | warn | error
  format: console          # console | json
`

const exampleTokens = `- path: color.primary
  name: Primary
  type: color
  value: "#7c3aed"
  status: published
- path: color.cta
  name: Call to action
  type: color
  ref: "{color.primary}"
- path: spacing.md
  type: spacing
  value: 16px
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing files")
	initCmd.Flags().Bool("example", false, "Also write tokens/colors.yaml")
}
