package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/tokenforge"
	"github.com/yacobolo/tokenforge/internal/generate"
	"github.com/yacobolo/tokenforge/internal/logging"
	"github.com/yacobolo/tokenforge/internal/server"
)

const defaultConfigPath = ".tokenforge.yaml"

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence, only flags that were explicitly set)
	flags := cmd.Flags()
	provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (TOKENFORGE_* prefix)
	if err := k.Load(env.Provider("TOKENFORGE_", ".", envKey), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// envKey maps an environment variable to a config key. The first word is
// the section and the rest is the hyphenated key:
//
//	TOKENFORGE_EXPORT_OUTPUT_DIR -> export.output-dir
//	TOKENFORGE_SERVE_API_KEY     -> serve.api-key
//	TOKENFORGE_VERBOSE           -> verbose
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "TOKENFORGE_"))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return section
	}
	return section + "." + strings.ReplaceAll(key, "_", "-")
}

var defaultExportDir = "dist/tokens"

// buildWorkspace constructs the workspace locator shared by every command.
func buildWorkspace() tokenforge.Workspace {
	return tokenforge.Workspace{
		Root:     getStringWithFallback("root", "workspace.root", "."),
		Include:  getStringsWithFallback("include", "workspace.include", nil),
		Exclude:  getStringsWithFallback("exclude", "workspace.exclude", nil),
		NoIgnore: getBoolWithFallback("no-ignore", "workspace.no-ignore", false),
	}
}

// buildExportConfig constructs the library's ExportConfig from koanf state.
func buildExportConfig() tokenforge.ExportConfig {
	return tokenforge.ExportConfig{
		Workspace: buildWorkspace(),
		OutputDir: getStringWithFallback("output-dir", "export.output-dir", defaultExportDir),
		Targets:   getStringsWithFallback("targets", "export.targets", nil),
		Templates: getStringsWithFallback("templates", "export.templates", nil),
		Theme:     getStringWithFallback("theme", "export.theme", ""),
		Check:     getBoolWithFallback("check", "export.check", false),
		Verbose:   getBoolWithFallback("verbose", "verbose", false),
	}
}

// buildLintConfig constructs the library's LintConfig from koanf state.
func buildLintConfig() tokenforge.LintConfig {
	return tokenforge.LintConfig{
		Workspace:          buildWorkspace(),
		Strict:             getBoolWithFallback("strict", "lint.strict", false),
		MaxIssuesPerLinter: getIntWithFallback("max-issues-per-linter", "lint.max-issues-per-linter", 0),
		MaxSameIssues:      getIntWithFallback("max-same-issues", "lint.max-same-issues", 0),
		PrintIssuedLines:   getBoolWithFallback("print-lines", "lint.print-lines", true),
		PrintLinterName:    getBoolWithFallback("print-linter-name", "lint.print-linter-name", true),
		UseColors:          getBoolWithFallback("color", "color", false),
	}
}

// buildLoggingConfig selects the logger for serve, mcp and watch.
func buildLoggingConfig() logging.Config {
	return logging.Config{
		Level:  getStringWithFallback("log-level", "log.level", "info"),
		Format: getStringWithFallback("log-format", "log.format", "console"),
		Debug:  getBoolWithFallback("verbose", "verbose", false),
	}
}

func storePath() string {
	return getStringWithFallback("store", "store.path", ".tokenforge/tokens.db")
}

// serveConfig is everything the serve command reads.
type serveConfig struct {
	Addr            string
	Server          server.Config
	GenerateURL     string
	GenerateAPIKey  string
	GenerateTimeout time.Duration
}

func buildServeConfig() serveConfig {
	return serveConfig{
		Addr: getStringWithFallback("addr", "serve.addr", ":8080"),
		Server: server.Config{
			APIKey:    getStringWithFallback("api-key", "serve.api-key", ""),
			CacheSize: getIntWithFallback("cache-size", "serve.cache-size", 256),
		},
		GenerateURL:     getStringWithFallback("generate-url", "generate.url", ""),
		GenerateAPIKey:  getStringWithFallback("generate-api-key", "generate.api-key", ""),
		GenerateTimeout: getDurationWithFallback("generate-timeout", "generate.timeout", time.Minute),
	}
}

// generator returns nil when no generation endpoint is configured.
func (c serveConfig) generator() server.Generator {
	if c.GenerateURL == "" {
		return nil
	}
	opts := []generate.Option{generate.WithTimeout(c.GenerateTimeout)}
	if c.GenerateAPIKey != "" {
		opts = append(opts, generate.WithAPIKey(c.GenerateAPIKey))
	}
	return generate.New(c.GenerateURL, opts...)
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback is getStringWithFallback for lists.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}

// getDurationWithFallback accepts Go duration strings ("30s") in any source.
func getDurationWithFallback(flagKey, configKey string, defaultVal time.Duration) time.Duration {
	if k.Exists(flagKey) {
		return k.Duration(flagKey)
	}
	if k.Exists(configKey) {
		return k.Duration(configKey)
	}
	return defaultVal
}
