// Package logging builds the zap logger used by the long-running commands
// (serve, mcp, watch). Command output meant for people goes to stdout
// through fmt; logs go to stderr.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the encoder and level.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Debug  bool   // development config: console output, caller and stack traces
}

// New builds a logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(orDefault(cfg.Level, "info")))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var z zap.Config
	if cfg.Debug {
		z = zap.NewDevelopmentConfig()
	} else {
		z = zap.NewProductionConfig()
		z.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	z.Level = zap.NewAtomicLevelAt(level)
	z.OutputPaths = []string{"stderr"}
	z.ErrorOutputPaths = []string{"stderr"}

	switch strings.ToLower(orDefault(cfg.Format, "json")) {
	case "json":
		z.Encoding = "json"
	case "console", "text":
		z.Encoding = "console"
	default:
		return nil, fmt.Errorf("invalid log format %q (want json or console)", cfg.Format)
	}

	logger, err := z.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Sugar builds a logger and returns its sugared form.
func Sugar(cfg Config) (*zap.SugaredLogger, error) {
	logger, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
