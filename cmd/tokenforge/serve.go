package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yacobolo/tokenforge/internal/logging"
	"github.com/yacobolo/tokenforge/internal/server"
	"github.com/yacobolo/tokenforge/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored design systems over HTTP",
	Long: `Start the HTTP gateway:

  GET  /v1/tokens?system=&theme=&status=&format=
  GET  /v1/targets
  POST /v1/generate {brief, name}
  POST /v1/export   {system, target, theme}
  POST /v1/render   {system, templateId | template, theme}

Every request needs the X-API-Key header. /v1/generate is available when a
generation endpoint is configured.`,
	PreRunE: preRun,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := logging.New(buildLoggingConfig())
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		cfg := buildServeConfig()
		if cfg.Server.APIKey == "" {
			return errors.New("an API key is required (--api-key or TOKENFORGE_SERVE_API_KEY)")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, storePath())
		if err != nil {
			return err
		}
		defer st.Close()

		gen := cfg.generator()
		if gen == nil {
			log.Info("no generation endpoint configured; /v1/generate is disabled")
		}
		srv, err := server.New(st, gen, cfg.Server, log)
		if err != nil {
			return err
		}
		log.Info("serving", zap.String("store", storePath()))
		return srv.ListenAndServe(ctx, cfg.Addr)
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", ":8080", "Listen address")
	f.String("api-key", "", "Shared secret expected in the X-API-Key header")
	f.Int("cache-size", 256, "Rendered outputs kept in memory")
	f.String("store", ".tokenforge/tokens.db", "SQLite database path")
	f.String("generate-url", "", "Generation service endpoint")
	f.String("generate-api-key", "", "Bearer token for the generation service")
	f.Duration("generate-timeout", time.Minute, "Generation request timeout")
}
