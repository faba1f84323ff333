// Package server is the HTTP gateway: it serves resolved tokens, exports and
// template renders of stored design systems, and drafts new systems through
// the generation client. Every route requires the X-API-Key header.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/yacobolo/tokenforge/internal/document"
	"github.com/yacobolo/tokenforge/internal/export"
	"github.com/yacobolo/tokenforge/internal/store"
	"github.com/yacobolo/tokenforge/internal/theme"
	"github.com/yacobolo/tokenforge/internal/token"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "X-API-Key"

const maxBodyBytes = 1 << 20

// Repository is the persistence the gateway needs. *store.Store implements it.
type Repository interface {
	System(ctx context.Context, idOrName string) (store.System, error)
	CreateSystem(ctx context.Context, name, description string) (store.System, error)
	Tokens(ctx context.Context, systemID string) (*token.Set, error)
	ReplaceTokens(ctx context.Context, systemID string, tokens *token.Set) error
	Theme(ctx context.Context, systemID, themeID string) (*theme.Override, error)
	Template(ctx context.Context, systemID, id string) (export.CustomTemplate, error)
}

// Generator drafts a document from a brief. *generate.Client implements it.
type Generator interface {
	Generate(ctx context.Context, brief string) (*document.Document, error)
}

// Config holds gateway settings.
type Config struct {
	APIKey    string
	CacheSize int // rendered outputs kept in memory, 256 when zero
}

// Server routes gateway requests.
type Server struct {
	repo     Repository
	gen      Generator
	apiKey   []byte
	cache    *lru.Cache[string, rendered]
	log      *zap.Logger
	validate *validator.Validate
	decoder  *schema.Decoder
	mux      *http.ServeMux
}

// New wires a gateway. gen may be nil, in which case /v1/generate answers
// not_implemented.
func New(repo Repository, gen Generator, cfg Config, log *zap.Logger) (*Server, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("server: an API key is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, rendered](size)
	if err != nil {
		return nil, fmt.Errorf("create render cache: %w", err)
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonName)

	s := &Server{
		repo:     repo,
		gen:      gen,
		apiKey:   []byte(cfg.APIKey),
		cache:    cache,
		log:      log,
		validate: validate,
		decoder:  decoder,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /v1/tokens", s.handleTokens)
	s.mux.HandleFunc("GET /v1/targets", s.handleTargets)
	s.mux.HandleFunc("POST /v1/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /v1/export", s.handleExport)
	s.mux.HandleFunc("POST /v1/render", s.handleRender)
	return s, nil
}

// jsonName reports validation errors under the wire field names.
func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "schema"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// Handler returns the routed handler with authentication and request
// logging applied.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.authenticate(s.mux))
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(key), s.apiKey) != 1 {
			writeError(w, Errorf(CodeUnauthenticated, "missing or invalid %s header", APIKeyHeader))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
