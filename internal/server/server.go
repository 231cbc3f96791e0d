// Package server exposes the engine over HTTP: search, sync, documents,
// chat, and file opening, all under /api.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/ahvonen/notesmith/internal/engine"
	"github.com/ahvonen/notesmith/internal/llm"
)

// Engine is the slice of engine behavior the HTTP layer needs. Tests plug
// in a stub.
type Engine interface {
	Search(ctx context.Context, req engine.SearchRequest) ([]engine.SearchResult, error)
	Similar(ctx context.Context, path string, topK int) ([]engine.SearchResult, error)
	Recent(ctx context.Context, limit int) ([]engine.DocumentInfo, error)
	Documents(ctx context.Context) ([]engine.DocumentInfo, error)
	Sync(ctx context.Context, force bool) (*engine.SyncResult, error)
	Stats(ctx context.Context) (*engine.Stats, error)
	Health(ctx context.Context) (*engine.Health, error)
	Answer(ctx context.Context, question string, topK int) (*engine.Answer, error)
	Chat(ctx context.Context, messages []llm.Message, topK int) (*engine.Answer, error)
	Summarize(ctx context.Context, topic string, topK int) (*engine.Answer, error)
}

// Config holds server configuration.
type Config struct {
	Host     string
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server serves the notesmith HTTP API.
type Server struct {
	cfg        Config
	engine     Engine
	log        zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server around an engine.
func New(cfg Config, eng Engine, log zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		engine: eng,
		log:    log,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(s.requestLogger)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/search/recent", s.handleRecent)
		r.Get("/search/similar/*", s.handleSimilar)

		r.Get("/documents", s.handleDocuments)
		r.Post("/documents/sync", s.handleSync)
		r.Get("/documents/stats", s.handleStats)

		r.Post("/chat", s.handleChat)
		r.Post("/chat/summary", s.handleSummary)
		r.Get("/chat/ws", s.handleWebSocket)

		r.Post("/files/open", s.handleOpenFile)
		r.Get("/health", s.handleHealth)
	})

	return r
}

// requestLogger logs each request with zerolog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// Router returns the chi router, used by tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address and blocks.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("notesmith server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
