// Package server provides the HTTP API for Quill.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/hyperjump/quill/internal/actions"
	"github.com/hyperjump/quill/internal/assistant"
	"github.com/hyperjump/quill/internal/config"
	"github.com/hyperjump/quill/internal/host"
	"github.com/hyperjump/quill/internal/journal"
	"github.com/hyperjump/quill/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Quill API.
type Server struct {
	processor *assistant.Processor
	registry  *host.Registry
	journal   journal.Journal
	parser    *actions.Parser
	config    *config.Config
	validate  *validator.Validate
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. j may be nil when the journal
// is disabled.
func NewServer(
	processor *assistant.Processor,
	registry *host.Registry,
	j journal.Journal,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	logger = utils.OrNop(logger)
	return &Server{
		processor: processor,
		registry:  registry,
		journal:   j,
		parser:    actions.NewParser(actions.WithParserLogger(logger)),
		config:    cfg,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/context", s.handleContext)
		r.Post("/actions", s.handleActions)
		r.Post("/parse", s.handleParse)
		r.Post("/search", s.handleSearch)
		r.Get("/outline", s.handleOutline)
		r.Get("/turns", s.handleListTurns)
		r.Get("/turns/{id}", s.handleGetTurn)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
