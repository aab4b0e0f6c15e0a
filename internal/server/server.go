package server

import (
	"context"
	"fmt"
	"net/http"

	"giga/internal/clustering"
	"giga/internal/config"
	"giga/internal/core"
	"giga/internal/logger"
	"giga/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Service is the part of the keyword pipeline exposed over HTTP.
// *pipeline.Pipeline implements it.
type Service interface {
	Ideas(ctx context.Context, opts pipeline.IdeasOptions) (*pipeline.IdeasResult, error)
	Insights(ctx context.Context, opts pipeline.InsightsOptions) (*pipeline.InsightsResult, error)
	Clusters(ctx context.Context, ideas []core.KeywordIdea, template string) (*clustering.Result, error)
	Campaigns(ctx context.Context, opts pipeline.CampaignOptions) (string, error)
	Trends(ctx context.Context, seeds []string, template string) ([]string, error)
	NewSearchTermKeywords(ctx context.Context, opts pipeline.NewTermsOptions) (*pipeline.NewTermsResult, error)
	SuggestAds(ctx context.Context, opts pipeline.SuggestAdsOptions) ([]core.AdCopy, error)
}

var _ Service = (*pipeline.Pipeline)(nil)

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	service    Service
	config     config.Server
}

// New creates a new HTTP server instance
func New(service Service, cfg config.Server) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		config:  cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	// Model calls can take minutes; stop just before the write deadline.
	if s.config.WriteTimeout > 0 {
		s.router.Use(middleware.Timeout(s.config.WriteTimeout))
	}

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders:   []string{requestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/ideas", s.handleIdeas)
		r.Post("/insights", s.handleInsights)
		r.Post("/clusters", s.handleClusters)
		r.Post("/campaigns", s.handleCampaigns)
		r.Post("/trends", s.handleTrends)
		r.Post("/search-terms/new", s.handleNewSearchTerms)
		r.Post("/ads/suggest", s.handleSuggestAds)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	logger.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout.String(),
		"write_timeout", s.config.WriteTimeout.String(),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
