// Package web serves the JSON API used by the local UI.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"facereel/internal/config"
	"facereel/internal/enrich"
	"facereel/internal/identity"
	"facereel/internal/media"
	"facereel/internal/scan"
	"facereel/internal/store"
	"facereel/internal/web/handlers"
	"facereel/internal/web/middleware"
)

// Server wires the API handlers into a chi router.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	logger     *slog.Logger
}

// Deps are the collaborators the API operates on.
type Deps struct {
	Config       *config.Config
	Store        *store.Store
	Registry     *identity.Registry
	Detector     media.FaceDetector
	Enricher     *enrich.Service
	Orchestrator *scan.Orchestrator
	Logger       *slog.Logger
}

func NewServer(deps Deps) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		logger: deps.Logger,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS())

	people := handlers.NewPeopleHandler(deps.Registry, deps.Store, deps.Detector,
		deps.Enricher, deps.Config.ProfileDir(), deps.Logger)
	events := handlers.NewEventsHandler(deps.Store, deps.Logger)
	scans := handlers.NewScanHandler(deps.Orchestrator, handlers.NewJobManager(), deps.Logger)
	stories := handlers.NewStoryHandler(deps.Store, deps.Config.Tuning, deps.Logger)

	r.Get("/api/health", handlers.HealthCheck)

	r.Route("/api/people", func(r chi.Router) {
		r.Get("/", people.List)
		r.Post("/", people.Register)
		r.Delete("/{name}", people.Delete)
		r.Get("/{name}/icon", people.ProfileIcon)
		r.Get("/{name}/events", events.List)
		r.Delete("/{name}/events", events.Delete)
	})

	r.Route("/api/scan", func(r chi.Router) {
		r.Post("/", scans.Start)
		r.Get("/{id}", scans.Get)
		r.Post("/{id}/cancel", scans.Cancel)
	})

	r.Post("/api/story", stories.Generate)

	thumbs := http.StripPrefix("/thumbnails/", http.FileServer(http.Dir(deps.Config.ThumbnailDir())))
	r.Get("/thumbnails/*", thumbs.ServeHTTP)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", deps.Config.Web.Host, deps.Config.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting web server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
