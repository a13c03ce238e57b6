package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pulsetrack-go/pkg/config"
	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/http/handlers"
	"pulsetrack-go/pkg/http/middleware"
	"pulsetrack-go/pkg/logging"
	"pulsetrack-go/pkg/metrics"
	"pulsetrack-go/pkg/websocket"
)

// Server is the HTTP surface of the service
type Server struct {
	httpServer *http.Server
	router     chi.Router
	logger     *logging.Logger
}

// Deps bundles everything the router needs
type Deps struct {
	Activity   *handlers.ActivityHandler
	Status     *handlers.StatusHandler
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Gateway    *websocket.Gateway
	Sessions   middleware.SessionValidator
	ErrHandler *apperrors.Handler
}

// NewServer builds the router and wraps it in an http.Server
func NewServer(cfg *config.Config, logger *logging.Logger, deps Deps) *Server {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(LoggingMiddleware(logger))
	router.Use(MetricsMiddleware)

	router.Get("/health", deps.Health.Health)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	router.Handle("/ws", deps.Gateway)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.Auth.Login)
			r.Post("/logout", deps.Auth.Logout)
		})

		r.Route("/activity", func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Sessions, deps.ErrHandler))

			r.Route("/activities", func(r chi.Router) {
				r.Post("/", deps.Activity.Record)
				r.Get("/", deps.Activity.List)
				r.Post("/batch", deps.Activity.RecordBatch)
				r.Get("/{id}", deps.Activity.Get)
				r.Patch("/{id}", deps.Activity.Update)
				r.Delete("/{id}", deps.Activity.Delete)
			})

			r.Route("/status", func(r chi.Router) {
				r.Get("/", deps.Status.Get)
				r.Patch("/", deps.Status.Update)
				r.Get("/all", deps.Status.ListActive)
			})

			r.Get("/stats", deps.Activity.Stats)
			r.Post("/cleanup", deps.Activity.Cleanup)
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		router: router,
		logger: logger,
	}
}

// Router exposes the underlying router, mainly for tests
func (s *Server) Router() chi.Router {
	return s.router
}

// Start begins serving and blocks until the listener closes
func (s *Server) Start() error {
	s.logger.Infof("http server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
