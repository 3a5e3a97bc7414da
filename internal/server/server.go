// Package server exposes the analysis engine over HTTP: a JSON forecast
// endpoint, health checks, and a separate metrics listener.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/trendlens/tsforecast/internal/forecast"
	"github.com/trendlens/tsforecast/internal/observability/metrics"
	"github.com/trendlens/tsforecast/pkg/constants"
)

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	metricsServer *http.Server
	router        *mux.Router
	logger        *logrus.Logger
	config        *Config
	handlers      *Handlers
	metrics       *metrics.Metrics
}

// NewServer creates a new HTTP server instance
func NewServer(config *Config, logger *logrus.Logger) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	m := metrics.New(logger)
	handlers := NewHandlers(forecast.NewEngine(logger), m, logger)

	server := &Server{
		router:   mux.NewRouter(),
		logger:   logger,
		config:   config,
		handlers: handlers,
		metrics:  m,
	}

	server.setupMiddleware()
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	if config.EnableMetrics {
		server.setupMetricsServer()
	}

	return server, nil
}

// Start starts the HTTP server and, when enabled, the metrics server.
// Blocks until the listener fails or the server is stopped.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Infof("Starting HTTP server on %s:%d", s.config.Host, s.config.Port)

	if s.config.EnableMetrics && s.metricsServer != nil {
		go func() {
			s.logger.Infof("Starting metrics server on port %d", s.config.MetricsPort)
			if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Errorf("Metrics server error: %v", err)
			}
		}()
	}

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("Error shutting down metrics server: %v", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("Error shutting down HTTP server: %v", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// setupRoutes sets up the HTTP routes
func (s *Server) setupRoutes() {
	apiRouter := s.router.PathPrefix(constants.APIPrefix).Subrouter()

	s.router.HandleFunc("/health", s.handlers.Health).Methods("GET")
	s.router.HandleFunc("/version", s.handlers.Version).Methods("GET")

	apiRouter.HandleFunc("/forecast", s.handlers.Forecast).Methods("POST")
	apiRouter.HandleFunc("/forecast/csv", s.handlers.ForecastCSV).Methods("POST")

	s.router.NotFoundHandler = http.HandlerFunc(s.handlers.NotFound)
}

// setupMiddleware sets up HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.metricsMiddleware)
	if s.config.EnableCORS {
		s.router.Use(s.corsMiddleware)
	}
	s.router.Use(s.requestSizeLimitMiddleware)
}

// setupMetricsServer sets up the metrics server
func (s *Server) setupMetricsServer() {
	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	metricsRouter.HandleFunc("/health", s.handlers.Health).Methods("GET")

	s.metricsServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.MetricsPort),
		Handler:      metricsRouter,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// GetRouter returns the HTTP router
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// GetConfig returns the server configuration
func (s *Server) GetConfig() *Config {
	return s.config
}
