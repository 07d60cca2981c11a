// Package api exposes the assessment workflow over HTTP. Routes are
// versioned under /api/v1; /health reports component readiness; /ws/validate
// streams validation results over a websocket for live form feedback.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/heartguard-server/internal/domain"
	"github.com/heartguard-server/internal/middleware"
	"github.com/heartguard-server/internal/service"
)

// HealthChecker reports liveness of one backing component.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthCheckFunc adapts a function to the HealthChecker interface.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Health(ctx context.Context) error { return f(ctx) }

// ModelStatus reports whether the classifier artifact has been resolved.
type ModelStatus interface {
	Ready() bool
	Version() string
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	assessments   *service.AssessmentService
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server

	model  ModelStatus
	checks map[string]HealthChecker
}

// NewServer creates a new HTTP server instance
func NewServer(
	configManager domain.ConfigManager,
	assessments *service.AssessmentService,
	model ModelStatus,
	logger *logrus.Logger,
) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(corsMiddleware())
	if cfg.Server.RateLimit > 0 {
		router.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	}

	server := &Server{
		configManager: configManager,
		assessments:   assessments,
		logger:        logger,
		router:        router,
		model:         model,
		checks:        make(map[string]HealthChecker),
	}

	server.setupRoutes()

	return server
}

// RegisterHealthCheck adds a named component to the /health report.
func (s *Server) RegisterHealthCheck(name string, check HealthChecker) {
	s.checks[name] = check
}

// Handler exposes the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/assess", s.handleAssess)
		v1.POST("/validate", s.handleValidate)
		v1.GET("/assessments", s.handleListAssessments)
		v1.GET("/assessments/:id", s.handleGetAssessment)
		v1.GET("/guidelines", s.handleGuidelines)
	}

	s.router.GET("/ws/validate", s.handleValidateSocket)
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
