package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ssbops/ssb-build-server/pkg/atlantis"
	"github.com/ssbops/ssb-build-server/pkg/auth"
	"github.com/ssbops/ssb-build-server/pkg/catalog"
	"github.com/ssbops/ssb-build-server/pkg/config"
	"github.com/ssbops/ssb-build-server/pkg/database"
	"github.com/ssbops/ssb-build-server/pkg/database/repositories"
	"github.com/ssbops/ssb-build-server/pkg/terraform"
)

// Server represents the build server API
type Server struct {
	config     *config.Config
	db         *database.DB
	authSvc    *auth.Service
	jwtManager *auth.JWTManager
	buildRepo  *repositories.BuildRepository
	catalogSvc *catalog.Service
	atlantis   *atlantis.Client
	generator  *terraform.Generator
	store      *terraform.Store
	logger     *zap.Logger
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new API server instance
func NewServer(cfg *config.Config, db *database.DB, authSvc *auth.Service, jwtManager *auth.JWTManager, buildRepo *repositories.BuildRepository, catalogSvc *catalog.Service, atlantisClient *atlantis.Client, generator *terraform.Generator, store *terraform.Store, logger *zap.Logger) *Server {
	server := &Server{
		config:     cfg,
		db:         db,
		authSvc:    authSvc,
		jwtManager: jwtManager,
		buildRepo:  buildRepo,
		catalogSvc: catalogSvc,
		atlantis:   atlantisClient,
		generator:  generator,
		store:      store,
		logger:     logger,
	}

	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router = gin.New()

	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())
	s.router.Use(s.errorHandlerMiddleware())

	// Health endpoints
	s.router.GET("/healthz", s.healthHandler)
	s.router.GET("/readyz", s.readinessHandler)

	v1 := s.router.Group("/api/v1")
	{
		// Public endpoints (no authentication required)
		v1.GET("/version", s.versionHandler)
		v1.POST("/sessions", s.loginHandler)

		// Webhooks authenticate with a shared secret, not a JWT
		v1.POST("/webhook", s.webhookHandler)

		// Protected endpoints (authentication required)
		protected := v1.Group("/")
		protected.Use(auth.JWTMiddleware(s.jwtManager))
		{
			protected.POST("/validate", s.validateHandler)
			protected.GET("/catalog", s.catalogHandler)

			protected.POST("/builds", s.createBuildHandler)
			protected.GET("/builds", s.listBuildsHandler)
			protected.GET("/builds/:build-id", s.getBuildHandler)
			protected.POST("/builds/:build-id/apply", s.applyBuildHandler)

			protected.GET("/configs", s.listConfigsHandler)
			protected.POST("/configs/:name/copy", s.copyConfigHandler)
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	address := fmt.Sprintf(":%d", s.config.API.Port)
	s.logger.Info("starting API server", zap.String("address", address))

	s.httpServer = &http.Server{
		Addr:         address,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.config.API.TLSCert != "" && s.config.API.TLSKey != "" {
		if _, err := os.Stat(s.config.API.TLSCert); err != nil {
			return fmt.Errorf("TLS certificate file error: %w", err)
		}
		if _, err := os.Stat(s.config.API.TLSKey); err != nil {
			return fmt.Errorf("TLS key file error: %w", err)
		}
		return s.httpServer.ListenAndServeTLS(s.config.API.TLSCert, s.config.API.TLSKey)
	}

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// GetRouter returns the gin router (useful for testing)
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
