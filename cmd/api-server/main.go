package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ssbops/ssb-build-server/pkg/api"
	"github.com/ssbops/ssb-build-server/pkg/atlantis"
	"github.com/ssbops/ssb-build-server/pkg/auth"
	"github.com/ssbops/ssb-build-server/pkg/catalog"
	"github.com/ssbops/ssb-build-server/pkg/config"
	"github.com/ssbops/ssb-build-server/pkg/database"
	"github.com/ssbops/ssb-build-server/pkg/database/repositories"
	"github.com/ssbops/ssb-build-server/pkg/logging"
	"github.com/ssbops/ssb-build-server/pkg/terraform"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Initialize database connection, waiting for the database to come up
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	db, err := database.NewConnectionWithRetry(startupCtx, cfg, database.DefaultRetryConfig(), logger)
	startupCancel()
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(); err != nil {
		_ = db.Close()
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	// Catalog cache and optional vSphere inventory collector
	cache := catalog.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CatalogTTL)
	defer func() {
		_ = cache.Close()
	}()

	var inventory catalog.Inventory
	if cfg.VSphere.URL != "" {
		collector, err := catalog.NewCollector(context.Background(), cfg.VSphere.URL,
			cfg.VSphere.Username, cfg.VSphere.Password, cfg.VSphere.Insecure)
		if err != nil {
			logger.Fatal("failed to connect to vCenter", zap.Error(err))
		}
		inventory = collector
	} else {
		logger.Warn("no vSphere endpoint configured, catalog served from cache only")
	}
	catalogSvc := catalog.NewService(cache, inventory, logger)

	// Atlantis client and config generation
	atlantisClient := atlantis.NewClient(cfg.Atlantis.URL, cfg.Atlantis.Token, cfg.Atlantis.Retries, logger)
	generator := terraform.NewGenerator(logger)
	store := terraform.NewStore(afero.NewOsFs(), cfg.Configs.Dir)

	// Repositories and authentication
	buildRepo := repositories.NewBuildRepository(db.DB)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authSvc := auth.NewService(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash, jwtManager)

	// Initialize API server
	server := api.NewServer(cfg, db, authSvc, jwtManager, buildRepo, catalogSvc, atlantisClient, generator, store, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	// Give the server 30 seconds to finish current requests
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
