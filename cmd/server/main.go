package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/heartguard-server/internal/api"
	"github.com/heartguard-server/internal/cache"
	"github.com/heartguard-server/internal/config"
	"github.com/heartguard-server/internal/database"
	"github.com/heartguard-server/internal/domain"
	"github.com/heartguard-server/internal/events"
	"github.com/heartguard-server/internal/repository"
	"github.com/heartguard-server/internal/service"
	"github.com/heartguard-server/pkg/model"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
	}).Info("Starting HeartGuard server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Assessment storage
	store, db, err := openStore(ctx, configManager, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open assessment storage")
	}
	defer store.Close()
	if db != nil {
		defer db.Close()
	}

	// Result cache (optional)
	var resultCache domain.ResultCache
	if cfg.Cache.Enabled {
		c, err := cache.New(cfg.Cache, logger)
		if err != nil {
			logger.WithError(err).Warn("Result cache unavailable, continuing without it")
		} else {
			resultCache = c
			defer c.Close()
		}
	}

	// Event stream (optional)
	var publisher domain.EventPublisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		p, err := events.NewPublisher(cfg.Events, logger)
		if err != nil {
			logger.WithError(err).Warn("Event broker unavailable, events disabled")
		} else {
			publisher = p
			defer p.Close()
		}
	}

	// Classifier artifact. The loader resolves lazily; the server starts
	// and serves validation requests even when the artifact is missing.
	loader := model.NewLoader(cfg.Model, logger)
	if _, err := loader.Load(ctx); err != nil {
		logger.WithError(err).Warn("Classifier artifact not resolved yet, predictions deferred")
	}

	assessments := service.NewAssessmentService(logger, loader, store, resultCache, publisher)

	server := api.NewServer(configManager, assessments, loader, logger)
	if db != nil {
		server.RegisterHealthCheck("database", db)
	}
	if c, ok := resultCache.(*cache.ResultCache); ok {
		server.RegisterHealthCheck("cache", api.HealthCheckFunc(c.Ping))
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// openStore opens the configured assessment store. For PostgreSQL it also
// runs pending migrations and returns the pgx pool used for health checks.
func openStore(ctx context.Context, configManager *config.Manager, logger *logrus.Logger) (domain.AssessmentStore, *database.DB, error) {
	cfg := configManager.GetConfig()

	if cfg.Database.Driver == "sqlite" {
		store, err := repository.NewSQLiteStore(cfg.Database.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.WithField("path", cfg.Database.SQLitePath).Info("Using SQLite assessment storage")
		return store, nil, nil
	}

	runner, err := database.NewMigrationRunner(configManager.GetDatabaseURL(), cfg.Database.MigrationsPath, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := runner.Up(ctx); err != nil {
		runner.Close()
		return nil, nil, err
	}
	runner.Close()

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}

	store, err := repository.NewPostgresStoreFromURL(configManager.GetDatabaseConnectionString(), logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}
