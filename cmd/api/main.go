package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/timmy/promptbay/internal/api"
	"github.com/timmy/promptbay/internal/bootstrap"
	"github.com/timmy/promptbay/internal/config"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/metrics"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/service"
	"github.com/timmy/promptbay/internal/source"
	"github.com/timmy/promptbay/internal/source/builtin"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	appLogger := bootstrap.NewLogger(&cfg.Log, "promptbay-api")
	defer logger.Sync()

	ctx := context.Background()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	promptRepo := repository.NewPromptRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	votes, closeVotes, err := bootstrap.NewVoteLedger(ctx, &cfg.Votes, &cfg.Redis)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize vote ledger")
	}
	defer closeVotes()

	objectStorage, err := bootstrap.NewObjectStorage(ctx, &cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if objectStorage == nil {
		appLogger.Info("Object storage disabled, submissions will not be archived")
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	catalogService := service.NewCatalogService(promptRepo, votes, appLogger, &service.CatalogConfig{
		BrowseLimit:  cfg.Catalog.BrowseLimit,
		FeaturedSize: cfg.Catalog.FeaturedSize,
	})
	seedService := service.NewSeedService(promptRepo, appLogger, cfg.Catalog.SeedBatch)
	webhook := service.NewWebhookForwarder(&service.WebhookConfig{
		URL:     cfg.Webhook.URL,
		Timeout: cfg.Webhook.Timeout,
		Retries: cfg.Webhook.Retries,
	})
	if !webhook.Enabled() {
		appLogger.Warn("webhook.url is empty, submissions will stay pending")
	}
	submissionService := service.NewSubmissionService(submissionRepo, webhook, objectStorage, appLogger)

	sources := map[string]source.Source{
		builtin.SourceID: builtin.NewAdapter(),
	}

	if cfg.Catalog.AutoSeed {
		seedCtx := logger.SetComponent(appLogger.WithContext(ctx), "seed")
		if _, err := seedService.Seed(seedCtx, sources[builtin.SourceID]); err != nil {
			appLogger.WithError(err).Fatal("Failed to seed catalog")
		}
	}

	router, err := api.SetupRouter(&api.Services{
		Catalog:    catalogService,
		Submission: submissionService,
		Seed:       seedService,
		Sources:    sources,
		Storage:    objectStorage,
	}, &cfg.Server, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to set up router")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
