package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/promptbay/internal/bootstrap"
	"github.com/timmy/promptbay/internal/config"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/service"
	"github.com/timmy/promptbay/internal/source"
	"github.com/timmy/promptbay/internal/source/builtin"
	"github.com/timmy/promptbay/internal/source/manifest"
	"github.com/timmy/promptbay/internal/source/snapshot"
	"github.com/timmy/promptbay/internal/storage"
)

const usage = `Usage: catalog <command> [flags]

Commands:
  import   upsert prompts from the builtin set, a JSONL manifest (-manifest)
           or the exported snapshot in object storage (-snapshot)
  export   upload a JSON snapshot of the active catalog to object storage
`

func main() {
	// Initialize logger first (with env defaults)
	appLogger := logger.New(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "Path to config file")
	manifestPath := fs.String("manifest", "", "JSONL manifest to import (default: builtin set)")
	fromSnapshot := fs.Bool("snapshot", false, "Import "+snapshot.Key+" from object storage")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	appLogger = bootstrap.NewLogger(&cfg.Log, "promptbay-catalog")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	seedService := service.NewSeedService(repository.NewPromptRepository(db), appLogger, cfg.Catalog.SeedBatch)

	switch command {
	case "import":
		if *fromSnapshot && *manifestPath != "" {
			appLogger.Fatal("-manifest and -snapshot are mutually exclusive")
		}

		var src source.Source = builtin.NewAdapter()
		switch {
		case *fromSnapshot:
			store := mustObjectStorage(ctx, cfg, appLogger)
			snap, err := snapshot.NewSource(ctx, store)
			if err != nil {
				appLogger.WithError(err).Fatal("Failed to read snapshot")
			}
			total, _ := snap.GetTotalCount()
			appLogger.WithFields(logger.Fields{
				"key":     snapshot.Key,
				"valid":   total,
				"skipped": snap.Skipped(),
			}).Info("Snapshot loaded")
			src = snap
		case *manifestPath != "":
			m := manifest.NewAdapter(*manifestPath)
			total, err := m.GetTotalCount()
			if err != nil {
				appLogger.WithError(err).Fatal("Failed to read manifest")
			}
			appLogger.WithFields(logger.Fields{
				"manifest": *manifestPath,
				"valid":    total,
				"skipped":  m.Skipped(),
			}).Info("Manifest loaded")
			src = m
		}

		stats, err := seedService.Seed(ctx, src)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to import catalog")
		}
		appLogger.WithFields(logger.Fields{
			"total":    stats.Total,
			"inserted": stats.Inserted,
			"updated":  stats.Updated,
			"failed":   stats.Failed,
		}).Info("Import completed")

	case "export":
		store := mustObjectStorage(ctx, cfg, appLogger)
		url, err := seedService.ExportSnapshot(ctx, store)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to export catalog")
		}
		appLogger.WithField("url", url).Info("Export completed")

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}
}

func mustObjectStorage(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) storage.ObjectStorage {
	store, err := bootstrap.NewObjectStorage(ctx, &cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if store == nil {
		appLogger.Fatal("Object storage is disabled, set storage.enabled")
	}
	return store
}
