// Package bootstrap builds the shared infrastructure of the commands from
// the loaded configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/timmy/promptbay/internal/config"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/storage"
)

// NewLogger creates a logger from the log section and installs it as the
// default logger.
func NewLogger(cfg *config.LogConfig, serviceName string) *logger.Logger {
	if serviceName == "" {
		serviceName = cfg.ServiceName
	}
	l := logger.New(&logger.Config{
		Level:       cfg.Level,
		Format:      cfg.Format,
		ServiceName: serviceName,
		Environment: cfg.Environment,
		LogFile:     cfg.File,
		LogFileOnly: cfg.FileOnly,
		MaxSize:     cfg.MaxSize,
		MaxBackups:  cfg.MaxBackups,
		MaxAge:      cfg.MaxAge,
		Compress:    cfg.Compress,
	})
	logger.SetDefaultLogger(l)
	return l
}

// NewVoteLedger returns the configured ledger. The returned close function
// is never nil.
func NewVoteLedger(ctx context.Context, votes *config.VotesConfig, rc *config.RedisConfig) (repository.VoteLedger, func() error, error) {
	switch votes.Backend {
	case "", "memory":
		return repository.NewMemoryVoteLedger(), func() error { return nil }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		return repository.NewRedisVoteLedger(client, votes.KeyPrefix, votes.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown vote backend: %s", votes.Backend)
	}
}

// NewObjectStorage returns nil when storage is disabled. Otherwise the bucket
// is created if needed.
func NewObjectStorage(ctx context.Context, cfg *config.StorageConfig) (storage.ObjectStorage, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store, err := storage.NewStorage(storage.FromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure storage bucket: %w", err)
	}
	return store, nil
}
