package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/timmy/promptbay/internal/config"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/source/builtin"
	"github.com/timmy/promptbay/internal/storage"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// seededCatalog returns a catalog service over the builtin seed set.
func seededCatalog(t *testing.T) (*CatalogService, *repository.PromptRepository) {
	t.Helper()
	repo := repository.NewPromptRepository(openTestDB(t))
	_, err := NewSeedService(repo, logger.GetDefault(), 4).Seed(context.Background(), builtin.NewAdapter())
	require.NoError(t, err)
	return NewCatalogService(repo, repository.NewMemoryVoteLedger(), logger.GetDefault(), nil), repo
}

// memStorage is the in-memory backend with a switch that makes uploads fail.
type memStorage struct {
	*storage.MemoryStorage
	failPut bool
}

func newMemStorage() *memStorage {
	return &memStorage{MemoryStorage: storage.NewMemoryStorage("test")}
}

func (m *memStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if m.failPut {
		return fmt.Errorf("upload refused")
	}
	return m.MemoryStorage.Upload(ctx, key, reader, size, contentType)
}

// get returns the stored bytes of key, or nil.
func (m *memStorage) get(key string) []byte {
	rc, err := m.Download(context.Background(), key)
	if err != nil {
		return nil
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return data
}
