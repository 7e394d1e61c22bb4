package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/source"
	"github.com/timmy/promptbay/internal/source/builtin"
	"github.com/timmy/promptbay/internal/source/manifest"
	"github.com/timmy/promptbay/internal/source/snapshot"
)

func TestSeedService_SeedIsIdempotent(t *testing.T) {
	repo := repository.NewPromptRepository(openTestDB(t))
	svc := NewSeedService(repo, logger.GetDefault(), 5)
	ctx := context.Background()

	stats, err := svc.Seed(ctx, builtin.NewAdapter())
	require.NoError(t, err)
	require.Equal(t, 13, stats.Total)
	require.Equal(t, 13, stats.Inserted)
	require.Zero(t, stats.Failed)

	_, err = repo.IncrementUpvotes(ctx, "4")
	require.NoError(t, err)

	stats, err = svc.Seed(ctx, builtin.NewAdapter())
	require.NoError(t, err)
	require.Equal(t, 13, stats.Updated)
	require.Zero(t, stats.Inserted)

	p, err := repo.GetByID(ctx, "4")
	require.NoError(t, err)
	require.Equal(t, 1, p.Upvotes, "reseeding must keep collected upvotes")
}

func TestSeedService_CountsInvalidItems(t *testing.T) {
	repo := repository.NewPromptRepository(openTestDB(t))
	svc := NewSeedService(repo, logger.GetDefault(), 0)

	data := []byte(`{"id":"1","title":"Story Generator","text":"Write a story","tool":"Claude"}
{"id":"2","title":"No text","tool":"Claude"}
`)
	stats, err := svc.Seed(context.Background(), manifest.NewBytesAdapter("test", "Test", data))
	require.NoError(t, err)
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.Inserted)
	require.Equal(t, 1, stats.Failed)
}

func TestPromptFromItem(t *testing.T) {
	p, err := PromptFromItem(&source.PromptItem{
		ID:          " 7 ",
		Title:       " SEO Expert ",
		Text:        "body",
		Tool:        "Claude",
		Contributor: source.Contributor{Name: "Ann", Profile: "https://example.com"},
		Categories:  []string{"seo"},
	})
	require.NoError(t, err)
	require.Equal(t, "7", p.ID)
	require.Equal(t, "SEO Expert", p.Title)
	require.Equal(t, "Ann", p.Contributor.Name)
	require.True(t, p.HasCategory("SEO"))

	_, err = PromptFromItem(&source.PromptItem{ID: "8", Text: "body"})
	require.Error(t, err)
}

func TestSeedService_ExportSnapshot(t *testing.T) {
	repo := repository.NewPromptRepository(openTestDB(t))
	svc := NewSeedService(repo, logger.GetDefault(), 0)
	ctx := context.Background()

	_, err := svc.Seed(ctx, builtin.NewAdapter())
	require.NoError(t, err)

	store := newMemStorage()
	url, err := svc.ExportSnapshot(ctx, store)
	require.NoError(t, err)
	require.Equal(t, store.GetURL(snapshot.Key), url)

	var snap snapshot.Snapshot
	require.NoError(t, json.Unmarshal(store.get(snapshot.Key), &snap))
	require.Equal(t, 13, snap.Total)
	require.Len(t, snap.Prompts, 13)
}

func TestSeedService_ImportSnapshotRestoresCatalog(t *testing.T) {
	ctx := context.Background()
	store := newMemStorage()

	origin := repository.NewPromptRepository(openTestDB(t))
	exporter := NewSeedService(origin, logger.GetDefault(), 0)
	_, err := exporter.Seed(ctx, builtin.NewAdapter())
	require.NoError(t, err)
	_, err = origin.IncrementUpvotes(ctx, "4")
	require.NoError(t, err)
	_, err = exporter.ExportSnapshot(ctx, store)
	require.NoError(t, err)

	target := repository.NewPromptRepository(openTestDB(t))
	src, err := snapshot.NewSource(ctx, store)
	require.NoError(t, err)
	stats, err := NewSeedService(target, logger.GetDefault(), 5).Seed(ctx, src)
	require.NoError(t, err)
	require.Equal(t, 13, stats.Inserted)
	require.Zero(t, stats.Failed)

	featured, err := target.ListActive(ctx, true)
	require.NoError(t, err)
	require.Len(t, featured, 3)

	before, err := origin.GetByID(ctx, "4")
	require.NoError(t, err)
	after, err := target.GetByID(ctx, "4")
	require.NoError(t, err)
	require.Equal(t, before.Upvotes, after.Upvotes)
}
