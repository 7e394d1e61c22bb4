package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/promptbay/internal/domain"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/metrics"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/source"
	"github.com/timmy/promptbay/internal/source/snapshot"
	"github.com/timmy/promptbay/internal/storage"
)

// SeedService loads catalog sources into the prompt repository.
type SeedService struct {
	promptRepo *repository.PromptRepository
	logger     *logger.Logger
	batchSize  int
}

// NewSeedService creates a new seed service.
func NewSeedService(promptRepo *repository.PromptRepository, log *logger.Logger, batchSize int) *SeedService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SeedService{
		promptRepo: promptRepo,
		logger:     log,
		batchSize:  batchSize,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *SeedService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// SeedStats holds statistics for a seeding run.
type SeedStats struct {
	Total     int
	Inserted  int
	Updated   int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
}

// Seed upserts every item of src by id. A failing item is counted and
// skipped; a failing fetch aborts the run.
func (s *SeedService) Seed(ctx context.Context, src source.Source) (*SeedStats, error) {
	ctx = logger.SetSource(ctx, src.GetSourceID())
	stats := &SeedStats{StartTime: time.Now()}

	s.log(ctx).WithField("name", src.GetDisplayName()).Info("Starting catalog seed")

	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		items, next, err := src.FetchBatch(ctx, cursor, s.batchSize)
		if err != nil {
			return stats, fmt.Errorf("failed to fetch batch from %s: %w", src.GetSourceID(), err)
		}

		for i := range items {
			stats.Total++
			created, err := s.seedItem(ctx, &items[i])
			switch {
			case err != nil:
				stats.Failed++
				metrics.SeededPrompts.WithLabelValues(src.GetSourceID(), "failed").Inc()
				s.log(ctx).WithFields(logger.Fields{
					logger.FieldPromptID: items[i].ID,
				}).WithError(err).Warn("Failed to seed prompt")
			case created:
				stats.Inserted++
				metrics.SeededPrompts.WithLabelValues(src.GetSourceID(), "inserted").Inc()
			default:
				stats.Updated++
				metrics.SeededPrompts.WithLabelValues(src.GetSourceID(), "updated").Inc()
			}
		}

		if next == "" || len(items) == 0 {
			break
		}
		cursor = next
	}

	stats.EndTime = time.Now()
	logger.With(logger.Fields{
		"inserted": stats.Inserted,
		"updated":  stats.Updated,
		"failed":   stats.Failed,
	}).WithCount(stats.Total).WithDuration(stats.EndTime.Sub(stats.StartTime).Milliseconds()).Info(ctx, "Catalog seed completed")

	return stats, nil
}

func (s *SeedService) seedItem(ctx context.Context, item *source.PromptItem) (bool, error) {
	p, err := PromptFromItem(item)
	if err != nil {
		return false, err
	}
	return s.promptRepo.Upsert(ctx, p)
}

// PromptFromItem converts a source item into an active Prompt.
func PromptFromItem(item *source.PromptItem) (*domain.Prompt, error) {
	id := strings.TrimSpace(item.ID)
	switch {
	case id == "":
		return nil, fmt.Errorf("prompt id is required")
	case strings.TrimSpace(item.Title) == "":
		return nil, fmt.Errorf("prompt %s: title is required", id)
	case strings.TrimSpace(item.Text) == "":
		return nil, fmt.Errorf("prompt %s: text is required", id)
	}

	return &domain.Prompt{
		ID:          id,
		Title:       strings.TrimSpace(item.Title),
		Description: item.Description,
		Text:        item.Text,
		Tool:        strings.TrimSpace(item.Tool),
		Upvotes:     item.Upvotes,
		Contributor: domain.Contributor{
			Name:    item.Contributor.Name,
			Profile: item.Contributor.Profile,
		},
		Tags:       domain.StringArray(item.Tags),
		Categories: domain.StringArray(item.Categories),
		Featured:   item.Featured,
		Status:     domain.PromptStatusActive,
	}, nil
}

// ExportSnapshot uploads every active prompt to store under snapshot.Key
// and returns the object URL.
func (s *SeedService) ExportSnapshot(ctx context.Context, store storage.ObjectStorage) (string, error) {
	prompts, err := s.promptRepo.ListAllActive(ctx)
	if err != nil {
		return "", err
	}

	items := make([]source.PromptItem, 0, len(prompts))
	for i := range prompts {
		items = append(items, ItemFromPrompt(&prompts[i]))
	}
	snap := snapshot.New(items)

	size, err := snapshot.Write(ctx, store, snap)
	if err != nil {
		return "", fmt.Errorf("failed to export snapshot: %w", err)
	}
	logger.With(logger.Fields{logger.FieldSize: size}).WithCount(snap.Total).Info(ctx, "Catalog snapshot exported")
	return store.GetURL(snapshot.Key), nil
}

// ItemFromPrompt converts a Prompt back into its manifest form.
func ItemFromPrompt(p *domain.Prompt) source.PromptItem {
	return source.PromptItem{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Text:        p.Text,
		Tool:        p.Tool,
		Upvotes:     p.Upvotes,
		Contributor: source.Contributor{
			Name:    p.Contributor.Name,
			Profile: p.Contributor.Profile,
		},
		Tags:       []string(p.Tags),
		Categories: []string(p.Categories),
		Featured:   p.Featured,
	}
}
