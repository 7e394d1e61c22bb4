package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/timmy/promptbay/internal/domain"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/metrics"
	"github.com/timmy/promptbay/internal/repository"
)

// ErrAlreadyUpvoted is returned when a voter upvotes the same prompt twice.
var ErrAlreadyUpvoted = errors.New("prompt already upvoted by this voter")

// AlreadyUpvotedMessage is shown when a repeated upvote is rejected.
const AlreadyUpvotedMessage = "You can only upvote a prompt once from this IP address."

// CatalogConfig holds configuration for the catalog service.
type CatalogConfig struct {
	BrowseLimit  int
	FeaturedSize int
}

// CatalogService serves the prompt listing, category browser and upvotes.
type CatalogService struct {
	promptRepo   *repository.PromptRepository
	votes        repository.VoteLedger
	logger       *logger.Logger
	browseLimit  int
	featuredSize int
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	promptRepo *repository.PromptRepository,
	votes repository.VoteLedger,
	log *logger.Logger,
	cfg *CatalogConfig,
) *CatalogService {
	browseLimit, featuredSize := 3, 3
	if cfg != nil {
		if cfg.BrowseLimit > 0 {
			browseLimit = cfg.BrowseLimit
		}
		if cfg.FeaturedSize > 0 {
			featuredSize = cfg.FeaturedSize
		}
	}
	return &CatalogService{
		promptRepo:   promptRepo,
		votes:        votes,
		logger:       log,
		browseLimit:  browseLimit,
		featuredSize: featuredSize,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *CatalogService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// List runs the listing pipeline over the active, non-featured catalog.
func (s *CatalogService) List(ctx context.Context, q ListQuery) ([]domain.Prompt, error) {
	prompts, err := s.promptRepo.ListActive(ctx, false)
	if err != nil {
		return nil, err
	}
	metrics.Listings.WithLabelValues(q.NormalizedSort()).Inc()

	results := ApplyQuery(prompts, q)
	s.log(ctx).WithFields(logger.Fields{
		"search":   q.Search,
		"tool":     q.Tool,
		"category": q.Category,
		"sort":     q.NormalizedSort(),
		"count":    len(results),
	}).Debug("Listing served")
	return results, nil
}

// Get returns a single prompt, featured or not.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Prompt, error) {
	return s.promptRepo.GetByID(ctx, id)
}

// Featured returns the showcase prompts, most upvoted first.
func (s *CatalogService) Featured(ctx context.Context) ([]domain.Prompt, error) {
	prompts, err := s.promptRepo.ListActive(ctx, true)
	if err != nil {
		return nil, err
	}
	return ApplyQuery(prompts, ListQuery{Sort: SortUpvotes, Limit: s.featuredSize}), nil
}

// Categories returns the shared category list, "all" first.
func (s *CatalogService) Categories() []domain.Category {
	return domain.Categories()
}

// CategoryBrowse is one panel of the home page category browser.
type CategoryBrowse struct {
	Category domain.Category `json:"category"`
	Results  []domain.Prompt `json:"results"`
	Total    int             `json:"total"`
	MoreURL  string          `json:"more_url"`
}

// Browse returns the first few prompts of a category with a link to the
// full listing. Unknown ids yield an empty panel named after the id.
func (s *CatalogService) Browse(ctx context.Context, categoryID string) (*CategoryBrowse, error) {
	cat, ok := domain.LookupCategory(categoryID)
	if !ok {
		cat = domain.Category{ID: categoryID, Name: domain.CategoryName(categoryID)}
	}

	results, err := s.List(ctx, ListQuery{Category: cat.ID, Limit: s.browseLimit})
	if err != nil {
		return nil, err
	}
	return &CategoryBrowse{
		Category: cat,
		Results:  results,
		Total:    len(results),
		MoreURL:  MoreURL(cat.ID),
	}, nil
}

// MoreURL links a category panel to the full listing.
func MoreURL(categoryID string) string {
	if domain.IsAllCategories(categoryID) {
		return "/prompts"
	}
	return "/prompts?" + url.Values{"category": {categoryID}}.Encode()
}

// Upvote records one vote from voter and returns the new count. The ledger
// entry is removed again when the counter cannot be incremented.
func (s *CatalogService) Upvote(ctx context.Context, promptID, voter string) (int, error) {
	ctx = logger.SetPromptID(ctx, promptID)

	if _, err := s.promptRepo.GetByID(ctx, promptID); err != nil {
		if errors.Is(err, repository.ErrPromptNotFound) {
			metrics.Upvotes.WithLabelValues("not_found").Inc()
		}
		return 0, err
	}

	first, err := s.votes.Record(ctx, promptID, voter)
	if err != nil {
		metrics.Upvotes.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("failed to record vote: %w", err)
	}
	if !first {
		metrics.Upvotes.WithLabelValues("duplicate").Inc()
		return 0, ErrAlreadyUpvoted
	}

	upvotes, err := s.promptRepo.IncrementUpvotes(ctx, promptID)
	if err != nil {
		if ferr := s.votes.Forget(ctx, promptID, voter); ferr != nil {
			s.log(ctx).WithError(ferr).Warn("Failed to roll back vote")
		}
		metrics.Upvotes.WithLabelValues("error").Inc()
		return 0, err
	}

	metrics.Upvotes.WithLabelValues("accepted").Inc()
	logger.With(logger.Fields{logger.FieldVoter: voter}).WithCount(upvotes).Info(ctx, "Prompt upvoted")
	return upvotes, nil
}

// CatalogStats summarizes the catalog for the health endpoint.
type CatalogStats struct {
	Active  int64 `json:"active"`
	Pending int64 `json:"pending"`
}

// Stats counts prompts by status.
func (s *CatalogService) Stats(ctx context.Context) (*CatalogStats, error) {
	active, err := s.promptRepo.Count(ctx, domain.PromptStatusActive)
	if err != nil {
		return nil, err
	}
	pending, err := s.promptRepo.Count(ctx, domain.PromptStatusPending)
	if err != nil {
		return nil, err
	}
	return &CatalogStats{Active: active, Pending: pending}, nil
}
