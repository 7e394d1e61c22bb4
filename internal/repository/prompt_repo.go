package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/promptbay/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPromptNotFound is returned when no prompt has the requested id.
var ErrPromptNotFound = errors.New("prompt not found")

// PromptRepository handles prompt data operations.
type PromptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a new PromptRepository.
func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// Upsert creates the prompt or overwrites the catalog fields of an existing
// one. The upvote counter of an existing row is left alone.
func (r *PromptRepository) Upsert(ctx context.Context, prompt *domain.Prompt) (created bool, err error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Prompt{}).Where("id = ?", prompt.ID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check prompt %s: %w", prompt.ID, err)
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "text", "tool",
			"contributor_name", "contributor_profile",
			"tags", "categories", "featured", "status", "updated_at",
		}),
	}).Create(prompt).Error
	if err != nil {
		return false, fmt.Errorf("failed to upsert prompt %s: %w", prompt.ID, err)
	}
	return count == 0, nil
}

// GetByID retrieves a prompt by its ID.
func (r *PromptRepository) GetByID(ctx context.Context, id string) (*domain.Prompt, error) {
	var prompt domain.Prompt
	if err := r.db.WithContext(ctx).First(&prompt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}
	return &prompt, nil
}

// ListActive returns active prompts in insertion order. featured selects the
// showcase set (true) or the regular listing (false).
func (r *PromptRepository) ListActive(ctx context.Context, featured bool) ([]domain.Prompt, error) {
	var prompts []domain.Prompt
	if err := r.db.WithContext(ctx).
		Where("status = ? AND featured = ?", domain.PromptStatusActive, featured).
		Order("created_at ASC, id ASC").
		Find(&prompts).Error; err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return prompts, nil
}

// ListAllActive returns every active prompt, featured or not.
func (r *PromptRepository) ListAllActive(ctx context.Context) ([]domain.Prompt, error) {
	var prompts []domain.Prompt
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.PromptStatusActive).
		Order("created_at ASC, id ASC").
		Find(&prompts).Error; err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return prompts, nil
}

// IncrementUpvotes adds one upvote and returns the new count.
func (r *PromptRepository) IncrementUpvotes(ctx context.Context, id string) (int, error) {
	var upvotes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Prompt{}).
			Where("id = ?", id).
			UpdateColumn("upvotes", gorm.Expr("upvotes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPromptNotFound
		}
		var updated domain.Prompt
		if err := tx.Select("upvotes").First(&updated, "id = ?", id).Error; err != nil {
			return err
		}
		upvotes = updated.Upvotes
		return nil
	})
	if err != nil {
		return 0, err
	}
	return upvotes, nil
}

// Count returns the number of prompts with the given status.
func (r *PromptRepository) Count(ctx context.Context, status domain.PromptStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Prompt{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
