package repository

import (
	"context"
	"fmt"

	"github.com/timmy/promptbay/internal/domain"
	"gorm.io/gorm"
)

// SubmissionRepository stores submitted prompts awaiting review.
type SubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission record.
func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to store submission: %w", err)
	}
	return nil
}

// UpdateStatus records the forwarding outcome of a submission.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus, forwardErr string) error {
	return r.db.WithContext(ctx).Model(&domain.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"forward_error": forwardErr,
		}).Error
}

// SetArchiveKey records where the submission JSON was archived.
func (r *SubmissionRepository) SetArchiveKey(ctx context.Context, id, key string) error {
	return r.db.WithContext(ctx).Model(&domain.Submission{}).
		Where("id = ?", id).
		Update("archive_key", key).Error
}

// GetByID retrieves a submission by its ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	var s domain.Submission
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CountByStatus counts submissions by status.
func (r *SubmissionRepository) CountByStatus(ctx context.Context, status domain.SubmissionStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Submission{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
