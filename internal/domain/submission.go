package domain

import (
	"strings"
	"time"
)

// SubmissionStatus tracks a submission through forwarding.
type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusForwarded SubmissionStatus = "forwarded"
	SubmissionStatusFailed    SubmissionStatus = "failed"
)

// SubmissionForm is the contributor-facing form. JSON names match the
// payload the spreadsheet webhook expects.
type SubmissionForm struct {
	ContributorName string `json:"contributorName" form:"contributorName" validate:"min=2"`
	Email           string `json:"email" form:"email" validate:"email"`
	SocialLink      string `json:"socialLink" form:"socialLink" validate:"url"`
	PromptTitle     string `json:"promptTitle" form:"promptTitle" validate:"min=5"`
	PromptText      string `json:"promptText" form:"promptText" validate:"min=10"`
	AITool          string `json:"aiTool" form:"aiTool" validate:"min=1"`
	CustomAITool    string `json:"customAiTool,omitempty" form:"customAiTool"`
	Tags            string `json:"tags" form:"tags" validate:"min=1"`
}

// TagList splits the comma-separated tags, trimming blanks and dropping empties.
func (f *SubmissionForm) TagList() []string {
	return SplitTags(f.Tags)
}

// SplitTags splits a comma-separated tag string.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Submission is a stored copy of a form awaiting review.
type Submission struct {
	ID              string           `gorm:"type:text;primaryKey" json:"id"`
	ContributorName string           `gorm:"type:text;not null" json:"contributor_name"`
	Email           string           `gorm:"type:text;not null" json:"email"`
	SocialLink      string           `gorm:"type:text" json:"social_link"`
	PromptTitle     string           `gorm:"type:text;not null" json:"prompt_title"`
	PromptText      string           `gorm:"type:text;not null" json:"prompt_text"`
	AITool          string           `gorm:"type:text" json:"ai_tool"`
	CustomAITool    string           `gorm:"type:text" json:"custom_ai_tool,omitempty"`
	Tags            StringArray      `gorm:"type:text" json:"tags"`
	Status          SubmissionStatus `gorm:"type:text;index:idx_submissions_status;default:pending" json:"status"`
	ForwardError    string           `gorm:"type:text" json:"forward_error,omitempty"`
	ArchiveKey      string           `gorm:"type:text" json:"archive_key,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName returns the database table name for Submission.
func (Submission) TableName() string {
	return "submissions"
}

// NewSubmission copies a validated form into a pending Submission.
func NewSubmission(id string, f *SubmissionForm) *Submission {
	return &Submission{
		ID:              id,
		ContributorName: strings.TrimSpace(f.ContributorName),
		Email:           strings.TrimSpace(f.Email),
		SocialLink:      strings.TrimSpace(f.SocialLink),
		PromptTitle:     strings.TrimSpace(f.PromptTitle),
		PromptText:      f.PromptText,
		AITool:          f.AITool,
		CustomAITool:    strings.TrimSpace(f.CustomAITool),
		Tags:            StringArray(f.TagList()),
		Status:          SubmissionStatusPending,
	}
}
