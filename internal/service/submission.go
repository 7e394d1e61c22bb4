package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/timmy/promptbay/internal/domain"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/metrics"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/storage"
)

// SubmitFailedMessage is shown when the webhook cannot be reached.
const SubmitFailedMessage = "Failed to submit the prompt. Please try again."

// SubmitSucceededMessage is shown after a submission has been accepted.
const SubmitSucceededMessage = "Thank you for your submission! Your prompt has been submitted for review."

// fieldMessages maps "<field>.<tag>" to the message shown next to the field.
var fieldMessages = map[string]string{
	"contributorName.min":      "Contributor name must be at least 2 characters.",
	"email.email":              "Please enter a valid email address.",
	"socialLink.url":           "Please enter a valid URL for your LinkedIn or Twitter profile.",
	"promptTitle.min":          "Prompt title must be at least 5 characters.",
	"promptText.min":           "Prompt text must be at least 10 characters.",
	"aiTool.min":               "Please select an AI tool.",
	"tags.min":                 "Please add at least one tag.",
	"customAiTool.custom_tool": "Please specify the AI tool",
}

// FieldErrors maps form field names to validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid submission: " + strings.Join(fields, ", ")
}

// Preview is the live rendering of a form before it is submitted.
type Preview struct {
	Title           string   `json:"title"`
	Text            string   `json:"text"`
	Tool            string   `json:"tool"`
	ContributorName string   `json:"contributorName"`
	Tags            []string `json:"tags"`
}

// SubmissionService validates, stores, forwards and archives submissions.
type SubmissionService struct {
	submissionRepo *repository.SubmissionRepository
	webhook        *WebhookForwarder
	storage        storage.ObjectStorage
	validate       *validator.Validate
	logger         *logger.Logger
}

// NewSubmissionService creates a new submission service. objectStorage may
// be nil, which disables archiving.
func NewSubmissionService(
	submissionRepo *repository.SubmissionRepository,
	webhook *WebhookForwarder,
	objectStorage storage.ObjectStorage,
	log *logger.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		webhook:        webhook,
		storage:        objectStorage,
		validate:       newFormValidator(),
		logger:         log,
	}
}

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		f := sl.Current().Interface().(domain.SubmissionForm)
		if f.AITool == domain.ToolOther && utf8.RuneCountInString(f.CustomAITool) < 2 {
			sl.ReportError(f.CustomAITool, "customAiTool", "CustomAITool", "custom_tool", "")
		}
	}, domain.SubmissionForm{})
	return v
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *SubmissionService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Validate checks the form and returns per-field messages, or nil when the
// form is acceptable.
func (s *SubmissionService) Validate(form *domain.SubmissionForm) FieldErrors {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("Invalid value for %s.", fe.Field())
		}
		out[fe.Field()] = msg
	}
	return out
}

// Preview renders the form the way the listing would show it, with
// placeholders for empty fields.
func (s *SubmissionService) Preview(form *domain.SubmissionForm) *Preview {
	p := &Preview{
		Title:           strings.TrimSpace(form.PromptTitle),
		Text:            form.PromptText,
		Tool:            domain.DisplayTool(form.AITool, form.CustomAITool),
		ContributorName: strings.TrimSpace(form.ContributorName),
		Tags:            form.TagList(),
	}
	if p.Title == "" {
		p.Title = "Your Prompt Title"
	}
	if strings.TrimSpace(p.Text) == "" {
		p.Text = "Your prompt text will appear here"
	}
	if p.ContributorName == "" {
		p.ContributorName = "Your Name"
	}
	return p
}

// Submit validates the form, stores it, forwards it to the webhook and
// archives it. Validation failures are returned as FieldErrors; an
// unreachable webhook yields an error wrapping ErrWebhookUnavailable after
// the submission has been stored as failed.
func (s *SubmissionService) Submit(ctx context.Context, form *domain.SubmissionForm) (*domain.Submission, error) {
	if ferrs := s.Validate(form); ferrs != nil {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return nil, ferrs
	}

	sub := domain.NewSubmission(uuid.New().String(), form)
	ctx = logger.SetSubmissionID(ctx, sub.ID)
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	forwardErr := s.forward(ctx, sub, form)
	s.archive(ctx, sub)

	metrics.Submissions.WithLabelValues(string(sub.Status)).Inc()
	if forwardErr != nil {
		return sub, forwardErr
	}
	return sub, nil
}

func (s *SubmissionService) forward(ctx context.Context, sub *domain.Submission, form *domain.SubmissionForm) error {
	if s.webhook == nil || !s.webhook.Enabled() {
		s.log(ctx).Warn("Submission webhook not configured, keeping submission pending")
		return nil
	}

	start := time.Now()
	status, err := s.webhook.Forward(ctx, form)
	entry := logger.With(logger.Fields{"http_status": status}).WithDuration(time.Since(start).Milliseconds())
	if err != nil {
		entry.WithStatus(string(domain.SubmissionStatusFailed)).Error(ctx, "Failed to forward submission: %v", err)
		sub.Status = domain.SubmissionStatusFailed
		sub.ForwardError = err.Error()
		if uerr := s.submissionRepo.UpdateStatus(ctx, sub.ID, sub.Status, sub.ForwardError); uerr != nil {
			s.log(ctx).WithError(uerr).Error("Failed to record forward failure")
		}
		return err
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		entry.Warn(ctx, "Submission webhook answered with HTTP %d", status)
	} else {
		entry.Info(ctx, "Submission forwarded")
	}
	sub.Status = domain.SubmissionStatusForwarded
	if err := s.submissionRepo.UpdateStatus(ctx, sub.ID, sub.Status, ""); err != nil {
		s.log(ctx).WithError(err).Error("Failed to record forwarded status")
	}
	return nil
}

func (s *SubmissionService) archive(ctx context.Context, sub *domain.Submission) {
	if s.storage == nil {
		return
	}
	key := fmt.Sprintf("submissions/%s.json", sub.ID)
	size, err := storage.PutJSON(ctx, s.storage, key, sub)
	if err != nil {
		s.log(ctx).WithError(err).Warn("Failed to archive submission")
		return
	}
	sub.ArchiveKey = key
	if err := s.submissionRepo.SetArchiveKey(ctx, sub.ID, key); err != nil {
		s.log(ctx).WithError(err).Warn("Failed to record archive key")
		return
	}
	logger.With(logger.Fields{logger.FieldSize: size}).Debug(ctx, "Submission archived")
}
