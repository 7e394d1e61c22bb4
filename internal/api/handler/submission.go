package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptbay/internal/domain"
	"github.com/timmy/promptbay/internal/service"
)

// SubmissionHandler handles prompt submissions.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// CreateSubmission handles POST /api/v1/submissions.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var form domain.SubmissionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	sub, err := h.submissionService.Submit(c.Request.Context(), &form)
	if err != nil {
		status, body := submitError(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      sub.ID,
		"status":  sub.Status,
		"message": service.SubmitSucceededMessage,
	})
}

// PreviewSubmission handles POST /api/v1/submissions/preview.
func (h *SubmissionHandler) PreviewSubmission(c *gin.Context) {
	var form domain.SubmissionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"preview": h.submissionService.Preview(&form),
		"fields":  h.submissionService.Validate(&form),
	})
}

// submitError maps a Submit error to a status and JSON body.
func submitError(err error) (int, gin.H) {
	var ferrs service.FieldErrors
	switch {
	case errors.As(err, &ferrs):
		return http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": ferrs}
	case errors.Is(err, service.ErrWebhookUnavailable):
		return http.StatusBadGateway, gin.H{"error": service.SubmitFailedMessage}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Submission failed: " + err.Error()}
	}
}
