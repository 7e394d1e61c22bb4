package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptbay/internal/domain"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/service"
)

// PromptHandler handles prompt listing and upvote endpoints.
type PromptHandler struct {
	catalogService *service.CatalogService
}

// NewPromptHandler creates a new prompt handler.
func NewPromptHandler(catalogService *service.CatalogService) *PromptHandler {
	return &PromptHandler{catalogService: catalogService}
}

// ListPrompts handles GET /api/v1/prompts.
func (h *PromptHandler) ListPrompts(c *gin.Context) {
	q := listQuery(c)
	results, err := h.catalogService.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list prompts: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
		"sort":    q.NormalizedSort(),
	})
}

// ListFeatured handles GET /api/v1/prompts/featured.
func (h *PromptHandler) ListFeatured(c *gin.Context) {
	results, err := h.catalogService.Featured(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list featured prompts: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}

// GetPrompt handles GET /api/v1/prompts/:id.
func (h *PromptHandler) GetPrompt(c *gin.Context) {
	prompt, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, prompt)
}

// GetPromptText handles GET /api/v1/prompts/:id/text and returns the bare
// prompt body for copying.
func (h *PromptHandler) GetPromptText(c *gin.Context) {
	prompt, ok := h.lookup(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, prompt.Text)
}

// Upvote handles POST /api/v1/prompts/:id/upvote. Votes are keyed by
// client IP.
func (h *PromptHandler) Upvote(c *gin.Context) {
	id := c.Param("id")
	upvotes, err := h.catalogService.Upvote(c.Request.Context(), id, c.ClientIP())
	if err != nil {
		status, body := upvoteError(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      id,
		"upvotes": upvotes,
	})
}

// ListTools handles GET /api/v1/tools.
func (h *PromptHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tools": domain.Tools,
		"total": len(domain.Tools),
	})
}

func (h *PromptHandler) lookup(c *gin.Context) (*domain.Prompt, bool) {
	prompt, err := h.catalogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPromptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Prompt not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get prompt: " + err.Error(),
		})
		return nil, false
	}
	return prompt, true
}

// upvoteError maps an Upvote error to a status and JSON body.
func upvoteError(err error) (int, gin.H) {
	switch {
	case errors.Is(err, repository.ErrPromptNotFound):
		return http.StatusNotFound, gin.H{"error": "Prompt not found"}
	case errors.Is(err, service.ErrAlreadyUpvoted):
		return http.StatusConflict, gin.H{"error": service.AlreadyUpvotedMessage}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Upvote failed: " + err.Error()}
	}
}
