package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptbay/internal/domain"
	"github.com/timmy/promptbay/internal/repository"
	"github.com/timmy/promptbay/internal/service"
	"github.com/timmy/promptbay/internal/web"
)

// PageHandler renders the HTML pages.
type PageHandler struct {
	catalogService    *service.CatalogService
	submissionService *service.SubmissionService
}

// NewPageHandler creates a new page handler.
func NewPageHandler(catalogService *service.CatalogService, submissionService *service.SubmissionService) *PageHandler {
	return &PageHandler{
		catalogService:    catalogService,
		submissionService: submissionService,
	}
}

// Home handles GET /. ?category= selects the category browser panel.
func (h *PageHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()

	category := c.DefaultQuery("category", domain.CategoryAll)
	panel, err := h.catalogService.Browse(ctx, category)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Something went wrong", "Failed to load prompts: "+err.Error())
		return
	}
	featured, err := h.catalogService.Featured(ctx)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Something went wrong", "Failed to load featured prompts: "+err.Error())
		return
	}

	c.HTML(http.StatusOK, web.PageHome, gin.H{
		"Title":      "Discover AI Prompts",
		"Categories": h.catalogService.Categories(),
		"Browse":     panel,
		"Featured":   featured,
	})
}

// Prompts handles GET /prompts.
func (h *PageHandler) Prompts(c *gin.Context) {
	q := listQuery(c)
	results, err := h.catalogService.List(c.Request.Context(), q)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Something went wrong", "Failed to list prompts: "+err.Error())
		return
	}

	c.HTML(http.StatusOK, web.PagePrompts, gin.H{
		"Title":      "Browse Prompts",
		"Query":      q,
		"Sort":       q.NormalizedSort(),
		"Results":    results,
		"Tools":      domain.Tools,
		"Categories": h.catalogService.Categories(),
	})
}

// SubmitForm handles GET /submit.
func (h *PageHandler) SubmitForm(c *gin.Context) {
	form := &domain.SubmissionForm{}
	h.renderSubmit(c, http.StatusOK, form, nil, "", false)
}

// Submit handles POST /submit with a form-encoded body.
func (h *PageHandler) Submit(c *gin.Context) {
	var form domain.SubmissionForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderSubmit(c, http.StatusBadRequest, &form, nil, "Invalid form: "+err.Error(), false)
		return
	}

	_, err := h.submissionService.Submit(c.Request.Context(), &form)
	if err != nil {
		var ferrs service.FieldErrors
		switch {
		case errors.As(err, &ferrs):
			h.renderSubmit(c, http.StatusBadRequest, &form, ferrs, "", false)
		case errors.Is(err, service.ErrWebhookUnavailable):
			h.renderSubmit(c, http.StatusBadGateway, &form, nil, service.SubmitFailedMessage, false)
		default:
			h.renderSubmit(c, http.StatusInternalServerError, &form, nil, "Submission failed: "+err.Error(), false)
		}
		return
	}

	h.renderSubmit(c, http.StatusOK, &domain.SubmissionForm{}, nil, service.SubmitSucceededMessage, true)
}

// Upvote handles POST /prompts/:id/upvote from the HTML forms and redirects
// back to the referring page. A repeated vote is not an error here.
func (h *PageHandler) Upvote(c *gin.Context) {
	_, err := h.catalogService.Upvote(c.Request.Context(), c.Param("id"), c.ClientIP())
	switch {
	case err == nil, errors.Is(err, service.ErrAlreadyUpvoted):
	case errors.Is(err, repository.ErrPromptNotFound):
		h.renderError(c, http.StatusNotFound, "Prompt not found", "The prompt you tried to upvote does not exist.")
		return
	default:
		h.renderError(c, http.StatusInternalServerError, "Something went wrong", "Upvote failed: "+err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, backTo(c.Request.Referer()))
}

func (h *PageHandler) renderSubmit(c *gin.Context, status int, form *domain.SubmissionForm, ferrs service.FieldErrors, message string, success bool) {
	c.HTML(status, web.PageSubmit, gin.H{
		"Title":   "Submit a Prompt",
		"Form":    form,
		"Errors":  ferrs,
		"Preview": h.submissionService.Preview(form),
		"Tools":   domain.Tools,
		"Message": message,
		"Success": success,
	})
}

func (h *PageHandler) renderError(c *gin.Context, status int, title, message string) {
	c.HTML(status, web.PageError, gin.H{
		"Title":   title,
		"Message": message,
	})
}

// backTo keeps only the path and query of a referer so redirects stay on
// this site.
func backTo(referer string) string {
	u, err := url.Parse(referer)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return "/prompts"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
