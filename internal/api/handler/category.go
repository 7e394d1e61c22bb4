package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptbay/internal/service"
)

// CategoryHandler handles the category browser endpoints.
type CategoryHandler struct {
	catalogService *service.CatalogService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(catalogService *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalogService: catalogService}
}

// ListCategories handles GET /api/v1/categories.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories := h.catalogService.Categories()
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      len(categories),
	})
}

// BrowseCategory handles GET /api/v1/categories/:id/prompts.
func (h *CategoryHandler) BrowseCategory(c *gin.Context) {
	panel, err := h.catalogService.Browse(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to browse category: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, panel)
}
