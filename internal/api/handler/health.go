package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptbay/internal/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	catalogService *service.CatalogService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(catalogService *service.CatalogService) *HealthHandler {
	return &HealthHandler{catalogService: catalogService}
}

// Health returns the health status of the service and the catalog size.
// A failing database turns the status into 503.
func (h *HealthHandler) Health(c *gin.Context) {
	stats, err := h.catalogService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  "Catalog unavailable: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"catalog": stats,
	})
}
