package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/service"
	"github.com/timmy/promptbay/internal/source"
	"github.com/timmy/promptbay/internal/source/snapshot"
	"github.com/timmy/promptbay/internal/storage"
)

// AdminHandler handles catalog maintenance operations.
type AdminHandler struct {
	seedService *service.SeedService
	sources     map[string]source.Source
	storage     storage.ObjectStorage

	// Seed job state
	mu            sync.RWMutex
	isRunning     bool
	lastStats     *service.SeedStats
	lastRunTime   time.Time
	lastRunStatus string
}

// NewAdminHandler creates a new admin handler. objectStorage may be nil,
// which disables snapshot export and the "snapshot" seed source.
func NewAdminHandler(seedService *service.SeedService, sources map[string]source.Source, objectStorage storage.ObjectStorage) *AdminHandler {
	return &AdminHandler{
		seedService: seedService,
		sources:     sources,
		storage:     objectStorage,
	}
}

// SeedRequest represents the seed API request.
type SeedRequest struct {
	Source string `json:"source" binding:"required"`
}

// SeedStatusResponse represents the seed job status.
type SeedStatusResponse struct {
	IsRunning     bool               `json:"is_running"`
	Sources       []string           `json:"sources"`
	LastRunTime   string             `json:"last_run_time,omitempty"`
	LastRunStatus string             `json:"last_run_status,omitempty"`
	LastStats     *service.SeedStats `json:"last_stats,omitempty"`
}

// TriggerSeed handles POST /api/v1/admin/seed.
func (h *AdminHandler) TriggerSeed(c *gin.Context) {
	ctx := c.Request.Context()

	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.CtxWarn(ctx, "Invalid seed request: client_ip=%s, error=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	src, status, msg := h.resolveSource(ctx, req.Source)
	if src == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	h.mu.Lock()
	if h.isRunning {
		h.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "Seed is already running"})
		return
	}
	h.isRunning = true
	h.mu.Unlock()

	// detached from the request so a client disconnect does not abort the run
	seedCtx := logger.FromContext(ctx).WithContext(context.Background())
	stats, err := h.seedService.Seed(seedCtx, src)

	h.mu.Lock()
	h.isRunning = false
	h.lastStats = stats
	h.lastRunTime = time.Now()
	if err != nil {
		h.lastRunStatus = "failed: " + err.Error()
	} else {
		h.lastRunStatus = "success"
	}
	h.mu.Unlock()

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Seed failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Seed completed successfully",
		"stats":   stats,
	})
}

// resolveSource looks up a configured source. "snapshot" reads the exported
// catalog from object storage at request time. On failure it returns the
// response status and message.
func (h *AdminHandler) resolveSource(ctx context.Context, name string) (source.Source, int, string) {
	if src, ok := h.sources[name]; ok {
		return src, http.StatusOK, ""
	}
	if name != snapshot.SourceID || h.storage == nil {
		return nil, http.StatusBadRequest, "Unknown source: " + name
	}

	src, err := snapshot.NewSource(ctx, h.storage)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		return nil, http.StatusNotFound, "No catalog snapshot has been exported"
	case err != nil:
		logger.CtxError(ctx, "Failed to read catalog snapshot: error=%v", err)
		return nil, http.StatusInternalServerError, "Failed to read snapshot: " + err.Error()
	}
	return src, http.StatusOK, ""
}

// GetSeedStatus handles GET /api/v1/admin/seed.
func (h *AdminHandler) GetSeedStatus(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.sources))
	for name := range h.sources {
		names = append(names, name)
	}
	if h.storage != nil {
		names = append(names, snapshot.SourceID)
	}
	sort.Strings(names)

	resp := SeedStatusResponse{
		IsRunning:     h.isRunning,
		Sources:       names,
		LastRunStatus: h.lastRunStatus,
		LastStats:     h.lastStats,
	}
	if !h.lastRunTime.IsZero() {
		resp.LastRunTime = h.lastRunTime.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}

// ExportSnapshot handles POST /api/v1/admin/export.
func (h *AdminHandler) ExportSnapshot(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Object storage is not configured"})
		return
	}

	url, err := h.seedService.ExportSnapshot(c.Request.Context(), h.storage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"key": snapshot.Key,
		"url": url,
	})
}
