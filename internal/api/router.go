package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/timmy/promptbay/internal/api/handler"
	"github.com/timmy/promptbay/internal/api/middleware"
	"github.com/timmy/promptbay/internal/config"
	"github.com/timmy/promptbay/internal/logger"
	"github.com/timmy/promptbay/internal/service"
	"github.com/timmy/promptbay/internal/source"
	"github.com/timmy/promptbay/internal/storage"
	"github.com/timmy/promptbay/internal/web"
)

// Services bundles what the handlers need.
type Services struct {
	Catalog    *service.CatalogService
	Submission *service.SubmissionService
	Seed       *service.SeedService
	Sources    map[string]source.Source
	Storage    storage.ObjectStorage // optional
	Gatherer   prometheus.Gatherer   // defaults to prometheus.DefaultGatherer
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc *Services, cfg *config.ServerConfig, log *logger.Logger) (*gin.Engine, error) {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// client IPs key votes and rate limits; forwarded headers count only from these
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// writes are limited per client IP
	writeLimit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		writeLimit = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, "writes").Middleware()
	}

	healthHandler := handler.NewHealthHandler(svc.Catalog)
	promptHandler := handler.NewPromptHandler(svc.Catalog)
	categoryHandler := handler.NewCategoryHandler(svc.Catalog)
	submissionHandler := handler.NewSubmissionHandler(svc.Submission)
	pageHandler := handler.NewPageHandler(svc.Catalog, svc.Submission)

	r.GET("/health", healthHandler.Health)

	gatherer := svc.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Pages
	r.GET("/", pageHandler.Home)
	r.GET("/prompts", pageHandler.Prompts)
	r.POST("/prompts/:id/upvote", writeLimit, pageHandler.Upvote)
	r.GET("/submit", pageHandler.SubmitForm)
	r.POST("/submit", writeLimit, pageHandler.Submit)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Prompts
		v1.GET("/prompts", promptHandler.ListPrompts)
		v1.GET("/prompts/featured", promptHandler.ListFeatured)
		v1.GET("/prompts/:id", promptHandler.GetPrompt)
		v1.GET("/prompts/:id/text", promptHandler.GetPromptText)
		v1.POST("/prompts/:id/upvote", writeLimit, promptHandler.Upvote)
		v1.GET("/tools", promptHandler.ListTools)

		// Categories
		v1.GET("/categories", categoryHandler.ListCategories)
		v1.GET("/categories/:id/prompts", categoryHandler.BrowseCategory)

		// Submissions
		v1.POST("/submissions", writeLimit, submissionHandler.CreateSubmission)
		v1.POST("/submissions/preview", submissionHandler.PreviewSubmission)
	}

	if cfg.AdminEnabled && svc.Seed != nil {
		adminHandler := handler.NewAdminHandler(svc.Seed, svc.Sources, svc.Storage)
		admin := v1.Group("/admin")
		admin.GET("/seed", adminHandler.GetSeedStatus)
		admin.POST("/seed", adminHandler.TriggerSeed)
		admin.POST("/export", adminHandler.ExportSnapshot)
	}

	return r, nil
}
