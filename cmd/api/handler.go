package api

import (
	"log"

	"followup-backend/internal/followup/delivery"
	"followup-backend/internal/followup/usecase"
	"followup-backend/internal/sla"
	"followup-backend/internal/snooze"
	"followup-backend/pkg/ai"
	"followup-backend/pkg/cache"
	"followup-backend/pkg/config"
	"followup-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config          *config.Config
	tracker         *sla.Tracker
	metrics         *metrics.Metrics
	snoozeEngine    *snooze.Engine
	followUpHandler *delivery.FollowUpHandler
	snoozeHandler   *delivery.SnoozeHandler
}

func NewHandler(queueUc usecase.QueueUsecase, tracker *sla.Tracker, cfg *config.Config, c *cache.Cache, m *metrics.Metrics) *Handler {
	// Initialize runtime config for settings API
	InitRuntimeConfig(cfg.OllamaBaseURL, cfg.OllamaModel)

	// Initialize AI service with dynamic config getters for runtime updates
	aiCfg := ai.DynamicConfig{
		Provider:         ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:     cfg.GeminiApiKey,
		GetOllamaBaseURL: GetRuntimeOllamaBaseURL,
		GetOllamaModel:   GetRuntimeOllamaModel,
	}
	aiService, err := ai.NewSnoozeSuggestionServiceWithDynamicConfig(aiCfg)
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service: %v. Snooze suggestions will use the deterministic fallback.", err)
	} else {
		log.Printf("AI service initialized with provider: %s (dynamic config enabled)", cfg.AIProvider)
	}

	// The engine tolerates a nil AI service: every suggestion then comes
	// from the deterministic fallback.
	snoozeEngine := snooze.NewEngine(aiService, c, m, tracker)

	return &Handler{
		config:          cfg,
		tracker:         tracker,
		metrics:         m,
		snoozeEngine:    snoozeEngine,
		followUpHandler: delivery.NewFollowUpHandler(queueUc, tracker),
		snoozeHandler:   delivery.NewSnoozeHandler(snoozeEngine),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.config, h.followUpHandler, h.snoozeHandler, h.tracker, h.metrics)

	return r.Run(addr)
}
