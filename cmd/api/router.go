package api

import (
	"net/http"

	authDelivery "followup-backend/internal/auth/delivery"
	"followup-backend/internal/followup/delivery"
	"followup-backend/internal/sla"
	"followup-backend/pkg/config"
	"followup-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, followUpHandler *delivery.FollowUpHandler, snoozeHandler *delivery.SnoozeHandler, tracker *sla.Tracker, m *metrics.Metrics) {
	// Prometheus metrics (no auth required)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Follow-up queue routes (protected)
		followups := api.Group("/followups")
		followups.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			followups.GET("", followUpHandler.GetActiveItems)
			followups.POST("", followUpHandler.AddItem)
			followups.GET("/waiting", followUpHandler.GetWaitingItems)
			followups.GET("/overdue", followUpHandler.GetOverdueItems)
			followups.GET("/stats", followUpHandler.GetStatistics)
			followups.GET("/priority/:priority", followUpHandler.GetItemsByPriority)
			followups.GET("/history/:emailId", followUpHandler.GetItemHistory)
			followups.GET("/:id", followUpHandler.GetItem)
			followups.PUT("/:id", followUpHandler.UpdateItem)
			followups.DELETE("/:id", followUpHandler.RemoveItem)
			followups.POST("/:id/snooze", followUpHandler.SnoozeItem)
			followups.POST("/:id/complete", followUpHandler.MarkCompleted)
			followups.POST("/:id/waiting", followUpHandler.MarkWaiting)
			followups.POST("/:id/escalate", followUpHandler.Escalate)
			followups.POST("/bulk/snooze", followUpHandler.BulkSnooze)
			followups.POST("/bulk/complete", followUpHandler.BulkComplete)
		}

		// Classification intake (protected)
		classifications := api.Group("/classifications")
		classifications.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			classifications.POST("", followUpHandler.ProcessClassification)
		}

		// Manual sweep triggers (protected)
		sweeps := api.Group("/sweeps")
		sweeps.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			sweeps.POST("/snoozed", followUpHandler.RunSnoozedSweep)
			sweeps.POST("/sla", followUpHandler.RunSLASweep)
			sweeps.POST("/escalate", followUpHandler.RunEscalationSweep)
			sweeps.POST("/overdue", followUpHandler.RunOverdueSweep)
		}

		// Snooze suggestion routes (protected)
		snooze := api.Group("/snooze")
		snooze.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			snooze.POST("/suggest", snoozeHandler.SuggestSnoozeTime)
			snooze.GET("/options", snoozeHandler.GetQuickSnoozeOptions)
			snooze.POST("/learn", snoozeHandler.LearnFromUserSnooze)
		}

		// Settings routes (public) - Runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("/ollama", GetOllamaSettings)
			settings.PUT("/ollama", UpdateOllamaSettings)
			settings.GET("/sla", GetSLASettings(tracker))
			settings.PUT("/sla", UpdateSLASettings(tracker))
		}
	}
}
