package main

import (
	"log"
	"os"

	api "followup-backend/cmd/api"
	"followup-backend/internal/followup/domain"
	"followup-backend/internal/followup/repository"
	"followup-backend/internal/followup/scheduler"
	"followup-backend/internal/followup/usecase"
	"followup-backend/internal/sla"
	"followup-backend/pkg/cache"
	"followup-backend/pkg/config"
	"followup-backend/pkg/database"
	"followup-backend/pkg/metrics"
	"followup-backend/pkg/vip"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&domain.FollowUpItem{}, &domain.QueueHistoryEntry{}, &vip.Contact{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis cache. The queue works without it, just slower.
	var c *cache.Cache
	c, err = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("[WARN] Redis unavailable, caching disabled: %v", err)
		c = nil
	}

	// Initialize Prometheus metrics
	m := metrics.New()

	// Initialize repositories (dependency injection)
	itemRepo := repository.NewGormItemRepository(db)
	historyRepo := repository.NewGormHistoryRepository(db)

	// Initialize SLA tracker from configured policy
	slaConfig := domain.SLAConfig{
		CriticalHours:     cfg.SLACriticalHours,
		HighHours:         cfg.SLAHighHours,
		MediumHours:       cfg.SLAMediumHours,
		LowHours:          cfg.SLALowHours,
		AdjustForWeekends: cfg.SLAAdjustWeekends,
		WorkingHoursStart: cfg.WorkingHoursStart,
		WorkingHoursEnd:   cfg.WorkingHoursEnd,
	}
	tracker := sla.NewTracker(slaConfig, itemRepo, m)

	// Initialize use cases (dependency injection)
	queueUc := usecase.NewQueueUsecase(itemRepo, historyRepo, c, m, tracker)
	tracker.SetEscalator(queueUc)
	queueUc.SetVIPLookup(vip.NewService(db, c))

	// Start periodic sweeps (snooze resurfacing, SLA status, escalation, overdue)
	sweeper := scheduler.NewSweepScheduler(queueUc, tracker, cfg.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(queueUc, tracker, cfg, c, m)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
