package scheduler

import (
	"context"
	"log"
	"time"

	"followup-backend/internal/followup/usecase"
	"followup-backend/internal/sla"
)

// SweepScheduler periodically runs the queue and SLA sweeps. The sweeps are
// idempotent, so overlapping invocations are tolerated rather than locked out.
type SweepScheduler struct {
	queue    usecase.QueueUsecase
	tracker  *sla.Tracker
	interval time.Duration
	stopChan chan struct{}
}

// NewSweepScheduler creates a new scheduler
func NewSweepScheduler(queue usecase.QueueUsecase, tracker *sla.Tracker, interval time.Duration) *SweepScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SweepScheduler{
		queue:    queue,
		tracker:  tracker,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *SweepScheduler) Start() {
	log.Printf("[SweepScheduler] starting (interval: %s)", s.interval)

	go func() {
		// Run immediately on start
		s.runSweeps()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runSweeps()
			case <-s.stopChan:
				log.Println("[SweepScheduler] stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *SweepScheduler) Stop() {
	close(s.stopChan)
}

// runSweeps executes one round of all periodic sweeps
func (s *SweepScheduler) runSweeps() {
	ctx := context.Background()

	resurfaced, err := s.queue.CheckSnoozedItems(ctx)
	if err != nil {
		log.Printf("[SweepScheduler] snoozed-items sweep failed: %v", err)
	} else if len(resurfaced) > 0 {
		log.Printf("[SweepScheduler] resurfaced %d items", len(resurfaced))
	}

	updated, err := s.tracker.UpdateAllSLAStatuses(ctx)
	if err != nil {
		log.Printf("[SweepScheduler] SLA status sweep failed: %v", err)
	} else if updated > 0 {
		log.Printf("[SweepScheduler] updated SLA status on %d items", updated)
	}

	escalated, err := s.tracker.EscalateAtRisk(ctx)
	if err != nil {
		log.Printf("[SweepScheduler] at-risk escalation sweep failed: %v", err)
	} else if escalated > 0 {
		log.Printf("[SweepScheduler] escalated %d at-risk items", escalated)
	}

	overdue, err := s.tracker.CheckAndAlertOverdue(ctx)
	if err != nil {
		log.Printf("[SweepScheduler] overdue sweep failed: %v", err)
	} else if len(overdue) > 0 {
		log.Printf("[SweepScheduler] %d items overdue", len(overdue))
	}
}
