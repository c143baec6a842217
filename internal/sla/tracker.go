package sla

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"followup-backend/internal/followup/domain"
	"followup-backend/internal/followup/repository"
	"followup-backend/pkg/metrics"
	"followup-backend/pkg/vip"
)

// Escalator is the slice of the queue the tracker uses to raise priorities.
// The queue implements it; wiring happens via SetEscalator to avoid a
// construction cycle.
type Escalator interface {
	Escalate(ctx context.Context, id string, newPriority domain.Priority) (*domain.FollowUpItem, error)
}

// Tracker computes SLA deadlines, classifies compliance and escalates
// at-risk items. The config is hot-reloadable.
type Tracker struct {
	itemRepo  repository.ItemRepository
	metrics   *metrics.Metrics
	escalator Escalator

	mu  sync.RWMutex
	cfg domain.SLAConfig
}

// NewTracker creates a new SLA tracker
func NewTracker(cfg domain.SLAConfig, itemRepo repository.ItemRepository, m *metrics.Metrics) *Tracker {
	return &Tracker{
		itemRepo: itemRepo,
		metrics:  m,
		cfg:      cfg,
	}
}

// SetEscalator wires the queue's escalate mutator into the tracker
func (t *Tracker) SetEscalator(e Escalator) {
	t.escalator = e
}

// Config returns a copy of the current SLA configuration
func (t *Tracker) Config() domain.SLAConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg
}

// UpdateConfig replaces the SLA configuration at runtime
func (t *Tracker) UpdateConfig(cfg domain.SLAConfig) {
	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()
	log.Printf("[SLATracker] config updated: critical=%.1fh high=%.1fh medium=%.1fh low=%.1fh window=%d-%d weekends=%v",
		cfg.CriticalHours, cfg.HighHours, cfg.MediumHours, cfg.LowHours,
		cfg.WorkingHoursStart, cfg.WorkingHoursEnd, cfg.AdjustForWeekends)
}

// CalculateDeadline computes the SLA deadline for an item. A VIP contact
// with an explicit SLA-hours value overrides the priority-based default.
func (t *Tracker) CalculateDeadline(item *domain.FollowUpItem, vipContact *vip.Contact) time.Time {
	cfg := t.Config()

	hours := cfg.HoursForPriority(item.Priority)
	if vipContact != nil && vipContact.SLAHours != nil {
		hours = *vipContact.SLAHours
	}

	return AddBusinessHours(item.ReceivedDate, hours, cfg)
}

// GetTimeRemaining returns hours until the deadline; negative when overdue
func (t *Tracker) GetTimeRemaining(deadline time.Time) float64 {
	return time.Until(deadline).Hours()
}

// atRiskThreshold returns the remaining-hours threshold below which an
// on-time item is reclassified at-risk.
func atRiskThreshold(p domain.Priority) float64 {
	switch p {
	case domain.PriorityCritical:
		return 1
	case domain.PriorityHigh:
		return 2
	case domain.PriorityMedium:
		return 4
	case domain.PriorityLow:
		return 8
	default:
		return 2
	}
}

// GetSLAStatus classifies a deadline: overdue when remaining time is
// negative, at-risk within the priority threshold, on-time otherwise.
func (t *Tracker) GetSLAStatus(deadline time.Time, priority domain.Priority) domain.SLAStatus {
	remaining := t.GetTimeRemaining(deadline)
	if remaining < 0 {
		return domain.SLAOverdue
	}
	if remaining <= atRiskThreshold(priority) {
		return domain.SLAAtRisk
	}
	return domain.SLAOnTime
}

// CheckAndAlertOverdue reads all overdue active items, logs each with its
// hours-overdue and returns the list. Alert delivery itself is an external
// collaborator's responsibility.
func (t *Tracker) CheckAndAlertOverdue(ctx context.Context) ([]*domain.FollowUpItem, error) {
	stop := t.metrics.StartTimer("check_overdue")
	defer stop()

	items, err := t.itemRepo.FindActiveBySLAStatus(ctx, domain.SLAOverdue)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.SLADeadline != nil {
			overdueHours := -t.GetTimeRemaining(*item.SLADeadline)
			log.Printf("[SLATracker] OVERDUE item %s (%s) from %s: %.1f hours past deadline",
				item.ID, item.Subject, item.From, overdueHours)
		}
	}

	t.metrics.OverdueItems.Set(float64(len(items)))
	return items, nil
}

// EscalateAtRisk raises every at-risk active item one priority level via the
// queue's escalate mutator. Critical items are a fixed point. Returns the
// number escalated.
func (t *Tracker) EscalateAtRisk(ctx context.Context) (int, error) {
	stop := t.metrics.StartTimer("escalate_at_risk")
	defer stop()

	if t.escalator == nil {
		log.Println("[SLATracker] no escalator wired, skipping at-risk escalation")
		return 0, nil
	}

	items, err := t.itemRepo.FindActiveBySLAStatus(ctx, domain.SLAAtRisk)
	if err != nil {
		return 0, err
	}

	escalated := 0
	for _, item := range items {
		next := item.Priority.Escalate()
		if next == item.Priority {
			continue
		}
		if _, err := t.escalator.Escalate(ctx, item.ID, next); err != nil {
			log.Printf("[SLATracker] failed to escalate item %s: %v", item.ID, err)
			continue
		}
		escalated++
	}

	if escalated > 0 {
		log.Printf("[SLATracker] escalated %d at-risk items", escalated)
	}
	return escalated, nil
}

// UpdateItemSLAStatus recomputes one item's SLA status and remaining hours,
// persisting only when the status changed or the estimate drifted by more
// than one hour. Returns whether a write happened.
func (t *Tracker) UpdateItemSLAStatus(ctx context.Context, item *domain.FollowUpItem) (bool, error) {
	if item.SLADeadline == nil {
		return false, nil
	}

	newStatus := t.GetSLAStatus(*item.SLADeadline, item.Priority)
	remaining := t.GetTimeRemaining(*item.SLADeadline)

	drifted := item.TimeRemaining == nil || math.Abs(*item.TimeRemaining-remaining) > 1
	if newStatus == item.SLAStatus && !drifted {
		return false, nil
	}

	item.SLAStatus = newStatus
	item.TimeRemaining = &remaining
	item.UpdatedAt = time.Now()

	if err := t.itemRepo.Update(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateAllSLAStatuses recomputes SLA status for every active item,
// returning the number of items whose record was written.
func (t *Tracker) UpdateAllSLAStatuses(ctx context.Context) (int, error) {
	stop := t.metrics.StartTimer("update_sla_statuses")
	defer stop()

	items, err := t.itemRepo.FindByStatus(ctx, domain.StatusActive)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, item := range items {
		changed, err := t.UpdateItemSLAStatus(ctx, item)
		if err != nil {
			log.Printf("[SLATracker] failed to update SLA status for item %s: %v", item.ID, err)
			continue
		}
		if changed {
			updated++
		}
	}

	return updated, nil
}
