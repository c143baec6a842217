package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"followup-backend/internal/followup/domain"
	"followup-backend/internal/followup/repository"
	"followup-backend/internal/sla"
	"followup-backend/pkg/cache"
	"followup-backend/pkg/metrics"
	"followup-backend/pkg/retry"
	"followup-backend/pkg/vip"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	itemCacheLayer  = "items"
	queryCacheLayer = "queries"
	statsCacheLayer = "stats"

	itemCacheTTL  = 5 * time.Minute
	queryCacheTTL = time.Minute
	statsCacheTTL = 15 * time.Minute

	insertRetryAttempts = 3
	insertRetryBase     = time.Second
)

// queueUsecase implements QueueUsecase
type queueUsecase struct {
	itemRepo    repository.ItemRepository
	historyRepo repository.HistoryRepository
	cache       *cache.Cache
	metrics     *metrics.Metrics
	tracker     *sla.Tracker
	vipLookup   VIPLookup
}

// NewQueueUsecase creates a new instance of the follow-up queue orchestrator
func NewQueueUsecase(
	itemRepo repository.ItemRepository,
	historyRepo repository.HistoryRepository,
	c *cache.Cache,
	m *metrics.Metrics,
	tracker *sla.Tracker,
) QueueUsecase {
	return &queueUsecase{
		itemRepo:    itemRepo,
		historyRepo: historyRepo,
		cache:       c,
		metrics:     m,
		tracker:     tracker,
	}
}

func (u *queueUsecase) SetVIPLookup(v VIPLookup) {
	u.vipLookup = v
}

// AddItem validates and persists a new follow-up item. Adding the same
// emailId twice is an idempotent no-op that returns the existing item.
// The insert is retried with exponential backoff; history recording and
// cache invalidation are best-effort.
func (u *queueUsecase) AddItem(ctx context.Context, item *domain.FollowUpItem) (*domain.FollowUpItem, error) {
	if item.EmailID == "" || item.ThreadID == "" {
		return nil, &domain.ValidationError{Violations: []string{"email_id and thread_id are required"}}
	}

	existing, err := u.itemRepo.FindByEmailID(ctx, item.EmailID)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil {
		log.Printf("[FollowUpQueue] item for email %s already queued as %s, skipping", item.EmailID, existing.ID)
		return existing, nil
	}

	now := time.Now()
	u.fillDefaults(item, now)

	var vipContact *vip.Contact
	if u.vipLookup != nil {
		vipContact, err = u.vipLookup.IsVIP(ctx, item.From)
		if err != nil {
			log.Printf("[FollowUpQueue] VIP lookup failed for %s: %v", item.From, err)
			vipContact = nil
		}
	}

	if item.SLADeadline == nil {
		deadline := u.tracker.CalculateDeadline(item, vipContact)
		item.SLADeadline = &deadline
		item.SLAStatus = u.tracker.GetSLAStatus(deadline, item.Priority)
		remaining := u.tracker.GetTimeRemaining(deadline)
		item.TimeRemaining = &remaining
	}

	if err := item.Validate(now); err != nil {
		return nil, err
	}

	err = retry.WithBackoff(ctx, insertRetryAttempts, insertRetryBase, func() error {
		return u.itemRepo.Create(ctx, item)
	})
	if err != nil {
		// A unique-index violation means another invocation won the
		// check-then-insert race; return its item instead of failing.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if winner, findErr := u.itemRepo.FindByEmailID(ctx, item.EmailID); findErr == nil && winner != nil {
				log.Printf("[FollowUpQueue] concurrent add for email %s, returning existing item %s", item.EmailID, winner.ID)
				return winner, nil
			}
		}
		u.metrics.QueueOperations.WithLabelValues("add", "error").Inc()
		return nil, err
	}

	u.recordHistory(ctx, item, domain.ActionAdded, "", "", domain.Metadata{"reason": string(item.Reason)})
	u.invalidateAggregates(ctx)

	u.metrics.ItemsAdded.WithLabelValues(string(item.Priority), string(item.Reason)).Inc()
	u.metrics.QueueOperations.WithLabelValues("add", "ok").Inc()
	log.Printf("[FollowUpQueue] added item %s for email %s (priority=%s reason=%s)",
		item.ID, item.EmailID, item.Priority, item.Reason)

	return item, nil
}

func (u *queueUsecase) fillDefaults(item *domain.FollowUpItem, now time.Time) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Status == "" {
		item.Status = domain.StatusActive
	}
	if item.Priority == "" {
		item.Priority = domain.PriorityMedium
	}
	if item.Reason == "" {
		item.Reason = domain.ReasonManual
	}
	if item.SLAStatus == "" {
		item.SLAStatus = domain.SLAOnTime
	}
	if item.ReceivedDate.IsZero() {
		item.ReceivedDate = now
	}
	if item.AddedToQueueAt.IsZero() {
		item.AddedToQueueAt = now
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	item.ActionCount = 0
	item.SnoozeCount = 0
}

// UpdateItem merges a partial update into the stored item and re-validates
func (u *queueUsecase) UpdateItem(ctx context.Context, id string, updates ItemUpdates) (*domain.FollowUpItem, error) {
	item, err := u.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := item.Status
	oldPriority := item.Priority

	if updates.Subject != nil {
		item.Subject = *updates.Subject
	}
	if updates.Category != nil {
		item.Category = *updates.Category
	}
	if updates.Labels != nil {
		item.Labels = domain.LabelSet(*updates.Labels)
	}
	if updates.Priority != nil {
		item.Priority = *updates.Priority
	}
	if updates.Status != nil {
		item.Status = *updates.Status
	}
	if updates.Reason != nil {
		item.Reason = *updates.Reason
	}
	if updates.WaitingOnEmail != nil {
		item.WaitingOnEmail = *updates.WaitingOnEmail
	}
	if updates.WaitingReason != nil {
		item.WaitingReason = *updates.WaitingReason
	}
	if updates.SuggestedActions != nil {
		item.SuggestedActions = domain.LabelSet(*updates.SuggestedActions)
	}
	if updates.AIReasoning != nil {
		item.AIReasoning = *updates.AIReasoning
	}

	u.touch(item)

	if err := item.Validate(time.Now()); err != nil {
		return nil, err
	}
	if err := u.itemRepo.Update(ctx, item); err != nil {
		u.metrics.QueueOperations.WithLabelValues("update", "error").Inc()
		return nil, err
	}

	u.recordHistory(ctx, item, domain.ActionUpdated, oldStatus, oldPriority, nil)
	u.invalidateItem(ctx, item.ID)
	u.invalidateAggregates(ctx)
	u.metrics.QueueOperations.WithLabelValues("update", "ok").Inc()

	return item, nil
}

// RemoveItem deletes an item from the queue. Removing an absent item is a
// logged no-op.
func (u *queueUsecase) RemoveItem(ctx context.Context, id string) error {
	item, err := u.itemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		log.Printf("[FollowUpQueue] remove requested for missing item %s, ignoring", id)
		return nil
	}

	if err := u.itemRepo.Delete(ctx, id); err != nil {
		u.metrics.QueueOperations.WithLabelValues("remove", "error").Inc()
		return err
	}

	u.recordHistory(ctx, item, domain.ActionArchived, item.Status, item.Priority, nil)
	u.invalidateItem(ctx, id)
	u.invalidateAggregates(ctx)
	u.metrics.QueueOperations.WithLabelValues("remove", "ok").Inc()
	return nil
}

// GetItem reads one item. Returns nil (not an error) when the item is absent
// or its stored record is malformed.
func (u *queueUsecase) GetItem(ctx context.Context, id string) (*domain.FollowUpItem, error) {
	item, err := u.itemRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedRecord) {
			log.Printf("[FollowUpQueue] malformed record for item %s: %v", id, err)
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func (u *queueUsecase) GetActiveItems(ctx context.Context, query repository.ActiveItemsQuery) ([]*domain.FollowUpItem, error) {
	keyBytes, _ := json.Marshal(query)
	key := "active:" + string(keyBytes)

	var cached []*domain.FollowUpItem
	if hit := u.readQueryCache(ctx, key, &cached); hit {
		return cached, nil
	}

	items, err := u.itemRepo.FindActive(ctx, query)
	if err != nil {
		return nil, err
	}
	u.writeQueryCache(ctx, key, items)
	return items, nil
}

func (u *queueUsecase) GetWaitingItems(ctx context.Context) ([]*domain.FollowUpItem, error) {
	var cached []*domain.FollowUpItem
	if hit := u.readQueryCache(ctx, "waiting", &cached); hit {
		return cached, nil
	}

	items, err := u.itemRepo.FindByStatus(ctx, domain.StatusWaiting)
	if err != nil {
		return nil, err
	}
	u.writeQueryCache(ctx, "waiting", items)
	return items, nil
}

func (u *queueUsecase) GetOverdueItems(ctx context.Context) ([]*domain.FollowUpItem, error) {
	var cached []*domain.FollowUpItem
	if hit := u.readQueryCache(ctx, "overdue", &cached); hit {
		return cached, nil
	}

	items, err := u.itemRepo.FindActiveBySLAStatus(ctx, domain.SLAOverdue)
	if err != nil {
		return nil, err
	}
	u.writeQueryCache(ctx, "overdue", items)
	return items, nil
}

func (u *queueUsecase) GetItemsByPriority(ctx context.Context, priority domain.Priority) ([]*domain.FollowUpItem, error) {
	if !priority.Valid() {
		return nil, &domain.ValidationError{Violations: []string{"invalid priority: " + string(priority)}}
	}

	key := "priority:" + string(priority)
	var cached []*domain.FollowUpItem
	if hit := u.readQueryCache(ctx, key, &cached); hit {
		return cached, nil
	}

	items, err := u.itemRepo.FindActive(ctx, repository.ActiveItemsQuery{Priority: &priority})
	if err != nil {
		return nil, err
	}
	u.writeQueryCache(ctx, key, items)
	return items, nil
}

// CheckSnoozedItems resurfaces every snoozed item whose snooze has elapsed.
// Designed to be invoked periodically by an external scheduler; the sweep is
// idempotent and tolerates overlapping invocations.
func (u *queueUsecase) CheckSnoozedItems(ctx context.Context) ([]*domain.FollowUpItem, error) {
	stop := u.metrics.StartTimer("check_snoozed")
	defer stop()

	now := time.Now()
	due, err := u.itemRepo.FindSnoozedBefore(ctx, now)
	if err != nil {
		return nil, err
	}

	var resurfaced []*domain.FollowUpItem
	for _, item := range due {
		oldStatus := item.Status
		item.Status = domain.StatusActive
		item.SnoozedUntil = nil
		u.touch(item)

		if err := u.itemRepo.Update(ctx, item); err != nil {
			log.Printf("[FollowUpQueue] failed to resurface item %s: %v", item.ID, err)
			continue
		}

		u.recordHistory(ctx, item, domain.ActionResurfaced, oldStatus, item.Priority, nil)
		u.invalidateItem(ctx, item.ID)
		resurfaced = append(resurfaced, item)
	}

	if len(resurfaced) > 0 {
		u.invalidateAggregates(ctx)
		u.metrics.ItemsResurfaced.Add(float64(len(resurfaced)))
		log.Printf("[FollowUpQueue] resurfaced %d snoozed items", len(resurfaced))
	}

	return resurfaced, nil
}

// SnoozeItem hides an item until a future time
func (u *queueUsecase) SnoozeItem(ctx context.Context, id string, req SnoozeRequest) (*domain.FollowUpItem, error) {
	now := time.Now()
	if !req.Until.After(now) {
		return nil, &domain.ValidationError{Violations: []string{"snooze time must be in the future"}}
	}

	item, err := u.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := item.Status
	item.Status = domain.StatusSnoozed
	item.SnoozedUntil = &req.Until
	item.SnoozeCount++
	item.LastActionDate = &now
	if req.AIReasoning != "" {
		item.AIReasoning = req.AIReasoning
	}
	u.touch(item)

	if err := u.itemRepo.Update(ctx, item); err != nil {
		u.metrics.QueueOperations.WithLabelValues("snooze", "error").Inc()
		return nil, err
	}

	u.recordHistory(ctx, item, domain.ActionSnoozed, oldStatus, item.Priority, domain.Metadata{
		"until":        req.Until.Format(time.RFC3339),
		"reason":       req.Reason,
		"ai_suggested": req.Smart,
	})
	u.invalidateItem(ctx, item.ID)
	u.invalidateAggregates(ctx)

	u.metrics.Snoozes.WithLabelValues(fmt.Sprintf("%t", req.Smart)).Inc()
	u.metrics.QueueOperations.WithLabelValues("snooze", "ok").Inc()
	return item, nil
}

// MarkCompleted transitions an item to completed
func (u *queueUsecase) MarkCompleted(ctx context.Context, id string) (*domain.FollowUpItem, error) {
	item, err := u.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	oldStatus := item.Status
	item.Status = domain.StatusCompleted
	item.LastActionDate = &now
	u.touch(item)

	if err := u.itemRepo.Update(ctx, item); err != nil {
		u.metrics.QueueOperations.WithLabelValues("complete", "error").Inc()
		return nil, err
	}

	u.recordHistory(ctx, item, domain.ActionCompleted, oldStatus, item.Priority, nil)
	u.invalidateItem(ctx, item.ID)
	u.invalidateAggregates(ctx)
	u.metrics.QueueOperations.WithLabelValues("complete", "ok").Inc()
	return item, nil
}

// MarkWaiting transitions an item to waiting-on-others
func (u *queueUsecase) MarkWaiting(ctx context.Context, id, waitingOn, reason string) (*domain.FollowUpItem, error) {
	item, err := u.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	oldStatus := item.Status
	item.Status = domain.StatusWaiting
	item.WaitingOnEmail = waitingOn
	item.WaitingReason = reason
	item.LastActionDate = &now
	if item.OriginalSentDate == nil {
		item.OriginalSentDate = &now
	}
	u.touch(item)

	if err := u.itemRepo.Update(ctx, item); err != nil {
		u.metrics.QueueOperations.WithLabelValues("mark_waiting", "error").Inc()
		return nil, err
	}

	u.recordHistory(ctx, item, domain.ActionMarkedWaiting, oldStatus, item.Priority, domain.Metadata{
		"waiting_on": waitingOn,
		"reason":     reason,
	})
	u.invalidateItem(ctx, item.ID)
	u.invalidateAggregates(ctx)
	u.metrics.QueueOperations.WithLabelValues("mark_waiting", "ok").Inc()
	return item, nil
}

// Escalate raises an item's priority and marks it escalated
func (u *queueUsecase) Escalate(ctx context.Context, id string, newPriority domain.Priority) (*domain.FollowUpItem, error) {
	if !newPriority.Valid() {
		return nil, &domain.ValidationError{Violations: []string{"invalid priority: " + string(newPriority)}}
	}

	item, err := u.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	oldStatus := item.Status
	oldPriority := item.Priority
	item.Priority = newPriority
	item.Status = domain.StatusEscalated
	item.LastActionDate = &now
	u.touch(item)

	if err := u.itemRepo.Update(ctx, item); err != nil {
		u.metrics.QueueOperations.WithLabelValues("escalate", "error").Inc()
		return nil, err
	}

	u.recordHistory(ctx, item, domain.ActionEscalated, oldStatus, oldPriority, domain.Metadata{
		"new_priority": string(newPriority),
	})
	u.invalidateItem(ctx, item.ID)
	u.invalidateAggregates(ctx)

	u.metrics.Escalations.Inc()
	u.metrics.QueueOperations.WithLabelValues("escalate", "ok").Inc()
	log.Printf("[FollowUpQueue] escalated item %s: %s -> %s", item.ID, oldPriority, newPriority)
	return item, nil
}

// BulkSnooze applies SnoozeItem per id, collecting per-item outcomes
func (u *queueUsecase) BulkSnooze(ctx context.Context, ids []string, req SnoozeRequest) *BulkResult {
	result := &BulkResult{TotalProcessed: len(ids)}
	for _, id := range ids {
		if _, err := u.SnoozeItem(ctx, id, req); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, id)
	}
	return result
}

// BulkComplete applies MarkCompleted per id, collecting per-item outcomes
func (u *queueUsecase) BulkComplete(ctx context.Context, ids []string) *BulkResult {
	result := &BulkResult{TotalProcessed: len(ids)}
	for _, id := range ids {
		if _, err := u.MarkCompleted(ctx, id); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, id)
	}
	return result
}

// ProcessNewClassification decides whether an incoming classification
// warrants a queue entry. Returns nil when no entry is needed.
func (u *queueUsecase) ProcessNewClassification(ctx context.Context, c domain.ClassificationResult, meta domain.EmailMetadata) (*domain.FollowUpItem, error) {
	needed := c.NeedsReply || c.WaitingOnOthers || c.IsVIP ||
		c.Priority == domain.PriorityCritical || c.Priority == domain.PriorityHigh
	if !needed {
		return nil, nil
	}

	// Reason precedence: waiting-on-others > VIP attention > needs-reply.
	reason := domain.ReasonNeedsReply
	switch {
	case c.WaitingOnOthers:
		reason = domain.ReasonWaitingOnOthers
	case c.IsVIP:
		reason = domain.ReasonVIPAttention
	}

	priority := c.Priority
	if !priority.Valid() {
		priority = domain.PriorityMedium
	}

	item := &domain.FollowUpItem{
		EmailID:             meta.EmailID,
		ThreadID:            meta.ThreadID,
		Subject:             meta.Subject,
		From:                meta.From,
		To:                  meta.To,
		ReceivedDate:        meta.ReceivedDate,
		Category:            c.Category,
		Labels:              domain.LabelSet(c.Labels),
		Priority:            priority,
		Reason:              reason,
		SuggestedSnoozeTime: c.SuggestedSnoozeTime,
		SuggestedActions:    domain.LabelSet(c.SuggestedActions),
		AIReasoning:         c.AIReasoning,
	}

	return u.AddItem(ctx, item)
}

// GetItemHistory returns the audit trail for an email, newest first
func (u *queueUsecase) GetItemHistory(ctx context.Context, emailID string) ([]*domain.QueueHistoryEntry, error) {
	return u.historyRepo.FindByEmailID(ctx, emailID)
}

// loadItem fetches an item or returns ErrNotFound
func (u *queueUsecase) loadItem(ctx context.Context, id string) (*domain.FollowUpItem, error) {
	item, err := u.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// touch bumps the bookkeeping fields every mutation must advance
func (u *queueUsecase) touch(item *domain.FollowUpItem) {
	item.UpdatedAt = time.Now()
	item.ActionCount++
}

// recordHistory appends an audit entry. Failure is logged and swallowed;
// it never rolls back the primary mutation.
func (u *queueUsecase) recordHistory(ctx context.Context, item *domain.FollowUpItem, action domain.HistoryAction, oldStatus domain.ItemStatus, oldPriority domain.Priority, metadata domain.Metadata) {
	entry := &domain.QueueHistoryEntry{
		QueueItemID: item.ID,
		EmailID:     item.EmailID,
		Action:      action,
		OldStatus:   oldStatus,
		NewStatus:   item.Status,
		OldPriority: oldPriority,
		NewPriority: item.Priority,
		Metadata:    metadata,
	}
	if err := u.historyRepo.Create(ctx, entry); err != nil {
		log.Printf("[FollowUpQueue] failed to record %s history for item %s: %v", action, item.ID, err)
	}
}

// invalidateItem drops the single-item cache entry, best-effort
func (u *queueUsecase) invalidateItem(ctx context.Context, id string) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Delete(ctx, itemCacheLayer, id); err != nil {
		log.Printf("[FollowUpQueue] item cache invalidation failed for %s: %v", id, err)
	}
}

// invalidateAggregates drops cached list views and statistics, best-effort
func (u *queueUsecase) invalidateAggregates(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if _, err := u.cache.InvalidateLayer(ctx, queryCacheLayer); err != nil {
		log.Printf("[FollowUpQueue] query cache invalidation failed: %v", err)
	}
	if _, err := u.cache.InvalidateLayer(ctx, statsCacheLayer); err != nil {
		log.Printf("[FollowUpQueue] stats cache invalidation failed: %v", err)
	}
}

func (u *queueUsecase) readQueryCache(ctx context.Context, key string, dest interface{}) bool {
	if u.cache == nil {
		return false
	}
	hit, err := u.cache.GetJSON(ctx, queryCacheLayer, key, dest)
	if err != nil {
		log.Printf("[FollowUpQueue] query cache read failed for %s: %v", key, err)
		return false
	}
	return hit
}

func (u *queueUsecase) writeQueryCache(ctx context.Context, key string, items []*domain.FollowUpItem) {
	if u.cache == nil {
		return
	}
	if err := u.cache.SetJSON(ctx, queryCacheLayer, key, items, queryCacheTTL); err != nil {
		log.Printf("[FollowUpQueue] query cache write failed for %s: %v", key, err)
	}
}
