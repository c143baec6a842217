package usecase

import (
	"context"
	"log"
	"time"

	"followup-backend/internal/followup/domain"
)

// GetStatistics returns queue-wide aggregates, recomputed in a single pass
// over the full item set and cached for 15 minutes.
func (u *queueUsecase) GetStatistics(ctx context.Context) (*domain.QueueStatistics, error) {
	const cacheKey = "queue"

	if u.cache != nil {
		var cached domain.QueueStatistics
		hit, err := u.cache.GetJSON(ctx, statsCacheLayer, cacheKey, &cached)
		if err != nil {
			log.Printf("[FollowUpQueue] stats cache read failed: %v", err)
		} else if hit {
			return &cached, nil
		}
	}

	stop := u.metrics.StartTimer("compute_statistics")
	defer stop()

	items, err := u.itemRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := computeStatistics(items, time.Now())

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, statsCacheLayer, cacheKey, stats, statsCacheTTL); err != nil {
			log.Printf("[FollowUpQueue] stats cache write failed: %v", err)
		}
	}

	return stats, nil
}

func computeStatistics(items []*domain.FollowUpItem, now time.Time) *domain.QueueStatistics {
	stats := &domain.QueueStatistics{
		TotalItems:      len(items),
		StatusCounts:    make(map[domain.ItemStatus]int),
		PriorityCounts:  make(map[domain.Priority]int),
		SLAStatusCounts: make(map[domain.SLAStatus]int),
		GeneratedAt:     now,
	}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	var queueHours, waitHours, snoozeHours, responseHours float64
	var waitCount, snoozeCount, responseCount int

	for _, item := range items {
		stats.StatusCounts[item.Status]++
		stats.PriorityCounts[item.Priority]++
		stats.SLAStatusCounts[item.SLAStatus]++

		queueHours += now.Sub(item.AddedToQueueAt).Hours()

		if item.Status == domain.StatusCompleted && item.LastActionDate != nil {
			if !item.LastActionDate.Before(startOfToday) {
				stats.CompletedToday++
			}
			if item.LastActionDate.After(weekAgo) {
				stats.CompletedThisWeek++
			}
			responseHours += item.LastActionDate.Sub(item.AddedToQueueAt).Hours()
			responseCount++
		}

		if item.Status == domain.StatusWaiting && item.OriginalSentDate != nil {
			waitHours += now.Sub(*item.OriginalSentDate).Hours()
			waitCount++
		}

		if item.Status == domain.StatusSnoozed && item.SnoozedUntil != nil && item.LastActionDate != nil {
			snoozeHours += item.SnoozedUntil.Sub(*item.LastActionDate).Hours()
			snoozeCount++
		}
	}

	if len(items) > 0 {
		stats.AvgTimeInQueueHours = queueHours / float64(len(items))
	}
	if waitCount > 0 {
		stats.AvgWaitTimeHours = waitHours / float64(waitCount)
	}
	if snoozeCount > 0 {
		stats.AvgSnoozeTimeHours = snoozeHours / float64(snoozeCount)
	}
	if responseCount > 0 {
		stats.AvgResponseTimeHours = responseHours / float64(responseCount)
	}

	return stats
}
