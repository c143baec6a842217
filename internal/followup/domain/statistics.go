package domain

import "time"

// QueueStatistics is a derived projection over the full item set.
// It is always recomputed, never persisted as source-of-truth.
type QueueStatistics struct {
	TotalItems      int                `json:"total_items"`
	StatusCounts    map[ItemStatus]int `json:"status_counts"`
	PriorityCounts  map[Priority]int   `json:"priority_counts"`
	SLAStatusCounts map[SLAStatus]int  `json:"sla_status_counts"`

	CompletedToday    int `json:"completed_today"`
	CompletedThisWeek int `json:"completed_this_week"`

	AvgTimeInQueueHours  float64 `json:"avg_time_in_queue_hours"`
	AvgWaitTimeHours     float64 `json:"avg_wait_time_hours"`
	AvgSnoozeTimeHours   float64 `json:"avg_snooze_time_hours"`
	AvgResponseTimeHours float64 `json:"avg_response_time_hours"`

	GeneratedAt time.Time `json:"generated_at"`
}
