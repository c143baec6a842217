package domain

import "time"

// HistoryAction identifies what a queue mutation did
type HistoryAction string

const (
	ActionAdded         HistoryAction = "added"
	ActionUpdated       HistoryAction = "updated"
	ActionSnoozed       HistoryAction = "snoozed"
	ActionResurfaced    HistoryAction = "resurfaced"
	ActionCompleted     HistoryAction = "completed"
	ActionArchived      HistoryAction = "archived"
	ActionEscalated     HistoryAction = "escalated"
	ActionMarkedWaiting HistoryAction = "marked_waiting"
)

// QueueHistoryEntry is an append-only audit record of a queue mutation.
// Recording one is best-effort; a failure never rolls back the mutation.
type QueueHistoryEntry struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	QueueItemID string        `json:"queue_item_id" gorm:"index;not null"`
	EmailID     string        `json:"email_id" gorm:"index"`
	Action      HistoryAction `json:"action" gorm:"not null"`
	OldStatus   ItemStatus    `json:"old_status,omitempty"`
	NewStatus   ItemStatus    `json:"new_status,omitempty"`
	OldPriority Priority      `json:"old_priority,omitempty"`
	NewPriority Priority      `json:"new_priority,omitempty"`
	Metadata    Metadata      `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at"`
}
