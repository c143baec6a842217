package domain

import "time"

// Priority represents the urgency level of a follow-up item
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid reports whether p is a known priority value
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Escalate returns the priority one level above p. Critical stays critical.
func (p Priority) Escalate() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	case PriorityHigh:
		return PriorityCritical
	default:
		return PriorityCritical
	}
}

// ItemStatus represents the lifecycle state of a follow-up item
type ItemStatus string

const (
	StatusActive    ItemStatus = "active"
	StatusSnoozed   ItemStatus = "snoozed"
	StatusWaiting   ItemStatus = "waiting"
	StatusCompleted ItemStatus = "completed"
	StatusArchived  ItemStatus = "archived"
	StatusEscalated ItemStatus = "escalated"
)

// Valid reports whether s is a known status value
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSnoozed, StatusWaiting, StatusCompleted, StatusArchived, StatusEscalated:
		return true
	}
	return false
}

// ItemReason records why an item entered the queue
type ItemReason string

const (
	ReasonNeedsReply          ItemReason = "needs_reply"
	ReasonWaitingOnOthers     ItemReason = "waiting_on_others"
	ReasonDeadlineApproaching ItemReason = "deadline_approaching"
	ReasonVIPAttention        ItemReason = "vip_attention"
	ReasonManual              ItemReason = "manual"
	ReasonSLAAtRisk           ItemReason = "sla_at_risk"
	ReasonPeriodicCheck       ItemReason = "periodic_check"
)

// SLAStatus classifies an item's compliance with its SLA deadline
type SLAStatus string

const (
	SLAOnTime  SLAStatus = "on_time"
	SLAAtRisk  SLAStatus = "at_risk"
	SLAOverdue SLAStatus = "overdue"
)

// FollowUpItem represents one message needing continued human attention
type FollowUpItem struct {
	ID       string `json:"id" gorm:"primaryKey"`
	EmailID  string `json:"email_id" gorm:"uniqueIndex;not null"`
	ThreadID string `json:"thread_id" gorm:"index;not null"`

	Subject      string    `json:"subject"`
	From         string    `json:"from" gorm:"column:from_address"`
	To           string    `json:"to" gorm:"column:to_address"`
	ReceivedDate time.Time `json:"received_date"`
	Category     string    `json:"category"`
	Labels       LabelSet  `json:"labels,omitempty" gorm:"type:text"`

	Reason         ItemReason `json:"reason" gorm:"default:manual"`
	Status         ItemStatus `json:"status" gorm:"index;default:active"`
	AddedToQueueAt time.Time  `json:"added_to_queue_at"`
	SnoozedUntil   *time.Time `json:"snoozed_until,omitempty" gorm:"index"`
	LastActionDate *time.Time `json:"last_action_date,omitempty"`

	Priority      Priority   `json:"priority" gorm:"index;default:medium"`
	SLADeadline   *time.Time `json:"sla_deadline,omitempty"`
	SLAStatus     SLAStatus  `json:"sla_status" gorm:"index;default:on_time"`
	TimeRemaining *float64   `json:"time_remaining,omitempty"` // hours, informational cache

	WaitingOnEmail   string     `json:"waiting_on_email,omitempty"`
	WaitingReason    string     `json:"waiting_reason,omitempty"`
	OriginalSentDate *time.Time `json:"original_sent_date,omitempty"`

	SuggestedSnoozeTime *time.Time `json:"suggested_snooze_time,omitempty"`
	SuggestedActions    LabelSet   `json:"suggested_actions,omitempty" gorm:"type:text"`
	AIReasoning         string     `json:"ai_reasoning,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ActionCount int       `json:"action_count" gorm:"default:0"`
	SnoozeCount int       `json:"snooze_count" gorm:"default:0"`
}

// Validate checks the rules every item must satisfy before persisting.
// Returns a ValidationError listing all violated rules, or nil.
func (i *FollowUpItem) Validate(now time.Time) error {
	var violations []string

	if i.EmailID == "" {
		violations = append(violations, "email_id is required")
	}
	if i.ThreadID == "" {
		violations = append(violations, "thread_id is required")
	}
	if !i.Priority.Valid() {
		violations = append(violations, "invalid priority: "+string(i.Priority))
	}
	if !i.Status.Valid() {
		violations = append(violations, "invalid status: "+string(i.Status))
	}
	if i.SnoozedUntil != nil && i.SnoozedUntil.Before(now) {
		violations = append(violations, "snoozed_until must not be in the past")
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
