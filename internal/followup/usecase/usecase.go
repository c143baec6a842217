package usecase

import (
	"context"
	"time"

	"followup-backend/internal/followup/domain"
	"followup-backend/internal/followup/repository"
	"followup-backend/pkg/vip"
)

// VIPLookup is the external VIP contact port
type VIPLookup interface {
	IsVIP(ctx context.Context, fromAddress string) (*vip.Contact, error)
}

// SnoozeRequest carries the parameters of a snooze mutation
type SnoozeRequest struct {
	Until       time.Time `json:"until" binding:"required"`
	Reason      string    `json:"reason,omitempty"`
	Smart       bool      `json:"smart,omitempty"` // true when the time came from an AI suggestion
	AIReasoning string    `json:"ai_reasoning,omitempty"`
}

// ItemUpdates represents a partial update; nil fields are left unchanged
type ItemUpdates struct {
	Subject          *string            `json:"subject,omitempty"`
	Category         *string            `json:"category,omitempty"`
	Labels           *[]string          `json:"labels,omitempty"`
	Priority         *domain.Priority   `json:"priority,omitempty"`
	Status           *domain.ItemStatus `json:"status,omitempty"`
	Reason           *domain.ItemReason `json:"reason,omitempty"`
	WaitingOnEmail   *string            `json:"waiting_on_email,omitempty"`
	WaitingReason    *string            `json:"waiting_reason,omitempty"`
	SuggestedActions *[]string          `json:"suggested_actions,omitempty"`
	AIReasoning      *string            `json:"ai_reasoning,omitempty"`
}

// BulkFailure reports one failed item of a bulk operation
type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult collects per-item outcomes; one failure never aborts the batch
type BulkResult struct {
	Successful     []string      `json:"successful"`
	Failed         []BulkFailure `json:"failed"`
	TotalProcessed int           `json:"total_processed"`
}

// QueueUsecase is the follow-up queue orchestrator: it owns the item
// lifecycle, validation, history and statistics.
type QueueUsecase interface {
	AddItem(ctx context.Context, item *domain.FollowUpItem) (*domain.FollowUpItem, error)
	UpdateItem(ctx context.Context, id string, updates ItemUpdates) (*domain.FollowUpItem, error)
	RemoveItem(ctx context.Context, id string) error

	GetItem(ctx context.Context, id string) (*domain.FollowUpItem, error)
	GetActiveItems(ctx context.Context, query repository.ActiveItemsQuery) ([]*domain.FollowUpItem, error)
	GetWaitingItems(ctx context.Context) ([]*domain.FollowUpItem, error)
	GetOverdueItems(ctx context.Context) ([]*domain.FollowUpItem, error)
	GetItemsByPriority(ctx context.Context, priority domain.Priority) ([]*domain.FollowUpItem, error)

	CheckSnoozedItems(ctx context.Context) ([]*domain.FollowUpItem, error)
	SnoozeItem(ctx context.Context, id string, req SnoozeRequest) (*domain.FollowUpItem, error)
	MarkCompleted(ctx context.Context, id string) (*domain.FollowUpItem, error)
	MarkWaiting(ctx context.Context, id, waitingOn, reason string) (*domain.FollowUpItem, error)
	Escalate(ctx context.Context, id string, newPriority domain.Priority) (*domain.FollowUpItem, error)

	BulkSnooze(ctx context.Context, ids []string, req SnoozeRequest) *BulkResult
	BulkComplete(ctx context.Context, ids []string) *BulkResult

	ProcessNewClassification(ctx context.Context, c domain.ClassificationResult, meta domain.EmailMetadata) (*domain.FollowUpItem, error)

	GetStatistics(ctx context.Context) (*domain.QueueStatistics, error)
	GetItemHistory(ctx context.Context, emailID string) ([]*domain.QueueHistoryEntry, error)

	SetVIPLookup(v VIPLookup)
}
