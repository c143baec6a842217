package repository

import (
	"context"
	"time"

	"followup-backend/internal/followup/domain"
)

// ActiveItemsQuery filters reads of active items
type ActiveItemsQuery struct {
	Priority *domain.Priority `json:"priority,omitempty"`
	Category string           `json:"category,omitempty"`
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}

// ItemRepository is the persistence port for follow-up items.
// Finders return (nil, nil) when no record matches.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.FollowUpItem) error
	FindByID(ctx context.Context, id string) (*domain.FollowUpItem, error)
	FindByEmailID(ctx context.Context, emailID string) (*domain.FollowUpItem, error)
	FindActive(ctx context.Context, query ActiveItemsQuery) ([]*domain.FollowUpItem, error)
	FindByStatus(ctx context.Context, status domain.ItemStatus) ([]*domain.FollowUpItem, error)
	FindSnoozedBefore(ctx context.Context, t time.Time) ([]*domain.FollowUpItem, error)
	FindActiveBySLAStatus(ctx context.Context, slaStatus domain.SLAStatus) ([]*domain.FollowUpItem, error)
	FindAll(ctx context.Context) ([]*domain.FollowUpItem, error)
	Update(ctx context.Context, item *domain.FollowUpItem) error
	Delete(ctx context.Context, id string) error
}

// HistoryRepository is the persistence port for the append-only audit trail
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.QueueHistoryEntry) error
	FindByEmailID(ctx context.Context, emailID string) ([]*domain.QueueHistoryEntry, error)
}
