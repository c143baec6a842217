package repository

import (
	"context"
	"time"

	"followup-backend/internal/followup/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormHistoryRepository implements HistoryRepository using GORM
type gormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GORM-based HistoryRepository
func NewGormHistoryRepository(db *gorm.DB) HistoryRepository {
	return &gormHistoryRepository{db: db}
}

func (r *gormHistoryRepository) Create(ctx context.Context, entry *domain.QueueHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormHistoryRepository) FindByEmailID(ctx context.Context, emailID string) ([]*domain.QueueHistoryEntry, error) {
	var entries []*domain.QueueHistoryEntry
	err := r.db.WithContext(ctx).Where("email_id = ?", emailID).
		Order("created_at DESC").Find(&entries).Error
	return entries, err
}
