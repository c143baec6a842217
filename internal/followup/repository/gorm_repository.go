package repository

import (
	"context"
	"time"

	"followup-backend/internal/followup/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormItemRepository implements ItemRepository using GORM
type gormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GORM-based ItemRepository
func NewGormItemRepository(db *gorm.DB) ItemRepository {
	return &gormItemRepository{db: db}
}

func (r *gormItemRepository) Create(ctx context.Context, item *domain.FollowUpItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormItemRepository) FindByID(ctx context.Context, id string) (*domain.FollowUpItem, error) {
	var item domain.FollowUpItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *gormItemRepository) FindByEmailID(ctx context.Context, emailID string) (*domain.FollowUpItem, error) {
	var item domain.FollowUpItem
	err := r.db.WithContext(ctx).Where("email_id = ?", emailID).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *gormItemRepository) FindActive(ctx context.Context, query ActiveItemsQuery) ([]*domain.FollowUpItem, error) {
	q := r.db.WithContext(ctx).Where("status = ?", domain.StatusActive)

	if query.Priority != nil {
		q = q.Where("priority = ?", *query.Priority)
	}
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	if query.Offset > 0 {
		q = q.Offset(query.Offset)
	}

	var items []*domain.FollowUpItem
	err := q.Order("CASE WHEN sla_deadline IS NULL THEN 1 ELSE 0 END, sla_deadline ASC, added_to_queue_at ASC").
		Find(&items).Error
	return items, err
}

func (r *gormItemRepository) FindByStatus(ctx context.Context, status domain.ItemStatus) ([]*domain.FollowUpItem, error) {
	var items []*domain.FollowUpItem
	err := r.db.WithContext(ctx).Where("status = ?", status).
		Order("added_to_queue_at ASC").Find(&items).Error
	return items, err
}

func (r *gormItemRepository) FindSnoozedBefore(ctx context.Context, t time.Time) ([]*domain.FollowUpItem, error) {
	var items []*domain.FollowUpItem
	err := r.db.WithContext(ctx).
		Where("status = ? AND snoozed_until IS NOT NULL AND snoozed_until <= ?", domain.StatusSnoozed, t).
		Find(&items).Error
	return items, err
}

func (r *gormItemRepository) FindActiveBySLAStatus(ctx context.Context, slaStatus domain.SLAStatus) ([]*domain.FollowUpItem, error) {
	var items []*domain.FollowUpItem
	err := r.db.WithContext(ctx).
		Where("status = ? AND sla_status = ?", domain.StatusActive, slaStatus).
		Find(&items).Error
	return items, err
}

func (r *gormItemRepository) FindAll(ctx context.Context) ([]*domain.FollowUpItem, error) {
	var items []*domain.FollowUpItem
	err := r.db.WithContext(ctx).Find(&items).Error
	return items, err
}

func (r *gormItemRepository) Update(ctx context.Context, item *domain.FollowUpItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *gormItemRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.FollowUpItem{}, "id = ?", id).Error
}
