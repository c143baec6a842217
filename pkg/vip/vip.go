package vip

import (
	"context"
	"log"
	"strings"
	"time"

	"followup-backend/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	cacheLayer = "vip"
	cacheTTL   = time.Hour
)

// Contact is a VIP sender whose messages get tighter follow-up treatment.
// SLAHours, when set, overrides the priority-based SLA default.
type Contact struct {
	ID           string   `json:"id" gorm:"primaryKey"`
	EmailAddress string   `json:"email_address" gorm:"uniqueIndex;not null"`
	Name         string   `json:"name,omitempty"`
	Tier         string   `json:"tier" gorm:"default:standard"`
	SLAHours     *float64 `json:"sla_hours,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service looks up VIP contacts with a cache in front of the table
type Service struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewService creates a VIP lookup service
func NewService(db *gorm.DB, c *cache.Cache) *Service {
	return &Service{db: db, cache: c}
}

// IsVIP returns the VIP record for a sender address, or nil when the sender
// is not a VIP.
func (s *Service) IsVIP(ctx context.Context, fromAddress string) (*Contact, error) {
	addr := strings.ToLower(strings.TrimSpace(fromAddress))
	if addr == "" {
		return nil, nil
	}

	if s.cache != nil {
		var cached Contact
		hit, err := s.cache.GetJSON(ctx, cacheLayer, addr, &cached)
		if err != nil {
			log.Printf("[VIP] cache read failed for %s: %v", addr, err)
		} else if hit {
			return &cached, nil
		}
	}

	var contact Contact
	err := s.db.WithContext(ctx).Where("email_address = ?", addr).First(&contact).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheLayer, addr, &contact, cacheTTL); err != nil {
			log.Printf("[VIP] cache write failed for %s: %v", addr, err)
		}
	}

	return &contact, nil
}

// Upsert creates or updates a VIP contact and invalidates its cache entry
func (s *Service) Upsert(ctx context.Context, contact *Contact) error {
	contact.EmailAddress = strings.ToLower(strings.TrimSpace(contact.EmailAddress))
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}

	var existing Contact
	err := s.db.WithContext(ctx).Where("email_address = ?", contact.EmailAddress).First(&existing).Error
	if err == nil {
		contact.ID = existing.ID
		contact.CreatedAt = existing.CreatedAt
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	if err := s.db.WithContext(ctx).Save(contact).Error; err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheLayer, contact.EmailAddress); err != nil {
			log.Printf("[VIP] cache invalidation failed for %s: %v", contact.EmailAddress, err)
		}
	}
	return nil
}
