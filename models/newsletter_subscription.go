package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewsletterSubscription holds one unique email per subscriber. Re-subscribing
// an inactive email reactivates the existing row instead of duplicating it.
// The unsubscribe token is minted once at creation for future unsubscribe links;
// no mail is ever sent from this service.
type NewsletterSubscription struct {
	ID               uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Email            string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex"`
	IsActive         bool      `json:"isActive" db:"is_active" gorm:"not null;default:true"`
	SubscribedAt     time.Time `json:"subscribedAt" db:"subscribed_at" gorm:"autoCreateTime;not null"`
	UnsubscribeToken uuid.UUID `json:"-" db:"unsubscribe_token" gorm:"type:uuid;not null;uniqueIndex"`
}

func (s *NewsletterSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.UnsubscribeToken == uuid.Nil {
		s.UnsubscribeToken = uuid.New()
	}
	return nil
}
