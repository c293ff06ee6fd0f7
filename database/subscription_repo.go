package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

type SubscriptionRepo struct {
	db *gorm.DB
}

func NewSubscriptionRepo(db *gorm.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db}
}

// Subscribe records a newsletter subscription with get-or-create semantics:
// a new email gets a fresh row with a random unsubscribe token, an existing
// inactive one is reactivated, and an already-active one is a no-op. The
// unique email index settles concurrent first-time subscriptions; losing the
// insert just means the row exists, so fall through to reactivation.
func (r *SubscriptionRepo) Subscribe(email string) (*models.NewsletterSubscription, bool, error) {
	var sub models.NewsletterSubscription
	err := r.db.Where("email = ?", email).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = models.NewsletterSubscription{Email: email, IsActive: true}
		if createErr := r.db.Create(&sub).Error; createErr != nil {
			if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return nil, false, createErr
			}
			if err := r.db.Where("email = ?", email).First(&sub).Error; err != nil {
				return nil, false, err
			}
		} else {
			return &sub, true, nil
		}
	} else if err != nil {
		return nil, false, err
	}

	if !sub.IsActive {
		sub.IsActive = true
		if err := r.db.Model(&sub).Update("is_active", true).Error; err != nil {
			return nil, false, err
		}
	}
	return &sub, false, nil
}

// FindByEmail returns a subscription or nil when absent.
func (r *SubscriptionRepo) FindByEmail(email string) (*models.NewsletterSubscription, error) {
	var sub models.NewsletterSubscription
	err := r.db.Where("email = ?", email).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
