package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile is a one-to-one extension of User. It is created eagerly at
// registration or lazily on the first profile read (get-or-create), so callers
// can always assume one exists.
type UserProfile struct {
	ID             uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID         uuid.UUID  `json:"userId" db:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	Bio            string     `json:"bio" db:"bio" gorm:"type:text"`
	ProfilePicture *string    `json:"profilePicture,omitempty" db:"profile_picture" gorm:"type:text"`
	Website        string     `json:"website" db:"website" gorm:"type:text"`
	Location       string     `json:"location" db:"location" gorm:"type:text"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
