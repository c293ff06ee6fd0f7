package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a label shared across posts through the post_tags join table.
// Names are unique; the slug is the URL-facing form of the name.
type Tag struct {
	ID   uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name string    `json:"name" db:"name" gorm:"type:text;not null;uniqueIndex"`
	Slug string    `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex"`

	Posts []Post `json:"-" gorm:"many2many:post_tags"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
