package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment belongs to exactly one post and one user. ParentID supports a single
// level of reply nesting; a reply's own replies are never exposed. Comments are
// approved by default and are never edited in place.
type Comment struct {
	ID         uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	PostID     uuid.UUID  `json:"postId" db:"post_id" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID  `json:"userId" db:"user_id" gorm:"type:uuid;not null;index"`
	Content    string     `json:"content" db:"content" gorm:"type:text;not null"`
	ParentID   *uuid.UUID `json:"parentId,omitempty" db:"parent_id" gorm:"type:uuid;index"`
	IsApproved bool       `json:"isApproved" db:"is_approved" gorm:"not null;default:true"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`

	User    User      `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Parent  *Comment  `json:"-" gorm:"foreignKey:ParentID;references:ID"`
	Replies []Comment `json:"replies,omitempty" gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsTopLevel reports whether the comment starts a thread rather than replying to one.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
