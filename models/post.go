package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Publication states for a Post.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post is a blog entry. Slug, Excerpt, ReadingTime and PublishedAt are derived
// fields; they are normalized by services.NormalizePost before every write, not
// by database triggers or hooks.
type Post struct {
	ID            uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title         string     `json:"title" db:"title" gorm:"type:text;not null"`
	Slug          string     `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex"`
	AuthorID      uuid.UUID  `json:"authorId" db:"author_id" gorm:"type:uuid;not null;index:idx_posts_author_status,priority:1"`
	Content       string     `json:"content" db:"content" gorm:"type:text;not null"`
	Excerpt       string     `json:"excerpt" db:"excerpt" gorm:"type:text"`
	FeaturedImage *string    `json:"featuredImage,omitempty" db:"featured_image" gorm:"type:text"`
	Status        string     `json:"status" db:"status" gorm:"type:text;not null;default:draft;index:idx_posts_status_published,priority:1;index:idx_posts_author_status,priority:2"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty" db:"published_at" gorm:"index:idx_posts_status_published,priority:2"`
	ViewCount     int64      `json:"viewCount" db:"view_count" gorm:"not null;default:0"`
	ReadingTime   int        `json:"readingTime" db:"reading_time" gorm:"not null;default:0"`
	IsFeatured    bool       `json:"isFeatured" db:"is_featured" gorm:"not null;default:false"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	Author User  `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`
	Tags   []Tag `json:"tags,omitempty" gorm:"many2many:post_tags"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsPublished reports whether the post is visible to readers other than its author.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}
