package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

// openTestDB gives each test its own in-memory store with the full schema.
// TranslateError is on in production too, so duplicate-key behavior under
// test matches what the Postgres driver reports.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedPost creates a published post with a unique slug derived from the title.
func seedPost(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Post {
	t.Helper()
	return seedPostWithStatus(t, db, author, title, models.StatusPublished)
}

func seedPostWithStatus(t *testing.T, db *gorm.DB, author *models.User, title, status string) *models.Post {
	t.Helper()

	var publishedAt *time.Time
	if status == models.StatusPublished {
		now := time.Now()
		publishedAt = &now
	}

	post := models.Post{
		Title:       title,
		Slug:        fmt.Sprintf("%s-%s", title, uuid.NewString()[:8]),
		AuthorID:    author.ID,
		Content:     "content long enough to be a real post body for testing",
		Excerpt:     "an excerpt",
		Status:      status,
		PublishedAt: publishedAt,
		ReadingTime: 1,
	}
	require.NoError(t, db.Create(&post).Error)
	return &post
}

func seedComment(t *testing.T, db *gorm.DB, post *models.Post, user *models.User, content string, parentID *uuid.UUID) *models.Comment {
	t.Helper()

	comment := models.Comment{
		PostID:     post.ID,
		UserID:     user.ID,
		Content:    content,
		ParentID:   parentID,
		IsApproved: true,
	}
	require.NoError(t, db.Create(&comment).Error)
	return &comment
}
