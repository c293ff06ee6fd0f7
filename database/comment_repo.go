package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// Add inserts a new comment. Content length is validated at the request
// boundary; the repository stores whatever it is handed.
func (r *CommentRepo) Add(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// FindByID returns a comment or nil when absent.
func (r *CommentRepo) FindByID(id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// TopLevelApproved returns the default thread view: approved comments without
// a parent, oldest first.
func (r *CommentRepo) TopLevelApproved(postID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("User").
		Where("post_id = ? AND parent_id IS NULL AND is_approved = ?", postID, true).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// ApprovedReplies fetches one parent's approved replies, oldest first. The
// thread view calls this once per top-level comment; that extra round trip per
// parent is a deliberate simplicity trade-off, not an oversight.
func (r *CommentRepo) ApprovedReplies(parentID uuid.UUID) ([]models.Comment, error) {
	var replies []models.Comment
	err := r.db.Preload("User").
		Where("parent_id = ? AND is_approved = ?", parentID, true).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}

// CountForPost returns the number of comments on a post, replies included.
func (r *CommentRepo) CountForPost(postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// RecentForAuthor returns the latest comments left on any of the author's
// posts, for the dashboard activity feed.
func (r *CommentRepo) RecentForAuthor(authorID uuid.UUID, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("User").
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.author_id = ?", authorID).
		Order("comments.created_at DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}
