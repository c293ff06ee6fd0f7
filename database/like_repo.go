package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

// Toggle flips the like state for the (post, user) pair and reports the new
// state. Delete-then-insert inside one transaction, with the composite unique
// index as backstop. The insert runs with ON CONFLICT DO NOTHING so a
// concurrent toggle winning the race never aborts the transaction; zero
// affected rows means the pair is already liked and the toggle resolves to a
// delete, so two racing toggles can never leave duplicate rows.
func (r *LikeRepo) Toggle(postID, userID uuid.UUID) (bool, error) {
	var liked bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}

		like := models.Like{PostID: postID, UserID: userID}
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			liked = false
			return tx.Where("post_id = ? AND user_id = ?", postID, userID).
				Delete(&models.Like{}).Error
		}
		liked = true
		return nil
	})
	return liked, err
}

// Count returns the number of likes on a post.
func (r *LikeRepo) Count(postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// HasLiked reports whether the given user liked the post. An anonymous caller
// (nil user id) is never an error; it simply has liked nothing.
func (r *LikeRepo) HasLiked(postID, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}
