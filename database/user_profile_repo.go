package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

type UserProfileRepo struct {
	db *gorm.DB
}

func NewUserProfileRepo(db *gorm.DB) *UserProfileRepo {
	return &UserProfileRepo{db}
}

// GetOrCreate returns the user's profile, creating an empty one on first
// access. The one-to-one unique index resolves the create race: losing the
// insert means another request just created it, so re-read instead of failing.
func (r *UserProfileRepo) GetOrCreate(userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.UserProfile{UserID: userID}
	if err := r.db.Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = r.db.Where("user_id = ?", userID).First(&profile).Error
			if err != nil {
				return nil, err
			}
			return &profile, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Update persists the user-editable profile fields.
func (r *UserProfileRepo) Update(profile *models.UserProfile) error {
	return r.db.Model(profile).
		Select("bio", "profile_picture", "website", "location", "date_of_birth", "updated_at").
		Updates(profile).Error
}
