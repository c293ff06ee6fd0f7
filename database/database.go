package database

import (
	"gorm.io/gorm"

	"github.com/rpupo63/inkwell-blog-backend/models"
)

type Database struct {
	db               *gorm.DB
	userRepo         *UserRepo
	postRepo         *PostRepo
	tagRepo          *TagRepo
	commentRepo      *CommentRepo
	likeRepo         *LikeRepo
	profileRepo      *UserProfileRepo
	subscriptionRepo *SubscriptionRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:               db,
		userRepo:         NewUserRepo(db),
		postRepo:         NewPostRepo(db),
		tagRepo:          NewTagRepo(db),
		commentRepo:      NewCommentRepo(db),
		likeRepo:         NewLikeRepo(db),
		profileRepo:      NewUserProfileRepo(db),
		subscriptionRepo: NewSubscriptionRepo(db),
	}
}

// AutoMigrate creates or updates the schema for every entity. Uniqueness
// constraints (slug, like pair, profile user, subscription email and token)
// live in the schema, so every environment enforces them identically.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.UserProfile{},
		&models.NewsletterSubscription{},
	)
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) LikeRepo() *LikeRepo {
	return d.likeRepo
}

func (d Database) UserProfileRepo() *UserProfileRepo {
	return d.profileRepo
}

func (d Database) SubscriptionRepo() *SubscriptionRepo {
	return d.subscriptionRepo
}

// Ping issues a trivial read so the health probe can report store
// connectivity. Failures are reported, never retried.
func (d Database) Ping() error {
	var one int
	return d.db.Raw("SELECT 1").Scan(&one).Error
}
