package api

import (
	"time"

	"github.com/rpupo63/inkwell-blog-backend/database"
	"github.com/rpupo63/inkwell-blog-backend/storage"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, images storage.ImageStore, secret []byte, tokenLifetime time.Duration) *routeHandlers {
	return &routeHandlers{
		authHandler:       newAuthHandler(db.UserRepo(), db.UserProfileRepo(), secret, tokenLifetime),
		postHandler:       newPostHandler(db.PostRepo(), db.TagRepo(), db.LikeRepo(), db.CommentRepo(), images),
		commentHandler:    newCommentHandler(db.CommentRepo(), db.PostRepo()),
		likeHandler:       newLikeHandler(db.LikeRepo(), db.PostRepo()),
		profileHandler:    newProfileHandler(db.UserProfileRepo()),
		newsletterHandler: newNewsletterHandler(db.SubscriptionRepo()),
		discoveryHandler:  newDiscoveryHandler(db.PostRepo(), db.TagRepo(), db.UserRepo(), db.CommentRepo(), db.UserProfileRepo()),
		systemHandler:     newSystemHandler(db),
	}
}
