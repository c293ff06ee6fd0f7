package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/inkwell-blog-backend/database"
	"github.com/rpupo63/inkwell-blog-backend/errs"
	"github.com/rpupo63/inkwell-blog-backend/models"
)

// projectionListLimit bounds the syndication feed to the latest posts.
const projectionListLimit = 10

type systemHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          database.Database
	postRepo    *database.PostRepo
	likeRepo    *database.LikeRepo
	commentRepo *database.CommentRepo
}

func newSystemHandler(db database.Database) systemHandler {
	logger := log.With().Str("handlerName", "systemHandler").Logger()

	return systemHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		postRepo:    db.PostRepo(),
		likeRepo:    db.LikeRepo(),
		commentRepo: db.CommentRepo(),
	}
}

type healthStatus struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// health reports process and store liveness. A failing store ping answers 503
// so load balancers stop routing here.
func (h systemHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{
			Status:   "ok",
			Database: "ok",
			Time:     time.Now().UTC(),
		}

		if err := h.db.Ping(); err != nil {
			h.logger.Error().Err(err).Msg("Health probe failed to reach the database")
			status.Status = "degraded"
			status.Database = "unreachable"
			h.responder.WriteJSONWithStatus(w, http.StatusServiceUnavailable, status)
			return
		}

		h.responder.WriteJSON(w, status)
	}
}

// stats exposes whole-site aggregates for the public stats widget.
func (h systemHandler) stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.postRepo.StatsForSite()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("aggregate", "posts", err))
			return
		}

		h.responder.WriteJSON(w, stats)
	}
}

// Syndication projections: a trimmed, read-only view of published posts for
// external consumers. No auth, no drafts, no mutation.

type projectedPost struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Author      string     `json:"author"`
	ReadingTime int        `json:"readingTime"`
	PublishedAt *time.Time `json:"publishedAt"`
	Tags        []string   `json:"tags"`
}

type projectedPostDetail struct {
	projectedPost
	Content      string `json:"content"`
	ViewCount    int64  `json:"viewCount"`
	LikeCount    int64  `json:"likeCount"`
	CommentCount int64  `json:"commentCount"`
}

func projectPost(post models.Post) projectedPost {
	tagNames := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tagNames = append(tagNames, tag.Name)
	}

	return projectedPost{
		Title:       post.Title,
		Slug:        post.Slug,
		Excerpt:     post.Excerpt,
		Author:      post.Author.Username,
		ReadingTime: post.ReadingTime,
		PublishedAt: post.PublishedAt,
		Tags:        tagNames,
	}
}

// projectedPosts lists the latest published posts in projection form.
func (h systemHandler) projectedPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, _, err := h.postRepo.List(database.PostFilter{
			Status:   models.StatusPublished,
			Sort:     database.SortNewest,
			Page:     1,
			PageSize: projectionListLimit,
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "posts", err))
			return
		}

		projected := make([]projectedPost, 0, len(posts))
		for _, post := range posts {
			projected = append(projected, projectPost(post))
		}

		h.responder.WriteJSON(w, projected)
	}
}

// projectedPostDetail returns one published post in projection form, with its
// interaction counts. Reads through this surface never bump the view count.
func (h systemHandler) projectedPostDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.postRepo.FindBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil || !post.IsPublished() {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}

		likeCount, err := h.likeRepo.Count(post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "likes", err))
			return
		}

		commentCount, err := h.commentRepo.CountForPost(post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "comments", err))
			return
		}

		h.responder.WriteJSON(w, projectedPostDetail{
			projectedPost: projectPost(*post),
			Content:       post.Content,
			ViewCount:     post.ViewCount,
			LikeCount:     likeCount,
			CommentCount:  commentCount,
		})
	}
}
