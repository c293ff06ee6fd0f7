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

// trendingWindow bounds the trending view to recent publications.
const trendingWindow = 30 * 24 * time.Hour

type discoveryHandler struct {
	responder   Responder
	logger      zerolog.Logger
	postRepo    *database.PostRepo
	tagRepo     *database.TagRepo
	userRepo    *database.UserRepo
	commentRepo *database.CommentRepo
	profileRepo *database.UserProfileRepo
}

func newDiscoveryHandler(postRepo *database.PostRepo, tagRepo *database.TagRepo, userRepo *database.UserRepo, commentRepo *database.CommentRepo, profileRepo *database.UserProfileRepo) discoveryHandler {
	logger := log.With().Str("handlerName", "discoveryHandler").Logger()

	return discoveryHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		postRepo:    postRepo,
		tagRepo:     tagRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		profileRepo: profileRepo,
	}
}

// sortParam maps the ?sort= query values onto repo sort modes, defaulting to
// newest for anything unrecognized.
func sortParam(r *http.Request) database.PostSort {
	switch r.URL.Query().Get("sort") {
	case "popular":
		return database.SortPopular
	case "views":
		return database.SortViews
	case "comments":
		return database.SortComments
	default:
		return database.SortNewest
	}
}

// search is the full discovery query: free-text search over title, content and
// excerpt, combinable with tag and author filters, page size 9.
func (h discoveryHandler) search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := database.PostFilter{
			Status:         models.StatusPublished,
			Search:         query.Get("q"),
			TagSlug:        query.Get("tag"),
			AuthorUsername: query.Get("author"),
			Sort:           sortParam(r),
			Page:           pageParam(r),
			PageSize:       discoveryPageSize,
		}

		posts, total, err := h.postRepo.List(filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("search", "posts", err))
			return
		}

		h.responder.WriteJSON(w, Page[models.Post]{
			Items:    posts,
			Total:    total,
			Page:     filter.Page,
			PageSize: filter.PageSize,
		})
	}
}

// trending lists posts published in the last 30 days, most viewed first.
func (h discoveryHandler) trending() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since := time.Now().Add(-trendingWindow)
		filter := database.PostFilter{
			Status:   models.StatusPublished,
			Since:    &since,
			Sort:     database.SortViews,
			Page:     pageParam(r),
			PageSize: discoveryPageSize,
		}

		posts, total, err := h.postRepo.List(filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "posts", err))
			return
		}

		h.responder.WriteJSON(w, Page[models.Post]{
			Items:    posts,
			Total:    total,
			Page:     filter.Page,
			PageSize: filter.PageSize,
		})
	}
}

// featured lists editor-picked posts, newest first.
func (h discoveryHandler) featured() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := database.PostFilter{
			Status:       models.StatusPublished,
			FeaturedOnly: true,
			Sort:         database.SortNewest,
			Page:         pageParam(r),
			PageSize:     discoveryPageSize,
		}

		posts, total, err := h.postRepo.List(filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "posts", err))
			return
		}

		h.responder.WriteJSON(w, Page[models.Post]{
			Items:    posts,
			Total:    total,
			Page:     filter.Page,
			PageSize: filter.PageSize,
		})
	}
}

// popularTags lists tags ordered by how many published posts carry them.
func (h discoveryHandler) popularTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tagRepo.Popular(20)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "tags", err))
			return
		}

		h.responder.WriteJSON(w, tags)
	}
}

// tagPage is a public tag archive: the tag plus its published posts.
type tagPage struct {
	Tag   models.Tag        `json:"tag"`
	Posts Page[models.Post] `json:"posts"`
}

func (h discoveryHandler) tagPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tagSlug := chi.URLParam(r, "slug")

		tag, err := h.tagRepo.FindBySlug(tagSlug)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "tag", err))
			return
		}
		if tag == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("tag not found"))
			return
		}

		filter := database.PostFilter{
			Status:   models.StatusPublished,
			TagSlug:  tagSlug,
			Sort:     sortParam(r),
			Page:     pageParam(r),
			PageSize: discoveryPageSize,
		}
		posts, total, err := h.postRepo.List(filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "posts", err))
			return
		}

		h.responder.WriteJSON(w, tagPage{
			Tag: *tag,
			Posts: Page[models.Post]{
				Items:    posts,
				Total:    total,
				Page:     filter.Page,
				PageSize: filter.PageSize,
			},
		})
	}
}

// authorPage is a public author profile: the user, their profile, their
// published posts and their aggregate stats.
type authorPage struct {
	Username string               `json:"username"`
	Profile  *models.UserProfile  `json:"profile,omitempty"`
	Posts    Page[models.Post]    `json:"posts"`
	Stats    database.AuthorStats `json:"stats"`
}

func (h discoveryHandler) authorPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		user, err := h.userRepo.FindByUsername(username)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("author not found"))
			return
		}

		filter := database.PostFilter{
			Status:   models.StatusPublished,
			AuthorID: user.ID,
			Sort:     sortParam(r),
			Page:     pageParam(r),
			PageSize: discoveryPageSize,
		}
		posts, total, err := h.postRepo.List(filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "posts", err))
			return
		}

		stats, err := h.postRepo.StatsForAuthor(user.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("aggregate", "posts", err))
			return
		}

		profile, err := h.profileRepo.GetOrCreate(user.ID)
		if err != nil {
			// The author page degrades to posts and stats only.
			h.logger.Error().Err(err).Str("username", username).Msg("Failed to load author profile")
			profile = nil
		}

		h.responder.WriteJSON(w, authorPage{
			Username: user.Username,
			Profile:  profile,
			Posts: Page[models.Post]{
				Items:    posts,
				Total:    total,
				Page:     filter.Page,
				PageSize: filter.PageSize,
			},
			Stats: stats,
		})
	}
}

// dashboard is the author's private overview: every post regardless of status
// (page size 8), aggregate stats, the most viewed posts and the latest
// comments left on the author's posts.
type dashboardView struct {
	Posts          Page[models.Post]    `json:"posts"`
	Stats          database.AuthorStats `json:"stats"`
	TopPosts       []models.Post        `json:"topPosts"`
	RecentComments []models.Comment     `json:"recentComments"`
}

func (h discoveryHandler) dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromCtx(r.Context())

		filter := database.PostFilter{
			AuthorID: identity.UserID,
			Sort:     database.SortNewest,
			Page:     pageParam(r),
			PageSize: dashboardPageSize,
		}
		posts, total, err := h.postRepo.List(filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "posts", err))
			return
		}

		stats, err := h.postRepo.StatsForAuthor(identity.UserID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("aggregate", "posts", err))
			return
		}

		topPosts, _, err := h.postRepo.List(database.PostFilter{
			Status:   models.StatusPublished,
			AuthorID: identity.UserID,
			Sort:     database.SortViews,
			Page:     1,
			PageSize: 5,
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "posts", err))
			return
		}

		recentComments, err := h.commentRepo.RecentForAuthor(identity.UserID, 5)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "comments", err))
			return
		}

		h.responder.WriteJSON(w, dashboardView{
			Posts: Page[models.Post]{
				Items:    posts,
				Total:    total,
				Page:     filter.Page,
				PageSize: filter.PageSize,
			},
			Stats:          stats,
			TopPosts:       topPosts,
			RecentComments: recentComments,
		})
	}
}
