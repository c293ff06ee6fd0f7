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
	"github.com/rpupo63/inkwell-blog-backend/services"
	"github.com/rpupo63/inkwell-blog-backend/storage"
)

type postHandler struct {
	responder   Responder
	logger      zerolog.Logger
	postRepo    *database.PostRepo
	tagRepo     *database.TagRepo
	likeRepo    *database.LikeRepo
	commentRepo *database.CommentRepo
	images      storage.ImageStore
}

func newPostHandler(postRepo *database.PostRepo, tagRepo *database.TagRepo, likeRepo *database.LikeRepo, commentRepo *database.CommentRepo, images storage.ImageStore) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		postRepo:    postRepo,
		tagRepo:     tagRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		images:      images,
	}
}

// PostDetail is the detail view: the post plus the interaction state the
// reader-facing page renders next to it.
type PostDetail struct {
	Post         models.Post   `json:"post"`
	LikeCount    int64         `json:"likeCount"`
	HasLiked     bool          `json:"hasLiked"`
	CommentCount int64         `json:"commentCount"`
	RelatedPosts []models.Post `json:"relatedPosts"`
}

// listPosts returns published posts, searchable and filterable, page size 6.
func (h postHandler) listPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := database.PostFilter{
			Status:         models.StatusPublished,
			Search:         query.Get("search"),
			TagSlug:        query.Get("tag"),
			AuthorUsername: query.Get("author"),
			Sort:           database.SortNewest,
			Page:           pageParam(r),
			PageSize:       listPageSize,
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

// getPost returns one post by slug. Drafts are visible to their author only;
// anyone else gets a 404, never a 403, so drafts stay unguessable. A view of a
// published post bumps its view count atomically.
func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromCtx(r.Context())

		post, err := h.postRepo.FindBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil || (!post.IsPublished() && post.AuthorID != identity.UserID) {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}

		if post.IsPublished() {
			if err := h.postRepo.IncrementViewCount(post.ID); err != nil {
				// The page still renders; only the counter is behind.
				h.logger.Error().Err(err).Str("slug", post.Slug).Msg("Failed to increment view count")
			} else {
				post.ViewCount++
			}
		}

		likeCount, err := h.likeRepo.Count(post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "likes", err))
			return
		}

		hasLiked, err := h.likeRepo.HasLiked(post.ID, identity.UserID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("check", "like", err))
			return
		}

		commentCount, err := h.commentRepo.CountForPost(post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "comments", err))
			return
		}

		related, err := h.postRepo.Related(post.ID, relatedPostLimit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "related posts", err))
			return
		}

		h.responder.WriteJSON(w, PostDetail{
			Post:         *post,
			LikeCount:    likeCount,
			HasLiked:     hasLiked,
			CommentCount: commentCount,
			RelatedPosts: related,
		})
	}
}

// createPost validates the payload, runs the derived-field pipeline and
// persists the post with its tags.
func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromCtx(r.Context())

		var req createPostRequest
		if err := decodeAndValidate(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		status := req.Status
		if status == "" {
			status = models.StatusDraft
		}

		post := models.Post{
			Title:      req.Title,
			Content:    req.Content,
			Excerpt:    req.Excerpt,
			Status:     status,
			AuthorID:   identity.UserID,
			IsFeatured: req.IsFeatured,
		}
		services.NormalizePost(&post, time.Now())

		if err := h.postRepo.Add(&post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "post", err))
			return
		}

		if len(req.Tags) > 0 {
			tags, err := h.tagRepo.FindOrCreate(req.Tags)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("create", "tags", err))
				return
			}
			if err := h.postRepo.ReplaceTags(&post, tags); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("attach", "tags", err))
				return
			}
			post.Tags = tags
		}

		h.responder.WriteJSONWithStatus(w, http.StatusCreated, post)
	}
}

// updatePost re-runs the pipeline over the edited fields. Only the author may
// edit; ownership is checked on every request. The slug survives edits (it is
// only derived when blank) and PublishedAt is never re-stamped.
func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromCtx(r.Context())

		post, err := h.postRepo.FindBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}
		if post.AuthorID != identity.UserID {
			h.responder.WriteError(w, errs.NewNotAuthorError("post"))
			return
		}

		var req updatePostRequest
		if err := decodeAndValidate(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post.Title = req.Title
		post.Content = req.Content
		post.Excerpt = req.Excerpt
		post.IsFeatured = req.IsFeatured
		if req.Status != "" {
			post.Status = req.Status
		}
		services.NormalizePost(post, time.Now())

		if err := h.postRepo.Update(post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "post", err))
			return
		}

		if req.Tags != nil {
			tags, err := h.tagRepo.FindOrCreate(req.Tags)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("create", "tags", err))
				return
			}
			if err := h.postRepo.ReplaceTags(post, tags); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("attach", "tags", err))
				return
			}
			post.Tags = tags
		}

		h.responder.WriteJSON(w, post)
	}
}

// deletePost removes an author's own post; comments and likes go with it.
func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromCtx(r.Context())

		post, err := h.postRepo.FindBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}
		if post.AuthorID != identity.UserID {
			h.responder.WriteError(w, errs.NewNotAuthorError("post"))
			return
		}

		if err := h.postRepo.Delete(post.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "post", err))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// uploadFeaturedImage stores a featured image in object storage and records
// its key on the post.
func (h postHandler) uploadFeaturedImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromCtx(r.Context())

		if h.images == nil {
			h.responder.WriteError(w, errs.NewApiErr(http.StatusServiceUnavailable, "image storage is not configured"))
			return
		}

		post, err := h.postRepo.FindBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}
		if post.AuthorID != identity.UserID {
			h.responder.WriteError(w, errs.NewNotAuthorError("post"))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("missing image file"))
			return
		}
		defer file.Close()

		objectKey, err := h.images.Upload(r.Context(), post.ID, header.Filename, file, header.Size)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalError("failed to store image"))
			return
		}

		if err := h.postRepo.SetFeaturedImage(post.ID, objectKey); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "post", err))
			return
		}

		if post.FeaturedImage != nil && *post.FeaturedImage != "" {
			if err := h.images.Remove(r.Context(), *post.FeaturedImage); err != nil {
				h.logger.Error().Err(err).Str("objectKey", *post.FeaturedImage).Msg("Failed to remove replaced image")
			}
		}

		h.responder.WriteJSON(w, map[string]string{"featuredImage": objectKey})
	}
}
