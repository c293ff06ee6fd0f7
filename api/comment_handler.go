package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/inkwell-blog-backend/database"
	"github.com/rpupo63/inkwell-blog-backend/errs"
	"github.com/rpupo63/inkwell-blog-backend/models"
)

type commentHandler struct {
	responder   Responder
	logger      zerolog.Logger
	commentRepo *database.CommentRepo
	postRepo    *database.PostRepo
}

func newCommentHandler(commentRepo *database.CommentRepo, postRepo *database.PostRepo) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// listComments returns the approved comments of a published post as threads:
// top-level comments oldest first, each with its replies oldest first.
func (h commentHandler) listComments() http.HandlerFunc {
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

		topLevel, err := h.commentRepo.TopLevelApproved(post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "comments", err))
			return
		}

		threads := make([]CommentThread, 0, len(topLevel))
		for _, comment := range topLevel {
			replies, err := h.commentRepo.ApprovedReplies(comment.ID)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("list", "comments", err))
				return
			}
			threads = append(threads, CommentThread{Comment: comment, Replies: replies})
		}

		h.responder.WriteJSON(w, threads)
	}
}

// addComment attaches a comment to a published post. A reply must point at a
// top-level comment on the same post; threading never goes deeper than one
// level, so replying to a reply re-parents onto the top-level comment.
func (h commentHandler) addComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromCtx(r.Context())

		post, err := h.postRepo.FindBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil || !post.IsPublished() {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}

		var req addCommentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment := models.Comment{
			PostID:  post.ID,
			UserID:  identity.UserID,
			Content: req.Content,
		}

		if req.ParentID != nil {
			parent, err := h.commentRepo.FindByID(*req.ParentID)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("find", "comment", err))
				return
			}
			if parent == nil {
				h.responder.WriteError(w, errs.NewNotFoundError("parent comment not found"))
				return
			}
			if parent.PostID != post.ID {
				h.responder.WriteError(w, errs.NewValidationError("parentId", "parent comment does not belong to this post"))
				return
			}
			if parent.IsTopLevel() {
				comment.ParentID = &parent.ID
			} else {
				comment.ParentID = parent.ParentID
			}
		}

		if err := h.commentRepo.Add(&comment); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "comment", err))
			return
		}

		h.responder.WriteJSONWithStatus(w, http.StatusCreated, comment)
	}
}
