package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/inkwell-blog-backend/database"
	"github.com/rpupo63/inkwell-blog-backend/errs"
)

type likeHandler struct {
	responder Responder
	logger    zerolog.Logger
	likeRepo  *database.LikeRepo
	postRepo  *database.PostRepo
}

func newLikeHandler(likeRepo *database.LikeRepo, postRepo *database.PostRepo) likeHandler {
	logger := log.With().Str("handlerName", "likeHandler").Logger()

	return likeHandler{
		responder: NewResponder(logger),
		logger:    logger,
		likeRepo:  likeRepo,
		postRepo:  postRepo,
	}
}

// toggleLike flips the caller's like on a published post and returns the
// resulting state. Toggling twice lands back where it started.
func (h likeHandler) toggleLike() http.HandlerFunc {
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

		liked, err := h.likeRepo.Toggle(post.ID, identity.UserID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("toggle", "like", err))
			return
		}

		likeCount, err := h.likeRepo.Count(post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "likes", err))
			return
		}

		h.responder.WriteJSON(w, LikeState{Liked: liked, LikeCount: likeCount})
	}
}
