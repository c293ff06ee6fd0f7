package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/inkwell-blog-backend/database"
)

type profileHandler struct {
	responder   Responder
	logger      zerolog.Logger
	profileRepo *database.UserProfileRepo
}

func newProfileHandler(profileRepo *database.UserProfileRepo) profileHandler {
	logger := log.With().Str("handlerName", "profileHandler").Logger()

	return profileHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		profileRepo: profileRepo,
	}
}

// getProfile returns the caller's profile, creating an empty one on first
// access so the client never sees a 404 for its own profile.
func (h profileHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromCtx(r.Context())

		profile, err := h.profileRepo.GetOrCreate(identity.UserID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "profile", err))
			return
		}

		h.responder.WriteJSON(w, profile)
	}
}

// updateProfile replaces the caller's editable profile fields.
func (h profileHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromCtx(r.Context())

		var req updateProfileRequest
		if err := decodeAndValidate(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		profile, err := h.profileRepo.GetOrCreate(identity.UserID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "profile", err))
			return
		}

		profile.Bio = req.Bio
		profile.Website = req.Website
		profile.Location = req.Location
		profile.DateOfBirth = req.DateOfBirth

		if err := h.profileRepo.Update(profile); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "profile", err))
			return
		}

		h.responder.WriteJSON(w, profile)
	}
}
