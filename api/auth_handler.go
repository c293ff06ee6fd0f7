package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/inkwell-blog-backend/database"
	"github.com/rpupo63/inkwell-blog-backend/errs"
	"github.com/rpupo63/inkwell-blog-backend/models"
)

type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	userRepo      *database.UserRepo
	profileRepo   *database.UserProfileRepo
	secret        []byte
	tokenLifetime time.Duration
}

func newAuthHandler(userRepo *database.UserRepo, profileRepo *database.UserProfileRepo, secret []byte, tokenLifetime time.Duration) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		secret:        secret,
		tokenLifetime: tokenLifetime,
	}
}

type tokenResponse struct {
	Token    string    `json:"token"`
	User     userView  `json:"user"`
	IssuedAt time.Time `json:"issuedAt"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// register creates a new user together with its empty profile, matching the
// registration flow of the reader-facing site.
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeAndValidate(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalError("failed to hash password"))
			return
		}

		user := models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hash),
		}
		if err := h.userRepo.Add(&user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
			return
		}

		if _, err := h.profileRepo.GetOrCreate(user.ID); err != nil {
			// The profile will be created lazily on first access instead.
			h.logger.Error().Err(err).Str("userId", user.ID.String()).Msg("Failed to create profile at registration")
		}

		h.responder.WriteJSONWithStatus(w, http.StatusCreated, userView{
			ID:       user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
		})
	}
}

// login checks credentials and issues a bearer token.
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeAndValidate(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.userRepo.FindByUsername(req.Username)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("invalid credentials"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("invalid credentials"))
			return
		}

		token, err := issueToken(h.secret, user, h.tokenLifetime)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalError("failed to issue token"))
			return
		}

		h.responder.WriteJSON(w, tokenResponse{
			Token: token,
			User: userView{
				ID:       user.ID.String(),
				Username: user.Username,
				Email:    user.Email,
			},
			IssuedAt: time.Now(),
		})
	}
}
