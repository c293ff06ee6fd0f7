package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/inkwell-blog-backend/database"
)

type newsletterHandler struct {
	responder        Responder
	logger           zerolog.Logger
	subscriptionRepo *database.SubscriptionRepo
}

func newNewsletterHandler(subscriptionRepo *database.SubscriptionRepo) newsletterHandler {
	logger := log.With().Str("handlerName", "newsletterHandler").Logger()

	return newsletterHandler{
		responder:        NewResponder(logger),
		logger:           logger,
		subscriptionRepo: subscriptionRepo,
	}
}

type subscribeResponse struct {
	Email      string `json:"email"`
	Subscribed bool   `json:"subscribed"`
	Message    string `json:"message"`
}

// subscribe records a newsletter subscription. Subscribing an email that is
// already active answers 200 instead of erroring; an inactive one is
// reactivated. No confirmation mail is sent.
func (h newsletterHandler) subscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := decodeAndValidate(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		sub, created, err := h.subscriptionRepo.Subscribe(email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "subscription", err))
			return
		}

		resp := subscribeResponse{
			Email:      sub.Email,
			Subscribed: true,
			Message:    "already subscribed",
		}
		if created {
			resp.Message = "subscribed"
			h.responder.WriteJSONWithStatus(w, http.StatusCreated, resp)
			return
		}

		h.responder.WriteJSON(w, resp)
	}
}
