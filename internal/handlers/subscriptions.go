package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viewtube/backend/internal/repositories"
)

// SubscriptionHandler implements the channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId} requests.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	channelID := chi.URLParam(r, "channelId")
	if channelID == identity.ID {
		respondError(ctx, w, http.StatusBadRequest, "You cannot subscribe to your own channel")
		return
	}

	sub, err := h.Subscriptions.Toggle(ctx, identity.ID, channelID)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// A concurrent toggle won the insert; the end state is
			// subscribed either way.
			respondData(ctx, w, http.StatusOK, nil, "Subscribed Successfully")
			return
		}
		respondStoreError(ctx, w, err, "Channel not found")
		return
	}

	if sub == nil {
		respondData(ctx, w, http.StatusOK, nil, "Unsubscribed Successfully")
		return
	}
	respondData(ctx, w, http.StatusOK, sub, "Subscribed Successfully")
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId} requests.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := identityFrom(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	users, err := h.Subscriptions.Subscribers(ctx, chi.URLParam(r, "channelId"))
	if err != nil {
		respondStoreError(ctx, w, err, "Channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, users, "Subscribers fetched successfully")
}

// SubscribedChannels handles GET /api/v1/subscriptions/u/{subscriberId} requests.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := identityFrom(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	users, err := h.Subscriptions.SubscribedChannels(ctx, chi.URLParam(r, "subscriberId"))
	if err != nil {
		respondStoreError(ctx, w, err, "User not found")
		return
	}

	respondData(ctx, w, http.StatusOK, users, "Subscribed channels fetched successfully")
}
