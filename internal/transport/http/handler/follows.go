package handler

import (
	"net/http"

	"github.com/commission-api/internal/application/follow"
	"github.com/go-chi/chi/v5"
)

type FollowHandler struct {
	svc follow.Service
}

func NewFollowHandler(svc follow.Service) *FollowHandler { return &FollowHandler{svc: svc} }

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	if err := h.svc.Follow(r.Context(), c.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "following"})
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	if err := h.svc.Unfollow(r.Context(), c.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "unfollowed"})
}

func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	ids, err := h.svc.Followers(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, FollowersEnvelope{UserID: userID, Followers: ids})
}
