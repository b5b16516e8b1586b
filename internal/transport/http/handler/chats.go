package handler

import (
	"net/http"

	"github.com/commission-api/internal/application/chat"
	"github.com/commission-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ChatHandler struct {
	svc chat.Service
}

func NewChatHandler(svc chat.Service) *ChatHandler { return &ChatHandler{svc: svc} }

func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	ch, err := h.svc.Get(r.Context(), c.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	var req domain.CreateChatMessageRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := h.svc.PostMessage(r.Context(), c.UserID, chi.URLParam(r, "id"), req.Message)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	msgs, err := h.svc.ListMessages(r.Context(), c.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
