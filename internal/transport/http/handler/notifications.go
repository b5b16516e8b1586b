package handler

import (
	"net/http"

	"github.com/commission-api/internal/application/notification"
	"github.com/commission-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List returns unseen notifications, or all of them with ?all=true.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	ns, err := h.svc.List(r.Context(), c.UserID, r.URL.Query().Get("all") == "true")
	if err != nil {
		httpError(w, err)
		return
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, ns)
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), c.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) Count(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	n, err := h.svc.CountUnseen(r.Context(), c.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: n})
}

// Open marks the notification seen and returns where it points.
func (h *NotificationHandler) Open(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	url, err := h.svc.Open(r.Context(), chi.URLParam(r, "id"), c.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RedirectEnvelope{URL: url})
}

func (h *NotificationHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkSeen(r.Context(), chi.URLParam(r, "id"), c.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllSeen(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkAllSeen(r.Context(), c.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: n})
}

// MarkChatSeen clears the chat message notifications of one chat.
func (h *NotificationHandler) MarkChatSeen(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkChatSeen(r.Context(), chi.URLParam(r, "id"), c.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: n})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), c.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification deleted"})
}
