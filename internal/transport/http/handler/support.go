package handler

import (
	"net/http"

	"github.com/commission-api/internal/application/support"
	"github.com/commission-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type SupportHandler struct {
	svc support.Service
}

func NewSupportHandler(svc support.Service) *SupportHandler { return &SupportHandler{svc: svc} }

func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	var req domain.CreateSupportTicketRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.Create(r.Context(), c.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *SupportHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Get(r.Context(), c.UserID, isStaff(c), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListMine lists the caller's own tickets.
func (h *SupportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	tickets, err := h.svc.ListByAuthor(r.Context(), c.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	if tickets == nil {
		tickets = []domain.SupportTicket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

// UpdateState is mounted behind RequireRole(domain.RoleStaff).
func (h *SupportHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateSupportTicketStateRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.UpdateState(r.Context(), chi.URLParam(r, "id"), req.State)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
