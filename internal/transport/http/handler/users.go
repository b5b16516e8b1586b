package handler

import (
	"net/http"
	"time"

	"github.com/commission-api/internal/application/user"
	"github.com/commission-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// PublicUser is what other users see of a profile. Email stays private to the owner and staff.
type PublicUser struct {
	UserID   string    `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Created  time.Time `json:"created"`
}

func toPublicUser(u *domain.User) *PublicUser {
	return &PublicUser{UserID: u.UserID, Username: u.Username, Role: u.Role, Created: u.CreatedAt}
}

// UserHandler handles profile endpoints. Accounts themselves live in the identity provider.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

// Register creates the profile for the authenticated subject.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	var req domain.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.Register(r.Context(), c.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Get(r.Context(), c.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	h.write(w, c.UserID == u.UserID || isStaff(c), u)
}

func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	u, err := h.svc.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		httpError(w, err)
		return
	}
	h.write(w, c.UserID == u.UserID || isStaff(c), u)
}

func (h *UserHandler) write(w http.ResponseWriter, full bool, u *domain.User) {
	if full {
		writeJSON(w, http.StatusOK, u)
		return
	}
	writeJSON(w, http.StatusOK, toPublicUser(u))
}

func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	var req domain.UpdatePreferencesRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.UpdatePreferences(r.Context(), c.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
