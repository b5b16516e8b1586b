package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/commission-api/internal/domain"
	jwtinfra "github.com/commission-api/internal/infrastructure/jwt"
	"github.com/commission-api/internal/pkg/validate"
	"github.com/commission-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// CountEnvelope wraps counter responses such as unseen notifications.
type CountEnvelope struct {
	Count int `json:"count"`
}

// RedirectEnvelope carries the content URL a notification points at.
type RedirectEnvelope struct {
	URL string `json:"url"`
}

type FollowersEnvelope struct {
	UserID    string   `json:"user_id"`
	Followers []string `json:"followers"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decode reads a JSON body into dst and validates it. It writes the error response itself.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func claims(w http.ResponseWriter, r *http.Request) (*jwtinfra.Claims, bool) {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return c, ok
}

func isStaff(c *jwtinfra.Claims) bool { return c.Role == domain.RoleStaff }

// intParam reads a numeric chi URL parameter.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parsePagination(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	return
}
