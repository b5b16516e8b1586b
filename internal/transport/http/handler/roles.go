package handler

import (
	"net/http"

	"github.com/commission-api/internal/domain"
)

// ListRoles returns the roles a user can pick at registration.
func ListRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Roles)
}
