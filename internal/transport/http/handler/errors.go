package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/commission-api/internal/application/guard"
	"github.com/commission-api/internal/domain"
)

// guardStatus maps guard rejection codes to HTTP status.
var guardStatus = map[string]int{
	"rate_limited":          http.StatusTooManyRequests,
	"quota_exceeded":        http.StatusConflict,
	"user_quota_exceeded":   http.StatusConflict,
	"offer_full":            http.StatusConflict,
	"offer_closed":          http.StatusConflict,
	"invalid_range":         http.StatusBadRequest,
	"invalid_configuration": http.StatusBadRequest,
}

// httpError maps domain errors to HTTP status codes. Guard rejections also carry their machine code.
func httpError(w http.ResponseWriter, err error) {
	if code := guard.Reason(err); code != "" {
		writeJSON(w, guardStatus[code], MessageEnvelope{Error: err.Error(), Code: code})
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
