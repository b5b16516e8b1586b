package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	jwtinfra "github.com/commission-api/internal/infrastructure/jwt"
	"github.com/commission-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// --- helpers ---

// authedReq builds a request carrying claims for userID, as middleware.Auth would.
func authedReq(method, target, userID, role string, body []byte) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return r.WithContext(middleware.WithClaims(r.Context(), &jwtinfra.Claims{UserID: userID, Role: role}))
}

// withParams injects chi URL params into the request context.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
