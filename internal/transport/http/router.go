package http

import (
	"net/http"

	"github.com/commission-api/internal/config"
	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/transport/http/handler"
	appmiddleware "github.com/commission-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, per client IP on write endpoints.
	writeRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(deps.Users)
	offerH := handler.NewOfferHandler(deps.Offers, deps.Search)
	commissionH := handler.NewCommissionHandler(deps.Commissions, deps.Search)
	chatH := handler.NewChatHandler(deps.Chats)
	followH := handler.NewFollowHandler(deps.Follows)
	supportH := handler.NewSupportHandler(deps.Support)
	notifH := handler.NewNotificationHandler(deps.Notifications)
	tagH := handler.NewTagHandler(deps.Tags)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/roles", handler.ListRoles)
		r.Get("/offers/{id}", offerH.Get)
		r.Get("/offers/{id}/slots", offerH.Slots)
		r.Get("/users/{id}/offers", offerH.ListByAuthor)
		r.Get("/users/{id}/followers", followH.Followers)
		r.Get("/tags", tagH.List)
		r.Get("/tags/{name}", tagH.Get)
		r.Get("/tag-categories", tagH.ListCategories)
		r.Get("/tag-categories/{name}", tagH.GetCategory)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.With(writeRL.Limit).Post("/users", userH.Register)
			r.Get("/users/me", userH.Me)
			r.Put("/users/me/preferences", userH.UpdatePreferences)
			r.Get("/users/by-username/{username}", userH.GetByUsername)
			r.Get("/users/{id}", userH.Get)
			r.With(writeRL.Limit).Put("/users/{id}/follow", followH.Follow)
			r.Delete("/users/{id}/follow", followH.Unfollow)

			r.With(writeRL.Limit).Post("/offers", offerH.Create)
			r.Put("/offers/{id}", offerH.Update)
			r.Post("/offers/{id}/close", offerH.Close)
			r.With(writeRL.Limit).Post("/offers/{id}/commissions", commissionH.Create)

			r.Get("/dashboard", commissionH.Dashboard)

			r.Get("/commissions", commissionH.Search)
			r.Get("/commissions/share", commissionH.Share)
			r.Get("/commissions/{id}", commissionH.Get)
			r.Put("/commissions/{id}/state", commissionH.UpdateState)

			r.Get("/chats/{id}", chatH.Get)
			r.Get("/chats/{id}/messages", chatH.ListMessages)
			r.With(writeRL.Limit).Post("/chats/{id}/messages", chatH.PostMessage)
			r.Put("/chats/{id}/seen", notifH.MarkChatSeen)

			r.With(writeRL.Limit).Post("/support", supportH.Create)
			r.Get("/support", supportH.ListMine)
			r.Get("/support/{id}", supportH.Get)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/count", notifH.Count)
			r.Put("/notifications/seen", notifH.MarkAllSeen)
			r.Get("/notifications/{id}", notifH.Get)
			r.Get("/notifications/{id}/open", notifH.Open)
			r.Put("/notifications/{id}/seen", notifH.MarkSeen)
			r.Delete("/notifications/{id}", notifH.Delete)

			// Staff-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleStaff))

				r.Put("/support/{id}/state", supportH.UpdateState)

				r.Post("/tags", tagH.Create)
				r.Put("/tags/{name}", tagH.Update)
				r.Delete("/tags/{name}", tagH.Delete)
				r.Post("/tag-categories", tagH.CreateCategory)
				r.Put("/tag-categories/{name}", tagH.UpdateCategory)
				r.Delete("/tag-categories/{name}", tagH.DeleteCategory)
			})
		})
	})

	return r
}
