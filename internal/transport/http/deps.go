package http

import (
	"github.com/commission-api/internal/application/chat"
	"github.com/commission-api/internal/application/commission"
	"github.com/commission-api/internal/application/follow"
	"github.com/commission-api/internal/application/notification"
	"github.com/commission-api/internal/application/offer"
	"github.com/commission-api/internal/application/search"
	"github.com/commission-api/internal/application/support"
	"github.com/commission-api/internal/application/tag"
	"github.com/commission-api/internal/application/user"
	jwtinfra "github.com/commission-api/internal/infrastructure/jwt"
)

// Deps holds the application services the router exposes.
// JWTProvider may be nil only in tests that inject claims directly.
type Deps struct {
	Users         user.Service
	Offers        offer.Service
	Commissions   commission.Service
	Search        search.Service
	Chats         chat.Service
	Follows       follow.Service
	Support       support.Service
	Notifications notification.Service
	Tags          tag.Service
	JWTProvider   *jwtinfra.Provider
}
