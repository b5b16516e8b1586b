package notification

import (
	"fmt"

	"github.com/commission-api/internal/domain"
)

// ContentURL resolves the page a notification points at.
// A missing payload is ErrNotFound; a payload outside the six kinds is ErrUnknownPayloadKind.
func ContentURL(links domain.Links, n *domain.Notification) (string, error) {
	if n == nil || n.Payload == nil {
		return "", fmt.Errorf("notification has no payload: %w", domain.ErrNotFound)
	}
	switch p := n.Payload.(type) {
	case domain.ChatMessagePayload:
		return links.ChatMessage(p.ChatID, p.MessageID), nil
	case domain.OfferPostedPayload:
		return links.Offer(p.OfferID), nil
	case domain.CommissionStatePayload:
		return links.Commission(p.CommissionID), nil
	case domain.CommissionCreatedPayload:
		return links.Commission(p.CommissionID), nil
	case domain.UserFollowedPayload:
		return links.User(p.FollowerID), nil
	case domain.SupportTicketStatePayload:
		return links.SupportTicket(p.TicketID), nil
	}
	return "", fmt.Errorf("notification %s payload %T: %w", n.NotificationID, n.Payload, domain.ErrUnknownPayloadKind)
}
