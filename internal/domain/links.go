package domain

import (
	"fmt"
	"strings"
)

// Links builds canonical content paths for notification targets.
type Links interface {
	ChatMessage(chatID, messageID string) string
	Offer(offerID int64) string
	Commission(commissionID int64) string
	User(userID string) string
	SupportTicket(ticketID string) string
}

// PathLinks renders paths under an optional public base URL.
type PathLinks struct {
	BaseURL string
}

func (l PathLinks) ChatMessage(chatID, messageID string) string {
	return l.join(fmt.Sprintf("/chats/%s#message_%s", chatID, messageID))
}

func (l PathLinks) Offer(offerID int64) string {
	return l.join(fmt.Sprintf("/offers/%d", offerID))
}

func (l PathLinks) Commission(commissionID int64) string {
	return l.join(fmt.Sprintf("/commissions/%d", commissionID))
}

func (l PathLinks) User(userID string) string {
	return l.join("/users/" + userID)
}

func (l PathLinks) SupportTicket(ticketID string) string {
	return l.join("/support/" + ticketID)
}

func (l PathLinks) join(path string) string {
	return strings.TrimRight(l.BaseURL, "/") + path
}
