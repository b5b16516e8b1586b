package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/pkg/id"
	"github.com/commission-api/internal/pkg/metrics"
)

// pairWriter persists base and payload records together. Either every pair is written or none.
type pairWriter interface {
	CreateNotifications(ctx context.Context, ns []domain.Notification) error
}

type chatReader interface {
	GetChat(ctx context.Context, chatID string) (*domain.Chat, error)
}

type followerLister interface {
	ListFollowers(ctx context.Context, followedID string) ([]string, error)
}

type userLister interface {
	GetMany(ctx context.Context, userIDs []string) ([]domain.User, error)
}

// Publisher pushes committed notifications to an outside channel.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

type FanoutDeps struct {
	Store     pairWriter
	Chats     chatReader
	Follows   followerLister
	Users     userLister
	Publisher Publisher // optional
	Clock     func() time.Time
}

// Fanout turns committed domain events into per-recipient notifications.
type Fanout struct {
	store     pairWriter
	chats     chatReader
	follows   followerLister
	users     userLister
	publisher Publisher
	now       func() time.Time
}

func NewFanout(deps FanoutDeps) *Fanout {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Fanout{
		store:     deps.Store,
		chats:     deps.Chats,
		follows:   deps.Follows,
		users:     deps.Users,
		publisher: deps.Publisher,
		now:       now,
	}
}

// OnChatMessageCreated notifies every chat participant except the author.
func (f *Fanout) OnChatMessageCreated(ctx context.Context, msg *domain.ChatMessage) error {
	chat, err := f.chats.GetChat(ctx, msg.ChatID)
	if err != nil {
		return f.fail("chat_message", fmt.Errorf("load chat %s: %w", msg.ChatID, err))
	}
	var recipients []string
	for _, p := range chat.ParticipantIDs {
		if p != msg.AuthorID {
			recipients = append(recipients, p)
		}
	}
	return f.emit(ctx, "chat_message", recipients, domain.ChatMessagePayload{ChatID: msg.ChatID, MessageID: msg.MessageID})
}

// OnOfferPosted notifies the author's followers. Adult offers only reach followers who consented.
func (f *Fanout) OnOfferPosted(ctx context.Context, offer *domain.Offer) error {
	followers, err := f.follows.ListFollowers(ctx, offer.AuthorID)
	if err != nil {
		return f.fail("offer_posted", fmt.Errorf("list followers of %s: %w", offer.AuthorID, err))
	}
	if offer.IsAdult() && len(followers) > 0 {
		users, err := f.users.GetMany(ctx, followers)
		if err != nil {
			return f.fail("offer_posted", fmt.Errorf("load followers: %w", err))
		}
		followers = followers[:0]
		for _, u := range users {
			if u.ConsentToAdultContent {
				followers = append(followers, u.UserID)
			}
		}
	}
	return f.emit(ctx, "offer_posted", followers, domain.OfferPostedPayload{OfferID: offer.OfferID})
}

// OnCommissionStateChanged notifies the commissioner with the state the commission just entered.
func (f *Fanout) OnCommissionStateChanged(ctx context.Context, c *domain.Commission) error {
	if c.IsSelfManaged() {
		return nil
	}
	return f.emit(ctx, "commission_state", []string{c.CommissionerID},
		domain.CommissionStatePayload{CommissionID: c.CommissionID, State: c.State})
}

// OnCommissionCreated notifies the offer's author.
func (f *Fanout) OnCommissionCreated(ctx context.Context, c *domain.Commission) error {
	if c.IsSelfManaged() {
		return nil
	}
	return f.emit(ctx, "commission_created", []string{c.OfferAuthorID},
		domain.CommissionCreatedPayload{CommissionID: c.CommissionID})
}

func (f *Fanout) OnUserFollowed(ctx context.Context, edge *domain.UserFollowingUser) error {
	return f.emit(ctx, "user_followed", []string{edge.FollowedID}, domain.UserFollowedPayload{FollowerID: edge.FollowerID})
}

func (f *Fanout) OnSupportTicketStateChanged(ctx context.Context, t *domain.SupportTicket) error {
	return f.emit(ctx, "support_ticket_state", []string{t.AuthorID},
		domain.SupportTicketStatePayload{TicketID: t.TicketID, State: t.State})
}

func (f *Fanout) emit(ctx context.Context, event string, recipients []string, p domain.Payload) error {
	if len(recipients) == 0 {
		return nil
	}
	now := f.now().UTC()
	ns := make([]domain.Notification, 0, len(recipients))
	for _, r := range recipients {
		ns = append(ns, domain.Notification{
			NotificationID: id.New(),
			RecipientID:    r,
			Kind:           p.Kind(),
			CreatedAt:      now,
			Payload:        p,
		})
	}
	if err := f.store.CreateNotifications(ctx, ns); err != nil {
		return f.fail(event, fmt.Errorf("create %d %s notifications: %w", len(ns), p.Kind(), err))
	}
	metrics.NotificationsCreated.WithLabelValues(string(p.Kind())).Add(float64(len(ns)))
	f.publish(ctx, ns)
	return nil
}

func (f *Fanout) publish(ctx context.Context, ns []domain.Notification) {
	if f.publisher == nil {
		return
	}
	for _, n := range ns {
		if err := f.publisher.Publish(ctx, n); err != nil {
			metrics.SideChannelFailures.WithLabelValues("sns").Inc()
			slog.Warn("notification publish failed", "notification_id", n.NotificationID, "kind", n.Kind, "err", err)
		}
	}
}

func (f *Fanout) fail(event string, err error) error {
	metrics.FanoutFailures.WithLabelValues(event).Inc()
	return err
}
