package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/pkg/id"
	"github.com/commission-api/internal/pkg/keylock"
)

type Service interface {
	Get(ctx context.Context, viewerID, chatID string) (*domain.Chat, error)
	PostMessage(ctx context.Context, authorID, chatID, text string) (*domain.ChatMessage, error)
	ListMessages(ctx context.Context, viewerID, chatID string) ([]domain.ChatMessage, error)
}

type chatStore interface {
	GetChat(ctx context.Context, chatID string) (*domain.Chat, error)
	PutMessage(ctx context.Context, m *domain.ChatMessage) error
	DeleteMessage(ctx context.Context, messageID string) error
	ListMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error)
}

type messageGuard interface {
	CheckChatMessage(ctx context.Context, authorID string) error
	CheckCommissionMessage(ctx context.Context, authorID string) error
}

type notifier interface {
	OnChatMessageCreated(ctx context.Context, msg *domain.ChatMessage) error
}

type service struct {
	repo     chatStore
	guard    messageGuard
	locker   keylock.Locker
	notifier notifier
	now      func() time.Time
}

type ServiceDeps struct {
	ChatRepo chatStore
	Guard    messageGuard
	Locker   keylock.Locker
	Notifier notifier
	Clock    func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     deps.ChatRepo,
		guard:    deps.Guard,
		locker:   deps.Locker,
		notifier: deps.Notifier,
		now:      now,
	}
}

func (s *service) Get(ctx context.Context, viewerID, chatID string) (*domain.Chat, error) {
	c, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(viewerID) {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrForbidden)
	}
	return c, nil
}

// PostMessage stores a message and notifies the other participants.
// Commission chats go through the commission message guard, others through the chat guard.
func (s *service) PostMessage(ctx context.Context, authorID, chatID, text string) (*domain.ChatMessage, error) {
	c, err := s.Get(ctx, authorID, chatID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, "messages:"+authorID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	check := s.guard.CheckChatMessage
	if c.IsCommissionChat() {
		check = s.guard.CheckCommissionMessage
	}
	if err := check(ctx, authorID); err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		MessageID: id.New(),
		ChatID:    chatID,
		AuthorID:  authorID,
		Message:   text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.PutMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.notifier.OnChatMessageCreated(ctx, msg); err != nil {
		if derr := s.repo.DeleteMessage(ctx, msg.MessageID); derr != nil {
			slog.Error("chat message rollback failed", "message_id", msg.MessageID, "err", derr)
		}
		return nil, fmt.Errorf("notify participants: %w", err)
	}
	return msg, nil
}

func (s *service) ListMessages(ctx context.Context, viewerID, chatID string) ([]domain.ChatMessage, error) {
	if _, err := s.Get(ctx, viewerID, chatID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, chatID)
}
