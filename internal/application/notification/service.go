package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/commission-api/internal/domain"
)

type Service interface {
	List(ctx context.Context, userID string, includeSeen bool) ([]domain.Notification, error)
	Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	CountUnseen(ctx context.Context, userID string) (int, error)
	MarkSeen(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAllSeen(ctx context.Context, userID string) (int, error)
	MarkChatSeen(ctx context.Context, chatID, userID string) (int, error)
	Open(ctx context.Context, notificationID, userID string) (string, error)
	Delete(ctx context.Context, notificationID, userID string) error
	DeletePayload(ctx context.Context, notificationID string) error
	DeletePayloads(ctx context.Context, notificationIDs []string) error
}

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, includeSeen bool) ([]domain.Notification, error)
	CountUnseen(ctx context.Context, recipientID string) (int, error)
	MarkSeen(ctx context.Context, notificationIDs ...string) error
	DeletePayload(ctx context.Context, notificationID string) (*domain.PayloadRecord, error)
	DeleteBase(ctx context.Context, notificationID string) error
}

// postDeleteHook runs after the payload record of its kind is gone.
type postDeleteHook func(ctx context.Context, rec *domain.PayloadRecord) error

type service struct {
	repo  notificationStore
	links domain.Links
	hooks map[domain.PayloadKind]postDeleteHook
}

type ServiceDeps struct {
	Repo  notificationStore
	Links domain.Links
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:  deps.Repo,
		links: deps.Links,
		hooks: make(map[domain.PayloadKind]postDeleteHook, len(domain.PayloadKinds)),
	}
	if s.links == nil {
		s.links = domain.PathLinks{}
	}
	// A payload never outlives its base: every kind drops the base row after its payload.
	for _, kind := range domain.PayloadKinds {
		s.hooks[kind] = s.deleteBase
	}
	return s
}

func (s *service) deleteBase(ctx context.Context, rec *domain.PayloadRecord) error {
	return s.repo.DeleteBase(ctx, rec.NotificationID)
}

func (s *service) List(ctx context.Context, userID string, includeSeen bool) ([]domain.Notification, error) {
	return s.repo.ListByRecipient(ctx, userID, includeSeen)
}

func (s *service) Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return n, nil
}

func (s *service) CountUnseen(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnseen(ctx, userID)
}

func (s *service) MarkSeen(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.Get(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	if n.Seen {
		return n, nil
	}
	if err := s.repo.MarkSeen(ctx, notificationID); err != nil {
		return nil, err
	}
	n.Seen = true
	return n, nil
}

func (s *service) MarkAllSeen(ctx context.Context, userID string) (int, error) {
	unseen, err := s.repo.ListByRecipient(ctx, userID, false)
	if err != nil {
		return 0, err
	}
	if len(unseen) == 0 {
		return 0, nil
	}
	ids := make([]string, len(unseen))
	for i := range unseen {
		ids[i] = unseen[i].NotificationID
	}
	if err := s.repo.MarkSeen(ctx, ids...); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// MarkChatSeen marks the user's unseen chat-message notifications for chatID as seen.
func (s *service) MarkChatSeen(ctx context.Context, chatID, userID string) (int, error) {
	unseen, err := s.repo.ListByRecipient(ctx, userID, false)
	if err != nil {
		return 0, err
	}
	var ids []string
	for _, n := range unseen {
		if p, ok := n.Payload.(domain.ChatMessagePayload); ok && p.ChatID == chatID {
			ids = append(ids, n.NotificationID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.repo.MarkSeen(ctx, ids...); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Open marks the notification seen and returns where it points.
func (s *service) Open(ctx context.Context, notificationID, userID string) (string, error) {
	n, err := s.MarkSeen(ctx, notificationID, userID)
	if err != nil {
		return "", err
	}
	url, err := ContentURL(s.links, n)
	if errors.Is(err, domain.ErrUnknownPayloadKind) {
		slog.Error("notification integrity", "notification_id", notificationID, "err", err)
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

// Delete removes a notification the user owns, payload first.
func (s *service) Delete(ctx context.Context, notificationID, userID string) error {
	if _, err := s.Get(ctx, notificationID, userID); err != nil {
		return err
	}
	return s.DeletePayload(ctx, notificationID)
}

// DeletePayload deletes the payload record and then runs the hook registered for its kind.
func (s *service) DeletePayload(ctx context.Context, notificationID string) error {
	rec, err := s.repo.DeletePayload(ctx, notificationID)
	if err != nil {
		return err
	}
	hook, ok := s.hooks[rec.Kind]
	if !ok {
		slog.Error("integrity: no post-delete hook for payload kind",
			"notification_id", notificationID, "kind", rec.Kind)
		return fmt.Errorf("payload %s: %w", notificationID, domain.ErrUnknownPayloadKind)
	}
	if err := hook(ctx, rec); err != nil {
		slog.Error("integrity: payload deleted but base notification remains",
			"notification_id", notificationID, "kind", rec.Kind, "err", err)
		return fmt.Errorf("delete base of %s: %w", notificationID, err)
	}
	return nil
}

func (s *service) DeletePayloads(ctx context.Context, notificationIDs []string) error {
	var errs []error
	for _, nid := range notificationIDs {
		if err := s.DeletePayload(ctx, nid); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
