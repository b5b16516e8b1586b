package support

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/pkg/id"
)

const fieldState = "state"

type Service interface {
	Create(ctx context.Context, authorID string, req domain.CreateSupportTicketRequest) (*domain.SupportTicket, error)
	Get(ctx context.Context, viewerID string, staff bool, ticketID string) (*domain.SupportTicket, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.SupportTicket, error)
	UpdateState(ctx context.Context, ticketID string, state domain.SupportTicketState) (*domain.SupportTicket, error)
}

type ticketStore interface {
	Put(ctx context.Context, t *domain.SupportTicket) error
	Get(ctx context.Context, ticketID string) (*domain.SupportTicket, error)
	Update(ctx context.Context, ticketID string, updates map[string]interface{}) error
	ListByAuthor(ctx context.Context, authorID string) ([]domain.SupportTicket, error)
}

type notifier interface {
	OnSupportTicketStateChanged(ctx context.Context, t *domain.SupportTicket) error
}

type service struct {
	repo     ticketStore
	notifier notifier
	now      func() time.Time
}

type ServiceDeps struct {
	SupportRepo ticketStore
	Notifier    notifier
	Clock       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.SupportRepo, notifier: deps.Notifier, now: now}
}

func (s *service) Create(ctx context.Context, authorID string, req domain.CreateSupportTicketRequest) (*domain.SupportTicket, error) {
	now := s.now().UTC()
	t := &domain.SupportTicket{
		TicketID:    id.New(),
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		State:       domain.SupportTicketStateOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns the ticket to its author or to staff.
func (s *service) Get(ctx context.Context, viewerID string, staff bool, ticketID string) (*domain.SupportTicket, error) {
	t, err := s.repo.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !staff && t.AuthorID != viewerID {
		return nil, fmt.Errorf("support ticket %s: %w", ticketID, domain.ErrForbidden)
	}
	return t, nil
}

func (s *service) ListByAuthor(ctx context.Context, authorID string) ([]domain.SupportTicket, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

// UpdateState is a staff operation. The author gets one notification per actual change.
func (s *service) UpdateState(ctx context.Context, ticketID string, state domain.SupportTicketState) (*domain.SupportTicket, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("unknown ticket state %q: %w", state, domain.ErrBadRequest)
	}
	t, err := s.repo.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.State == state {
		return t, nil
	}
	previous := t.State
	if err := s.repo.Update(ctx, ticketID, map[string]interface{}{fieldState: state}); err != nil {
		return nil, err
	}
	t.State = state
	if err := s.notifier.OnSupportTicketStateChanged(ctx, t); err != nil {
		if rerr := s.repo.Update(ctx, ticketID, map[string]interface{}{fieldState: previous}); rerr != nil {
			slog.Error("support ticket state revert failed", "ticket_id", ticketID, "err", rerr)
		}
		return nil, fmt.Errorf("notify ticket author: %w", err)
	}
	return s.repo.Get(ctx, ticketID)
}
