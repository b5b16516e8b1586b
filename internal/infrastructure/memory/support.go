package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/commission-api/internal/domain"
)

type SupportRepo struct{ db *DB }

func NewSupportRepo(db *DB) *SupportRepo { return &SupportRepo{db: db} }

func (r *SupportRepo) Put(_ context.Context, t *domain.SupportTicket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.tickets[t.TicketID] = *t
	return nil
}

func (r *SupportRepo) Get(_ context.Context, ticketID string) (*domain.SupportTicket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.tickets[ticketID]
	if !ok {
		return nil, fmt.Errorf("support ticket %s: %w", ticketID, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *SupportRepo) Update(_ context.Context, ticketID string, updates map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tickets[ticketID]
	if !ok {
		return fmt.Errorf("support ticket %s: %w", ticketID, domain.ErrNotFound)
	}
	updates["updated_at"] = time.Now().UTC()
	if err := applyUpdates(&t, updates); err != nil {
		return err
	}
	r.db.tickets[ticketID] = t
	return nil
}

// ListByAuthor returns the author's tickets, newest first.
func (r *SupportRepo) ListByAuthor(_ context.Context, authorID string) ([]domain.SupportTicket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.SupportTicket
	for _, t := range r.db.tickets {
		if t.AuthorID == authorID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
