package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/commission-api/internal/domain"
)

type NotificationRepo struct{ db *DB }

func NewNotificationRepo(db *DB) *NotificationRepo { return &NotificationRepo{db: db} }

// CreateNotifications writes every base and payload pair under one lock, or nothing.
func (r *NotificationRepo) CreateNotifications(_ context.Context, ns []domain.Notification) error {
	recs := make([]domain.PayloadRecord, len(ns))
	for i := range ns {
		rec, err := domain.EncodePayload(ns[i].NotificationID, ns[i].Payload)
		if err != nil {
			return err
		}
		recs[i] = rec
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range ns {
		if _, dup := r.db.notifications[ns[i].NotificationID]; dup {
			return fmt.Errorf("notification %s: %w", ns[i].NotificationID, domain.ErrConflict)
		}
	}
	for i := range ns {
		base := ns[i]
		base.Payload = nil
		r.db.notifications[base.NotificationID] = base
		r.db.payloads[base.NotificationID] = recs[i]
	}
	return nil
}

func (r *NotificationRepo) Get(_ context.Context, notificationID string) (*domain.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n, ok := r.db.notifications[notificationID]
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	if err := r.attach(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(_ context.Context, recipientID string, includeSeen bool) ([]domain.Notification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.Notification
	for _, n := range r.db.notifications {
		if n.RecipientID != recipientID || (n.Seen && !includeSeen) {
			continue
		}
		if err := r.attach(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].NotificationID > out[j].NotificationID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *NotificationRepo) CountUnseen(_ context.Context, recipientID string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c := 0
	for _, n := range r.db.notifications {
		if n.RecipientID == recipientID && !n.Seen {
			c++
		}
	}
	return c, nil
}

func (r *NotificationRepo) MarkSeen(_ context.Context, notificationIDs ...string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, nid := range notificationIDs {
		if n, ok := r.db.notifications[nid]; ok {
			n.Seen = true
			r.db.notifications[nid] = n
		}
	}
	return nil
}

// DeletePayload removes the payload record and returns what was stored.
func (r *NotificationRepo) DeletePayload(_ context.Context, notificationID string) (*domain.PayloadRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rec, ok := r.db.payloads[notificationID]
	if !ok {
		return nil, fmt.Errorf("payload %s: %w", notificationID, domain.ErrNotFound)
	}
	delete(r.db.payloads, notificationID)
	return &rec, nil
}

func (r *NotificationRepo) DeleteBase(_ context.Context, notificationID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.notifications, notificationID)
	return nil
}

// Counts reports how many base and payload records exist.
func (r *NotificationRepo) Counts() (bases, payloads int) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return len(r.db.notifications), len(r.db.payloads)
}

// attach must run with the lock held.
func (r *NotificationRepo) attach(n *domain.Notification) error {
	rec, ok := r.db.payloads[n.NotificationID]
	if !ok {
		return nil
	}
	p, err := rec.Decode()
	if err != nil {
		return err
	}
	n.Payload = p
	return nil
}
