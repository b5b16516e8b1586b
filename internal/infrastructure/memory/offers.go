package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/commission-api/internal/domain"
)

type OfferRepo struct{ db *DB }

func NewOfferRepo(db *DB) *OfferRepo { return &OfferRepo{db: db} }

func (r *OfferRepo) Put(_ context.Context, o *domain.Offer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.offers[o.OfferID] = *o
	return nil
}

func (r *OfferRepo) Get(_ context.Context, offerID int64) (*domain.Offer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	o, ok := r.db.offers[offerID]
	if !ok {
		return nil, fmt.Errorf("offer %d: %w", offerID, domain.ErrNotFound)
	}
	return &o, nil
}

// ListByAuthor returns the author's offers, newest first.
func (r *OfferRepo) ListByAuthor(_ context.Context, authorID string) ([]domain.Offer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.Offer
	for _, o := range r.db.offers {
		if o.AuthorID == authorID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *OfferRepo) Update(_ context.Context, offerID int64, updates map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.offers[offerID]
	if !ok {
		return fmt.Errorf("offer %d: %w", offerID, domain.ErrNotFound)
	}
	updates["updated_at"] = time.Now().UTC()
	if err := applyUpdates(&o, updates); err != nil {
		return err
	}
	r.db.offers[offerID] = o
	return nil
}

func (r *OfferRepo) Delete(_ context.Context, offerID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.offers, offerID)
	return nil
}

func (r *OfferRepo) CountOpenByAuthor(_ context.Context, authorID string, now time.Time) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n := 0
	for _, o := range r.db.offers {
		if o.AuthorID == authorID && !o.IsClosed(now) {
			n++
		}
	}
	return n, nil
}

func (r *OfferRepo) LatestCreatedByAuthor(_ context.Context, authorID string) (time.Time, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var latest time.Time
	found := false
	for _, o := range r.db.offers {
		if o.AuthorID == authorID && (!found || o.CreatedAt.After(latest)) {
			latest, found = o.CreatedAt, true
		}
	}
	return latest, found, nil
}
