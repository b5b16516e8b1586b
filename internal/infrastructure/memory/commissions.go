package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/commission-api/internal/domain"
)

type CommissionRepo struct{ db *DB }

func NewCommissionRepo(db *DB) *CommissionRepo { return &CommissionRepo{db: db} }

func (r *CommissionRepo) Put(_ context.Context, c *domain.Commission) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.commissions[c.CommissionID] = *c
	return nil
}

func (r *CommissionRepo) Get(_ context.Context, commissionID int64) (*domain.Commission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.commissions[commissionID]
	if !ok {
		return nil, fmt.Errorf("commission %d: %w", commissionID, domain.ErrNotFound)
	}
	return &c, nil
}

func (r *CommissionRepo) Update(_ context.Context, commissionID int64, updates map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.commissions[commissionID]
	if !ok {
		return fmt.Errorf("commission %d: %w", commissionID, domain.ErrNotFound)
	}
	updates["updated_at"] = time.Now().UTC()
	if err := applyUpdates(&c, updates); err != nil {
		return err
	}
	r.db.commissions[commissionID] = c
	return nil
}

func (r *CommissionRepo) Delete(_ context.Context, commissionID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.commissions, commissionID)
	return nil
}

// CountByOffer counts the offer's commissions in any of states, or in every state when none are given.
func (r *CommissionRepo) CountByOffer(_ context.Context, offerID int64, states ...domain.CommissionState) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n := 0
	for _, c := range r.db.commissions {
		if c.OfferID == offerID && inStates(c.State, states) {
			n++
		}
	}
	return n, nil
}

func (r *CommissionRepo) CountByCommissionerOnOffer(_ context.Context, offerID int64, commissionerID string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	n := 0
	for _, c := range r.db.commissions {
		if c.OfferID == offerID && c.CommissionerID == commissionerID {
			n++
		}
	}
	return n, nil
}

func (r *CommissionRepo) LatestCreatedByCommissioner(_ context.Context, commissionerID string) (time.Time, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var latest time.Time
	found := false
	for _, c := range r.db.commissions {
		if c.CommissionerID == commissionerID && (!found || c.CreatedAt.After(latest)) {
			latest, found = c.CreatedAt, true
		}
	}
	return latest, found, nil
}

func (r *CommissionRepo) Search(_ context.Context, f domain.CommissionFilter) ([]domain.Commission, error) {
	r.db.mu.RLock()
	all := make([]domain.Commission, 0, len(r.db.commissions))
	for _, c := range r.db.commissions {
		all = append(all, c)
	}
	r.db.mu.RUnlock()
	return f.Apply(all), nil
}

func inStates(s domain.CommissionState, states []domain.CommissionState) bool {
	if len(states) == 0 {
		return true
	}
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}
