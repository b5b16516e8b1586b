package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/commission-api/internal/domain"
)

type UserRepo struct{ db *DB }

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Put(_ context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users[u.UserID] = *u
	return nil
}

func (r *UserRepo) Get(_ context.Context, userID string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return strings.EqualFold(u.Username, username) }, "username "+username)
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) }, "email "+email)
}

func (r *UserRepo) GetMany(_ context.Context, userIDs []string) ([]domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.User, 0, len(userIDs))
	for _, uid := range userIDs {
		if u, ok := r.db.users[uid]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepo) Update(_ context.Context, userID string, updates map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	updates["updated_at"] = time.Now().UTC()
	if err := applyUpdates(&u, updates); err != nil {
		return err
	}
	r.db.users[userID] = u
	return nil
}

func (r *UserRepo) find(match func(*domain.User) bool, what string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if match(&u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with %s: %w", what, domain.ErrNotFound)
}
