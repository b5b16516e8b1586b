package memory

import (
	"context"
	"sort"

	"github.com/commission-api/internal/domain"
)

type FollowRepo struct{ db *DB }

func NewFollowRepo(db *DB) *FollowRepo { return &FollowRepo{db: db} }

// Put stores the edge unless it already exists. created is false for a repeat follow.
func (r *FollowRepo) Put(_ context.Context, f *domain.UserFollowingUser) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := followKey{f.FollowerID, f.FollowedID}
	if _, ok := r.db.follows[k]; ok {
		return false, nil
	}
	r.db.follows[k] = *f
	return true, nil
}

func (r *FollowRepo) Delete(_ context.Context, followerID, followedID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.follows, followKey{followerID, followedID})
	return nil
}

func (r *FollowRepo) ListFollowers(_ context.Context, followedID string) ([]string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []string
	for k := range r.db.follows {
		if k.followed == followedID {
			out = append(out, k.follower)
		}
	}
	sort.Strings(out)
	return out, nil
}
