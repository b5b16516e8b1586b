package follow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commission-api/internal/domain"
)

type Service interface {
	Follow(ctx context.Context, followerID, followedID string) error
	Unfollow(ctx context.Context, followerID, followedID string) error
	Followers(ctx context.Context, userID string) ([]string, error)
}

type followStore interface {
	Put(ctx context.Context, f *domain.UserFollowingUser) (bool, error)
	Delete(ctx context.Context, followerID, followedID string) error
	ListFollowers(ctx context.Context, followedID string) ([]string, error)
}

type userReader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type notifier interface {
	OnUserFollowed(ctx context.Context, edge *domain.UserFollowingUser) error
}

type service struct {
	repo     followStore
	users    userReader
	notifier notifier
	now      func() time.Time
}

type ServiceDeps struct {
	FollowRepo followStore
	UserRepo   userReader
	Notifier   notifier
	Clock      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.FollowRepo, users: deps.UserRepo, notifier: deps.Notifier, now: now}
}

// Follow is idempotent: following someone twice sends one notification.
func (s *service) Follow(ctx context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return fmt.Errorf("cannot follow yourself: %w", domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, followedID); err != nil {
		return err
	}
	edge := &domain.UserFollowingUser{FollowerID: followerID, FollowedID: followedID, CreatedAt: s.now().UTC()}
	created, err := s.repo.Put(ctx, edge)
	if err != nil || !created {
		return err
	}
	if err := s.notifier.OnUserFollowed(ctx, edge); err != nil {
		if derr := s.repo.Delete(ctx, followerID, followedID); derr != nil {
			slog.Error("follow rollback failed", "follower_id", followerID, "followed_id", followedID, "err", derr)
		}
		return fmt.Errorf("notify followed user: %w", err)
	}
	return nil
}

func (s *service) Unfollow(ctx context.Context, followerID, followedID string) error {
	return s.repo.Delete(ctx, followerID, followedID)
}

func (s *service) Followers(ctx context.Context, userID string) ([]string, error) {
	return s.repo.ListFollowers(ctx, userID)
}
