package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldRole                  = "role"
	fieldConsentToAdultContent = "consent_to_adult_content"
)

type Service interface {
	Register(ctx context.Context, userID string, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePreferences(ctx context.Context, userID string, req domain.UpdatePreferencesRequest) (*domain.User, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	repo userStore
	now  func() time.Time
}

type ServiceDeps struct {
	UserRepo userStore
	Clock    func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.UserRepo, now: now}
}

// Register creates the marketplace profile for userID, the subject of the caller's token.
// An empty userID gets a fresh id.
func (s *service) Register(ctx context.Context, userID string, req domain.CreateUserRequest) (*domain.User, error) {
	if userID == "" {
		userID = id.New()
	} else if _, err := s.repo.Get(ctx, userID); err == nil {
		return nil, fmt.Errorf("profile already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := s.ensureFree(ctx, req); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = domain.RoleBuyer
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:                userID,
		Username:              req.Username,
		Email:                 req.Email,
		Role:                  role,
		ConsentToAdultContent: req.ConsentToAdultContent,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ensureFree(ctx context.Context, req domain.CreateUserRequest) error {
	_, err := s.repo.GetByUsername(ctx, req.Username)
	if err == nil {
		return fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	_, err = s.repo.GetByEmail(ctx, req.Email)
	if err == nil {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *service) UpdatePreferences(ctx context.Context, userID string, req domain.UpdatePreferencesRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Role != nil {
		switch *req.Role {
		case domain.RoleBuyer, domain.RoleCreator:
			updates[fieldRole] = *req.Role
		default:
			return nil, fmt.Errorf("role %q cannot be self-assigned: %w", *req.Role, domain.ErrBadRequest)
		}
	}
	if req.ConsentToAdultContent != nil {
		updates[fieldConsentToAdultContent] = *req.ConsentToAdultContent
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}
