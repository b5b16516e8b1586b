// Package tag maintains the staff-curated tag catalogue and its categories.
package tag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/commission-api/internal/domain"
)

const (
	fieldCategory    = "category_name"
	fieldDescription = "description"
	fieldRating      = "rating"
)

// CategoryDetail is a category together with its tags.
type CategoryDetail struct {
	domain.TagCategory
	Tags []domain.Tag `json:"tags"`
}

type Service interface {
	CreateTag(ctx context.Context, authorID string, req domain.CreateTagRequest) (*domain.Tag, error)
	GetTag(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	UpdateTag(ctx context.Context, name string, req domain.UpdateTagRequest) (*domain.Tag, error)
	DeleteTag(ctx context.Context, name string) error

	CreateCategory(ctx context.Context, req domain.CreateTagCategoryRequest) (*domain.TagCategory, error)
	GetCategory(ctx context.Context, name string) (*CategoryDetail, error)
	ListCategories(ctx context.Context) ([]domain.TagCategory, error)
	UpdateCategory(ctx context.Context, name string, req domain.UpdateTagCategoryRequest) (*domain.TagCategory, error)
	DeleteCategory(ctx context.Context, name string) error
}

type tagStore interface {
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	ListTagsByCategory(ctx context.Context, category string) ([]domain.Tag, error)
	UpdateTag(ctx context.Context, name string, updates map[string]interface{}) error
	ClearTagCategory(ctx context.Context, name string) error
	DeleteTag(ctx context.Context, name string) error

	CreateCategory(ctx context.Context, c *domain.TagCategory) error
	GetCategory(ctx context.Context, name string) (*domain.TagCategory, error)
	ListCategories(ctx context.Context) ([]domain.TagCategory, error)
	UpdateCategory(ctx context.Context, name string, updates map[string]interface{}) error
	DeleteCategory(ctx context.Context, name string) error
}

type service struct {
	repo tagStore
	now  func() time.Time
}

type ServiceDeps struct {
	TagRepo tagStore
	Clock   func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.TagRepo, now: now}
}

func (s *service) CreateTag(ctx context.Context, authorID string, req domain.CreateTagRequest) (*domain.Tag, error) {
	if err := s.requireCategory(ctx, req.Category); err != nil {
		return nil, err
	}
	rating := req.Rating
	if rating == "" {
		rating = domain.RatingGeneral
	}
	now := s.now().UTC()
	t := &domain.Tag{
		Name:        req.Name,
		AuthorID:    authorID,
		Category:    req.Category,
		Description: req.Description,
		Rating:      rating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetTag(ctx context.Context, name string) (*domain.Tag, error) {
	return s.repo.GetTag(ctx, name)
}

func (s *service) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *service) UpdateTag(ctx context.Context, name string, req domain.UpdateTagRequest) (*domain.Tag, error) {
	if _, err := s.repo.GetTag(ctx, name); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Category != nil {
		if *req.Category == "" {
			if err := s.repo.ClearTagCategory(ctx, name); err != nil {
				return nil, err
			}
		} else {
			if err := s.requireCategory(ctx, *req.Category); err != nil {
				return nil, err
			}
			updates[fieldCategory] = *req.Category
		}
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Rating != nil {
		updates[fieldRating] = *req.Rating
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateTag(ctx, name, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.GetTag(ctx, name)
}

func (s *service) DeleteTag(ctx context.Context, name string) error {
	if _, err := s.repo.GetTag(ctx, name); err != nil {
		return err
	}
	return s.repo.DeleteTag(ctx, name)
}

func (s *service) CreateCategory(ctx context.Context, req domain.CreateTagCategoryRequest) (*domain.TagCategory, error) {
	now := s.now().UTC()
	c := &domain.TagCategory{Name: req.Name, Description: req.Description, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetCategory(ctx context.Context, name string) (*CategoryDetail, error) {
	c, err := s.repo.GetCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	tags, err := s.repo.ListTagsByCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return &CategoryDetail{TagCategory: *c, Tags: tags}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]domain.TagCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) UpdateCategory(ctx context.Context, name string, req domain.UpdateTagCategoryRequest) (*domain.TagCategory, error) {
	if err := s.repo.UpdateCategory(ctx, name, map[string]interface{}{fieldDescription: req.Description}); err != nil {
		return nil, err
	}
	return s.repo.GetCategory(ctx, name)
}

// DeleteCategory leaves the category's tags in place, uncategorised.
func (s *service) DeleteCategory(ctx context.Context, name string) error {
	if _, err := s.repo.GetCategory(ctx, name); err != nil {
		return err
	}
	tags, err := s.repo.ListTagsByCategory(ctx, name)
	if err != nil {
		return err
	}
	for _, t := range tags {
		if err := s.repo.ClearTagCategory(ctx, t.Name); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Error("clear tag category failed", "tag", t.Name, "category", name, "err", err)
			return err
		}
	}
	return s.repo.DeleteCategory(ctx, name)
}

func (s *service) requireCategory(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	_, err := s.repo.GetCategory(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("unknown tag category %q: %w", name, domain.ErrBadRequest)
	}
	return err
}
