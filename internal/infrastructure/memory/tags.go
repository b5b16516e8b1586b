package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/commission-api/internal/domain"
)

type TagRepo struct{ db *DB }

func NewTagRepo(db *DB) *TagRepo { return &TagRepo{db: db} }

func (r *TagRepo) CreateTag(_ context.Context, t *domain.Tag) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tags[t.Name]; ok {
		return fmt.Errorf("tag %s: %w", t.Name, domain.ErrConflict)
	}
	r.db.tags[t.Name] = *t
	return nil
}

func (r *TagRepo) GetTag(_ context.Context, name string) (*domain.Tag, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.tags[name]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", name, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *TagRepo) ListTags(_ context.Context) ([]domain.Tag, error) {
	return r.tagsWhere(func(domain.Tag) bool { return true }), nil
}

func (r *TagRepo) ListTagsByCategory(_ context.Context, category string) ([]domain.Tag, error) {
	return r.tagsWhere(func(t domain.Tag) bool { return t.Category == category }), nil
}

func (r *TagRepo) tagsWhere(keep func(domain.Tag) bool) []domain.Tag {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.Tag
	for _, t := range r.db.tags {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *TagRepo) UpdateTag(_ context.Context, name string, updates map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tags[name]
	if !ok {
		return fmt.Errorf("tag %s: %w", name, domain.ErrNotFound)
	}
	updates["updated_at"] = time.Now().UTC()
	if err := applyUpdates(&t, updates); err != nil {
		return err
	}
	r.db.tags[name] = t
	return nil
}

func (r *TagRepo) ClearTagCategory(_ context.Context, name string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tags[name]
	if !ok {
		return fmt.Errorf("tag %s: %w", name, domain.ErrNotFound)
	}
	t.Category = ""
	t.UpdatedAt = time.Now().UTC()
	r.db.tags[name] = t
	return nil
}

func (r *TagRepo) DeleteTag(_ context.Context, name string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.tags, name)
	return nil
}

func (r *TagRepo) CreateCategory(_ context.Context, c *domain.TagCategory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tagCategories[c.Name]; ok {
		return fmt.Errorf("tag category %s: %w", c.Name, domain.ErrConflict)
	}
	r.db.tagCategories[c.Name] = *c
	return nil
}

func (r *TagRepo) GetCategory(_ context.Context, name string) (*domain.TagCategory, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.tagCategories[name]
	if !ok {
		return nil, fmt.Errorf("tag category %s: %w", name, domain.ErrNotFound)
	}
	return &c, nil
}

func (r *TagRepo) ListCategories(_ context.Context) ([]domain.TagCategory, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.TagCategory, 0, len(r.db.tagCategories))
	for _, c := range r.db.tagCategories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TagRepo) UpdateCategory(_ context.Context, name string, updates map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.tagCategories[name]
	if !ok {
		return fmt.Errorf("tag category %s: %w", name, domain.ErrNotFound)
	}
	updates["updated_at"] = time.Now().UTC()
	if err := applyUpdates(&c, updates); err != nil {
		return err
	}
	r.db.tagCategories[name] = c
	return nil
}

func (r *TagRepo) DeleteCategory(_ context.Context, name string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.tagCategories, name)
	return nil
}
