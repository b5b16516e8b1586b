package tag

import (
	"context"
	"testing"
	"time"

	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *memory.TagRepo) {
	t.Helper()
	repo := memory.NewTagRepo(memory.NewDB())
	clock := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return NewService(ServiceDeps{TagRepo: repo, Clock: clock}), repo
}

func strPtr(s string) *string { return &s }

func TestCreateTag_DefaultsAndAuthor(t *testing.T) {
	svc, _ := newTestService(t)
	tg, err := svc.CreateTag(context.Background(), "staff1", domain.CreateTagRequest{Name: "fox"})
	require.NoError(t, err)
	assert.Equal(t, domain.RatingGeneral, tg.Rating)
	assert.Equal(t, "staff1", tg.AuthorID)
	assert.Empty(t, tg.Category)
}

func TestCreateTag_DuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateTag(ctx, "staff1", domain.CreateTagRequest{Name: "fox"})
	require.NoError(t, err)
	_, err = svc.CreateTag(ctx, "staff2", domain.CreateTagRequest{Name: "fox"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateTag_UnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateTag(context.Background(), "staff1", domain.CreateTagRequest{Name: "fox", Category: "species"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestListTags_SortedByName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, n := range []string{"wolf", "cat", "fox"} {
		_, err := svc.CreateTag(ctx, "staff1", domain.CreateTagRequest{Name: n})
		require.NoError(t, err)
	}
	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, []string{"cat", "fox", "wolf"}, []string{tags[0].Name, tags[1].Name, tags[2].Name})
}

func TestUpdateTag_MovesAndClearsCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateCategory(ctx, domain.CreateTagCategoryRequest{Name: "species"})
	require.NoError(t, err)
	_, err = svc.CreateTag(ctx, "staff1", domain.CreateTagRequest{Name: "fox"})
	require.NoError(t, err)

	adult := domain.RatingAdult
	tg, err := svc.UpdateTag(ctx, "fox", domain.UpdateTagRequest{Category: strPtr("species"), Rating: &adult})
	require.NoError(t, err)
	assert.Equal(t, "species", tg.Category)
	assert.Equal(t, domain.RatingAdult, tg.Rating)

	tg, err = svc.UpdateTag(ctx, "fox", domain.UpdateTagRequest{Category: strPtr(""), Description: strPtr("canid")})
	require.NoError(t, err)
	assert.Empty(t, tg.Category)
	assert.Equal(t, "canid", tg.Description)
}

func TestUpdateTag_Missing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateTag(context.Background(), "ghost", domain.UpdateTagRequest{Description: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTag(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateTag(ctx, "staff1", domain.CreateTagRequest{Name: "fox"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTag(ctx, "fox"))
	_, err = svc.GetTag(ctx, "fox")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTag(ctx, "fox"), domain.ErrNotFound)
}

func TestGetCategory_ListsItsTags(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateCategory(ctx, domain.CreateTagCategoryRequest{Name: "species", Description: "animals"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, domain.CreateTagCategoryRequest{Name: "style"})
	require.NoError(t, err)
	for _, req := range []domain.CreateTagRequest{
		{Name: "wolf", Category: "species"},
		{Name: "fox", Category: "species"},
		{Name: "sketch", Category: "style"},
	} {
		_, err := svc.CreateTag(ctx, "staff1", req)
		require.NoError(t, err)
	}

	d, err := svc.GetCategory(ctx, "species")
	require.NoError(t, err)
	assert.Equal(t, "animals", d.Description)
	require.Len(t, d.Tags, 2)
	assert.Equal(t, "fox", d.Tags[0].Name)
	assert.Equal(t, "wolf", d.Tags[1].Name)
}

func TestCreateCategory_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateCategory(ctx, domain.CreateTagCategoryRequest{Name: "species"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, domain.CreateTagCategoryRequest{Name: "species"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateCategory(ctx, domain.CreateTagCategoryRequest{Name: "species"})
	require.NoError(t, err)

	c, err := svc.UpdateCategory(ctx, "species", domain.UpdateTagCategoryRequest{Description: "animals"})
	require.NoError(t, err)
	assert.Equal(t, "animals", c.Description)

	_, err = svc.UpdateCategory(ctx, "nope", domain.UpdateTagCategoryRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCategory_UncategorisesTags(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateCategory(ctx, domain.CreateTagCategoryRequest{Name: "species"})
	require.NoError(t, err)
	_, err = svc.CreateTag(ctx, "staff1", domain.CreateTagRequest{Name: "fox", Category: "species"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, "species"))

	_, err = svc.GetCategory(ctx, "species")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	tg, err := repo.GetTag(ctx, "fox")
	require.NoError(t, err)
	assert.Empty(t, tg.Category)
}
