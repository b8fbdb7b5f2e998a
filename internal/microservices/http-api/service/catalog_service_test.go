package service

import (
	"context"
	"testing"

	"reviewhub/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CreateAndList(t *testing.T) {
	store := newMemStore()
	svc := NewCatalogService(store, quietLogger())
	admin := seedUser(t, store, "root", models.RoleAdmin)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, admin, "Film", "film")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, admin, "Book", "book")
	require.NoError(t, err)

	categories, total, err := svc.ListCategories(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "book", categories[0].Slug)

	_, total, err = svc.ListCategories(ctx, "fil", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCatalogService_SlugTaken(t *testing.T) {
	store := newMemStore()
	svc := NewCatalogService(store, quietLogger())
	admin := seedUser(t, store, "root", models.RoleAdmin)
	ctx := context.Background()

	_, err := svc.CreateGenre(ctx, admin, "Drama", "drama")
	require.NoError(t, err)
	_, err = svc.CreateGenre(ctx, admin, "Drama again", "drama")
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestCatalogService_InvalidSlug(t *testing.T) {
	store := newMemStore()
	svc := NewCatalogService(store, quietLogger())
	admin := seedUser(t, store, "root", models.RoleAdmin)

	_, err := svc.CreateGenre(context.Background(), admin, "Drama", "dra ma")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogService_WritesAreAdminOnly(t *testing.T) {
	store := newMemStore()
	svc := NewCatalogService(store, quietLogger())
	admin := seedUser(t, store, "root", models.RoleAdmin)
	mod := seedUser(t, store, "mod", models.RoleModerator)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, nil, "Film", "film")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.CreateCategory(ctx, mod, "Film", "film")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateCategory(ctx, admin, "Film", "film")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, mod, "film"), ErrForbidden)
}

func TestCatalogService_DeleteCategoryKeepsTitles(t *testing.T) {
	store := newMemStore()
	svc := NewCatalogService(store, quietLogger())
	titles := NewTitleService(store, NewRatingAggregator(store, quietLogger()), quietLogger())
	admin := seedUser(t, store, "root", models.RoleAdmin)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, admin, "Film", "film")
	require.NoError(t, err)
	title, err := titles.Create(ctx, admin, TitleInput{Name: "Solaris", Year: 1972, Category: ptr("film")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, admin, "film"))

	got, err := titles.Get(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Category)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, admin, "film"), ErrNotFound)
}

func TestCatalogService_DeleteGenreDetachesTitles(t *testing.T) {
	store := newMemStore()
	svc := NewCatalogService(store, quietLogger())
	titles := NewTitleService(store, NewRatingAggregator(store, quietLogger()), quietLogger())
	admin := seedUser(t, store, "root", models.RoleAdmin)
	ctx := context.Background()

	_, err := svc.CreateGenre(ctx, admin, "Drama", "drama")
	require.NoError(t, err)
	title, err := titles.Create(ctx, admin, TitleInput{Name: "Mirror", Year: 1975, Genres: []string{"drama"}})
	require.NoError(t, err)
	require.Len(t, title.Genres, 1)

	require.NoError(t, svc.DeleteGenre(ctx, admin, "drama"))

	got, err := titles.Get(ctx, title.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Genres)
}
