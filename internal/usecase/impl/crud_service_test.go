package impl

import (
	"context"
	"testing"

	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/errors"
	"market/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategoryCRUD(f *fixture, hooks Hooks[entity.Category]) usecase.Service[entity.Category] {
	return NewService(f.store, "category", categoriesOf, f.cfg.Pagination, f.logger, hooks)
}

func TestCRUDService_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	srv := newCategoryCRUD(f, Hooks[entity.Category]{})
	ctx := context.Background()

	category := &entity.Category{Name: "Drinks", IsActive: true}
	require.NoError(t, srv.Create(ctx, category))
	assert.NotEqual(t, uuid.Nil, category.ID)
	assert.False(t, category.CreatedAt.IsZero())

	got, err := srv.GetByID(ctx, category.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Drinks", got.Name)

	missing, err := srv.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCRUDService_UpdateMissingReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	srv := newCategoryCRUD(f, Hooks[entity.Category]{})

	_, err := srv.Update(context.Background(), uuid.New(), repository.Fields{"name": "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestCRUDService_UpdateRejectsUnknownField(t *testing.T) {
	f := newFixture(t)
	srv := newCategoryCRUD(f, Hooks[entity.Category]{})
	ctx := context.Background()

	category := &entity.Category{Name: "Drinks", IsActive: true}
	require.NoError(t, srv.Create(ctx, category))

	_, err := srv.Update(ctx, category.ID, repository.Fields{"no_such_field": 1})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestCRUDService_ListPaginates(t *testing.T) {
	f := newFixture(t)
	srv := newCategoryCRUD(f, Hooks[entity.Category]{})
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, srv.Create(ctx, &entity.Category{Name: name, IsActive: true}))
	}

	first, err := srv.List(ctx, repository.Page{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, first.Items, 2)
	assert.EqualValues(t, 5, first.Total)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())

	last, err := srv.List(ctx, repository.Page{Offset: 4, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrevious())

	clamped, err := srv.List(ctx, repository.Page{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, clamped.Limit)
}

func TestCRUDService_Delete(t *testing.T) {
	f := newFixture(t)
	srv := newCategoryCRUD(f, Hooks[entity.Category]{})
	ctx := context.Background()

	category := &entity.Category{Name: "Drinks", IsActive: true}
	require.NoError(t, srv.Create(ctx, category))

	deleted, err := srv.Delete(ctx, category.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = srv.Delete(ctx, category.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCRUDService_FilterCountSearch(t *testing.T) {
	f := newFixture(t)
	srv := newCategoryCRUD(f, Hooks[entity.Category]{})
	ctx := context.Background()

	require.NoError(t, srv.Create(ctx, &entity.Category{Name: "Hot Drinks", IsActive: true}))
	require.NoError(t, srv.Create(ctx, &entity.Category{Name: "Cold drinks", IsActive: false}))
	require.NoError(t, srv.Create(ctx, &entity.Category{Name: "Snacks", IsActive: true}))

	active, err := srv.FilterBy(ctx, repository.Fields{"is_active": true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	count, err := srv.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	found, err := srv.Search(ctx, "DRINK", []string{"name"}, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = srv.Search(ctx, "x", []string{"is_active"}, repository.Page{})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestCRUDService_BulkCreateIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	srv := newCategoryCRUD(f, Hooks[entity.Category]{
		BeforeCreate: func(_ context.Context, _ repository.Store, c *entity.Category) error {
			if c.Name == "bad" {
				return invalid("bad name")
			}

			return nil
		},
	})
	ctx := context.Background()

	err := srv.BulkCreate(ctx, []*entity.Category{
		{Name: "one", IsActive: true},
		{Name: "two", IsActive: true},
		{Name: "bad", IsActive: true},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "record 2")

	count, err := srv.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, srv.BulkCreate(ctx, []*entity.Category{{Name: "one"}, {Name: "two"}}))
	count, err = srv.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestCRUDService_BulkUpdateIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	srv := newCategoryCRUD(f, Hooks[entity.Category]{})
	ctx := context.Background()

	category := &entity.Category{Name: "before", IsActive: true}
	require.NoError(t, srv.Create(ctx, category))

	_, err := srv.BulkUpdate(ctx, []usecase.BulkUpdate{
		{ID: category.ID, Fields: repository.Fields{"name": "after"}},
		{ID: uuid.New(), Fields: repository.Fields{"name": "ghost"}},
	})
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	got, err := srv.GetByID(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "before", got.Name)

	updated, err := srv.BulkUpdate(ctx, []usecase.BulkUpdate{
		{ID: category.ID, Fields: repository.Fields{"name": "after"}},
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "after", updated[0].Name)
}
