package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/errors"
	"market/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// tickingClock returns strictly increasing times so creation order is stable.
func tickingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	return func() time.Time {
		t = t.Add(time.Second)

		return t
	}
}

func newTestStore(t *testing.T) *gormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 newQueryLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), nil),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))

	return newGormStore(db, false, tickingClock())
}

func strPtr(s string) *string { return &s }

func newUser(email string) *entity.User {
	return &entity.User{
		Email:             email,
		PasswordHash:      "hash",
		FullName:          "Test User",
		Role:              entity.RoleCustomer,
		DeliveryAddresses: []string{"1 Main St"},
		IsActive:          true,
	}
}

func TestGormRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user := newUser("a@x.com")
	user.Phone = strPtr("555-0100")
	require.NoError(t, store.Users().Create(ctx, user))

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)

	found, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "a@x.com", found.Email)
	assert.Equal(t, entity.RoleCustomer, found.Role)
	assert.Equal(t, []string{"1 Main St"}, found.DeliveryAddresses)
	require.NotNil(t, found.Phone)
	assert.Equal(t, "555-0100", *found.Phone)
	assert.Nil(t, found.AdminRole)
	assert.True(t, found.IsActive)

	_, err = store.Users().FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGormRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Users().Create(ctx, newUser("dup@x.com")))

	err := store.Users().Create(ctx, newUser("dup@x.com"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateResource))
}

func TestGormRepository_Update(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user := newUser("u@x.com")
	require.NoError(t, store.Users().Create(ctx, user))

	adminRole := entity.AdminRoleUserManager
	updated, err := store.Users().Update(ctx, user.ID, repository.Fields{
		"full_name":  "Renamed",
		"admin_role": &adminRole,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.FullName)
	require.NotNil(t, updated.AdminRole)
	assert.Equal(t, entity.AdminRoleUserManager, *updated.AdminRole)
	assert.Equal(t, "u@x.com", updated.Email, "untouched fields keep their values")
	assert.Equal(t, user.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(user.UpdatedAt))

	_, err = store.Users().Update(ctx, user.ID, repository.Fields{"id": uuid.New()})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = store.Users().Update(ctx, uuid.New(), repository.Fields{"full_name": "ghost"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGormRepository_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user := newUser("d@x.com")
	require.NoError(t, store.Users().Create(ctx, user))

	deleted, err := store.Users().Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Users().Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = store.Users().FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGormRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var ids []uuid.UUID
	for _, email := range []string{"1@x.com", "2@x.com", "3@x.com"} {
		u := newUser(email)
		require.NoError(t, store.Users().Create(ctx, u))
		ids = append(ids, u.ID)
	}

	all, err := store.Users().List(ctx, repository.Page{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, u := range all {
		assert.Equal(t, ids[i], u.ID, "ordered by creation time")
	}

	page, err := store.Users().List(ctx, repository.Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	n, err := store.Users().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGormRepository_FilterBy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	creator := uuid.New()

	root := &entity.Category{Name: "Food", IsActive: true, CreatedBy: creator}
	require.NoError(t, store.Categories().Create(ctx, root))
	child := &entity.Category{Name: "Pizza", ParentCategoryID: &root.ID, IsActive: true, CreatedBy: creator}
	require.NoError(t, store.Categories().Create(ctx, child))
	hidden := &entity.Category{Name: "Hidden", IsActive: false, CreatedBy: creator}
	require.NoError(t, store.Categories().Create(ctx, hidden))

	roots, err := store.Categories().FilterBy(ctx, repository.Fields{"parent_category_id": nil, "is_active": true})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, root.ID, roots[0].ID)

	children, err := store.Categories().FilterBy(ctx, repository.Fields{"parent_category_id": root.ID})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Pizza", children[0].Name)

	_, err = store.Categories().FilterBy(ctx, repository.Fields{"bogus": 1})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestGormRepository_Search(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	businessID := uuid.New()

	for _, name := range []string{"Margherita Pizza", "Pepperoni PIZZA", "Caesar Salad", "100% Juice"} {
		require.NoError(t, store.Items().Create(ctx, &entity.Item{
			Name: name, Type: entity.ItemTypeProduct, BusinessID: businessID, Price: decimal.NewFromInt(5), IsActive: true,
		}))
	}

	found, err := store.Items().Search(ctx, "pizza", []string{"name", "description"}, repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Margherita Pizza", found[0].Name)

	found, err = store.Items().Search(ctx, "0%", []string{"name"}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, found, 1, "wildcards in the query match literally")

	_, err = store.Items().Search(ctx, "x", []string{"price"}, repository.Page{})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestItemRepository_RoundTripAndStock(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	item := &entity.Item{
		Name:          "Widget",
		Type:          entity.ItemTypeProduct,
		BusinessID:    uuid.New(),
		Price:         decimal.RequireFromString("10.50"),
		StockQuantity: 3,
		Tags:          []string{"tools", "metal"},
		IsActive:      true,
	}
	require.NoError(t, store.Items().Create(ctx, item))

	found, err := store.Items().FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, []string{"tools", "metal"}, found.Tags)
	assert.Equal(t, []string{}, found.Images)

	ok, err := store.Items().DecrementStock(ctx, item.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Items().DecrementStock(ctx, item.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "only one unit left")

	ok, err = store.Items().DecrementStock(ctx, uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err = store.Items().FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.StockQuantity)

	updated, err := store.Items().Update(ctx, item.ID, repository.Fields{"tags": []string{"sale"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sale"}, updated.Tags)
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()

	expired := &entity.Token{TokenHash: "expired", UserID: userID, IsActive: true, ExpiresAt: now.Add(-time.Hour)}
	live := &entity.Token{TokenHash: "live", UserID: userID, IsActive: true, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Tokens().Create(ctx, expired))
	require.NoError(t, store.Tokens().Create(ctx, live))

	// The ticking clock stamps both tokens in early 2025, well after this cutoff.
	removed, err := store.Tokens().DeleteExpired(ctx, now, now.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := store.Tokens().FilterBy(ctx, repository.Fields{"token_hash": "live"})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, live.ID, remaining[0].ID)
}

func TestGormStore_Execute(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("commits", func(t *testing.T) {
		err := store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
			return tx.Users().Create(ctx, newUser("commit@x.com"))
		})
		require.NoError(t, err)

		users, err := store.Users().FilterBy(ctx, repository.Fields{"email": "commit@x.com"})
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
			if err := tx.Users().Create(ctx, newUser("rollback@x.com")); err != nil {
				return err
			}

			return boom
		})
		require.ErrorIs(t, err, boom)

		users, err := store.Users().FilterBy(ctx, repository.Fields{"email": "rollback@x.com"})
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		err := store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
			return tx.Execute(ctx, func(ctx context.Context, inner repository.Store) error {
				assert.Same(t, tx, inner)

				return inner.Users().Create(ctx, newUser("nested@x.com"))
			})
		})
		require.NoError(t, err)
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
				_ = tx.Users().Create(ctx, newUser("panic@x.com"))
				panic("kaboom")
			})
		})

		users, err := store.Users().FilterBy(ctx, repository.Fields{"email": "panic@x.com"})
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	require.NoError(t, store.Ping(ctx))
}

func TestColumnValue(t *testing.T) {
	role := entity.RoleSeller
	var nilRole *entity.Role

	assert.Equal(t, "seller", columnValue(role))
	assert.Equal(t, "seller", columnValue(&role))
	assert.Nil(t, columnValue(nilRole))
	assert.Nil(t, columnValue(nil))
	assert.Equal(t, 3, columnValue(3))
}
