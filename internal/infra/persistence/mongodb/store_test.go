package mongodb

import (
	"context"
	"testing"
	"time"

	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newMockStore(mt *mtest.T) *mongoStore {
	return newMongoStore(mt.DB, false, func() time.Time { return fixedNow })
}

func toBSON(t *testing.T, v any) bson.D {
	t.Helper()

	raw, err := bson.Marshal(v)
	require.NoError(t, err)

	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))

	return doc
}

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

func sampleUser() *entity.User {
	return &entity.User{
		Base:              entity.Base{ID: uuid.New(), CreatedAt: fixedNow, UpdatedAt: fixedNow},
		Email:             "a@x.com",
		PasswordHash:      "hash",
		FullName:          "Alice",
		Role:              entity.RoleSeller,
		DeliveryAddresses: []string{"1 Main St"},
		IsActive:          true,
	}
}

func TestMongoRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns identity and inserts", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &entity.User{Email: "a@x.com", FullName: "Alice", Role: entity.RoleCustomer, IsActive: true}
		require.NoError(t, store.Users().Create(context.Background(), user))

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, fixedNow, user.CreatedAt)

		evt := mt.GetStartedEvent()
		require.Equal(t, "insert", evt.CommandName)
		inserted := evt.Command.Lookup("documents").Array().Index(0).Value().Document()
		assert.Equal(t, user.ID.String(), inserted.Lookup("_id").StringValue())
		assert.Equal(t, "customer", inserted.Lookup("role").StringValue())
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: users index: email_1",
		}))

		err := store.Users().Create(context.Background(), sampleUser())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrDuplicateResource))
	})
}

func TestMongoRepository_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		store := newMockStore(mt)
		user := sampleUser()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "users"), mtest.FirstBatch, toBSON(t, fromUser(user))))

		found, err := store.Users().FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, entity.RoleSeller, found.Role)
		assert.Equal(t, []string{"1 Main St"}, found.DeliveryAddresses)
		assert.True(t, found.CreatedAt.Equal(fixedNow))
	})

	mt.Run("missing", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "users"), mtest.FirstBatch))

		_, err := store.Users().FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	mt.Run("corrupt identifier", func(mt *mtest.T) {
		store := newMockStore(mt)
		doc := fromUser(sampleUser())
		doc.ID = "not-a-uuid"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "users"), mtest.FirstBatch, toBSON(t, doc)))

		_, err := store.Users().FindByID(context.Background(), uuid.New())
		assert.ErrorContains(t, err, "invalid identifier")
	})
}

func TestMongoRepository_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sets fields", func(mt *mtest.T) {
		store := newMockStore(mt)
		item := &entity.Item{
			Base:       entity.Base{ID: uuid.New(), CreatedAt: fixedNow, UpdatedAt: fixedNow},
			Name:       "Renamed",
			Type:       entity.ItemTypeProduct,
			BusinessID: uuid.New(),
			Price:      decimal.RequireFromString("12.30"),
			Tags:       []string{"sale"},
		}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toBSON(t, fromItem(item))}))

		updated, err := store.Items().Update(context.Background(), item.ID, repository.Fields{
			"name":  "Renamed",
			"price": decimal.RequireFromString("12.30"),
			"type":  entity.ItemTypeProduct,
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.True(t, updated.Price.Equal(decimal.RequireFromString("12.3")))
		assert.Equal(t, []string{"sale"}, updated.Tags)

		evt := mt.GetStartedEvent()
		require.Equal(t, "findAndModify", evt.CommandName)
		set := evt.Command.Lookup("update", "$set").Document()
		assert.Equal(t, "Renamed", set.Lookup("name").StringValue())
		assert.Equal(t, "product", set.Lookup("type").StringValue())
		assert.Equal(t, "12.3", set.Lookup("price").Decimal128().String())
		_, hasUpdatedAt := set.Lookup("updated_at").TimeOK()
		assert.True(t, hasUpdatedAt)
	})

	mt.Run("missing", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := store.Items().Update(context.Background(), uuid.New(), repository.Fields{"name": "x"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	mt.Run("unknown field", func(mt *mtest.T) {
		store := newMockStore(mt)

		_, err := store.Items().Update(context.Background(), uuid.New(), repository.Fields{"_id": "x"})
		assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	})
}

func TestMongoRepository_DeleteAndCount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("delete", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		deleted, err := store.Reviews().Delete(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.Reviews().Delete(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	mt.Run("count", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "orders"), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))

		n, err := store.Orders().Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestMongoRepository_FilterAndSearch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filter", func(mt *mtest.T) {
		store := newMockStore(mt)
		parent := uuid.New()
		child := &entity.Category{
			Base:             entity.Base{ID: uuid.New(), CreatedAt: fixedNow, UpdatedAt: fixedNow},
			Name:             "Pizza",
			ParentCategoryID: &parent,
			IsActive:         true,
			CreatedBy:        uuid.New(),
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "categories"), mtest.FirstBatch, toBSON(t, fromCategory(child))))

		found, err := store.Categories().FilterBy(context.Background(), repository.Fields{"parent_category_id": parent})
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.NotNil(t, found[0].ParentCategoryID)
		assert.Equal(t, parent, *found[0].ParentCategoryID)

		evt := mt.GetStartedEvent()
		assert.Equal(t, parent.String(), evt.Command.Lookup("filter", "parent_category_id").StringValue())
	})

	mt.Run("search", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "items"), mtest.FirstBatch))

		found, err := store.Items().Search(context.Background(), "pizza (large)", []string{"name", "description"}, repository.Page{Offset: 5, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, found)

		evt := mt.GetStartedEvent()
		or := evt.Command.Lookup("filter", "$or").Array()
		pattern, options := or.Index(0).Value().Document().Lookup("name").Regex()
		assert.Equal(t, `pizza \(large\)`, pattern)
		assert.Equal(t, "i", options)
		assert.Equal(t, int64(5), evt.Command.Lookup("skip").AsInt64())
		assert.Equal(t, int64(10), evt.Command.Lookup("limit").AsInt64())
	})

	mt.Run("search rejects non-text fields", func(mt *mtest.T) {
		store := newMockStore(mt)

		_, err := store.Items().Search(context.Background(), "x", []string{"price"}, repository.Page{})
		assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	})
}

func TestItemRepository_DecrementStock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("guarded decrement", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		ok, err := store.Items().DecrementStock(context.Background(), uuid.New(), 2)
		require.NoError(t, err)
		assert.True(t, ok)

		evt := mt.GetStartedEvent()
		update := evt.Command.Lookup("updates").Array().Index(0).Value().Document()
		assert.Equal(t, int64(2), update.Lookup("q", "stock_quantity", "$gte").AsInt64())
		assert.Equal(t, int64(-2), update.Lookup("u", "$inc", "stock_quantity").AsInt64())

		ok, err = store.Items().DecrementStock(context.Background(), uuid.New(), 2)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("removes expired", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}))

		removed, err := store.Tokens().DeleteExpired(context.Background(), fixedNow, fixedNow.AddDate(0, 0, -7))
		require.NoError(t, err)
		assert.Equal(t, int64(4), removed)
	})
}

func TestDocumentValue(t *testing.T) {
	id := uuid.New()
	status := entity.OrderStatusConfirmed

	assert.Equal(t, id.String(), documentValue(id))
	assert.Equal(t, id.String(), documentValue(&id))
	assert.Equal(t, "confirmed", documentValue(status))
	assert.Equal(t, "9.99", documentValue(decimal.RequireFromString("9.99")).(interface{ String() string }).String())
	assert.Equal(t, []string{}, documentValue([]string(nil)))
	assert.Nil(t, documentValue((*uuid.UUID)(nil)))
}
