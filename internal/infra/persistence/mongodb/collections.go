package mongodb

import (
	"context"
	"time"

	"market/internal/domain/entity"
	"market/internal/infra/persistence"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	users = &collectionDef[entity.User, userDoc]{
		name:       "users",
		label:      "user",
		fields:     persistence.UserFields,
		fromEntity: fromUser,
		toEntity:   (*userDoc).toEntity,
		base:       func(u *entity.User) *entity.Base { return &u.Base },
	}
	businesses = &collectionDef[entity.Business, businessDoc]{
		name:       "businesses",
		label:      "business",
		fields:     persistence.BusinessFields,
		fromEntity: fromBusiness,
		toEntity:   (*businessDoc).toEntity,
		base:       func(b *entity.Business) *entity.Base { return &b.Base },
	}
	categories = &collectionDef[entity.Category, categoryDoc]{
		name:       "categories",
		label:      "category",
		fields:     persistence.CategoryFields,
		fromEntity: fromCategory,
		toEntity:   (*categoryDoc).toEntity,
		base:       func(c *entity.Category) *entity.Base { return &c.Base },
	}
	items = &collectionDef[entity.Item, itemDoc]{
		name:       "items",
		label:      "item",
		fields:     persistence.ItemFields,
		fromEntity: fromItem,
		toEntity:   (*itemDoc).toEntity,
		base:       func(i *entity.Item) *entity.Base { return &i.Base },
	}
	orders = &collectionDef[entity.Order, orderDoc]{
		name:       "orders",
		label:      "order",
		fields:     persistence.OrderFields,
		fromEntity: fromOrder,
		toEntity:   (*orderDoc).toEntity,
		base:       func(o *entity.Order) *entity.Base { return &o.Base },
	}
	orderItems = &collectionDef[entity.OrderItem, orderItemDoc]{
		name:       "order_items",
		label:      "order item",
		fields:     persistence.OrderItemFields,
		fromEntity: fromOrderItem,
		toEntity:   (*orderItemDoc).toEntity,
		base:       func(oi *entity.OrderItem) *entity.Base { return &oi.Base },
	}
	reviews = &collectionDef[entity.Review, reviewDoc]{
		name:       "reviews",
		label:      "review",
		fields:     persistence.ReviewFields,
		fromEntity: fromReview,
		toEntity:   (*reviewDoc).toEntity,
		base:       func(r *entity.Review) *entity.Base { return &r.Base },
	}
	tokens = &collectionDef[entity.Token, tokenDoc]{
		name:       "tokens",
		label:      "token",
		fields:     persistence.TokenFields,
		fromEntity: fromToken,
		toEntity:   (*tokenDoc).toEntity,
		base:       func(t *entity.Token) *entity.Base { return &t.Base },
	}
)

// indexes lists the secondary indexes per collection. Every collection also
// gets a (created_at, _id) index backing the default sort.
var indexes = map[string][]mongo.IndexModel{
	users.name: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	},
	tokens.name: {
		{Keys: bson.D{{Key: "token_hash", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	},
	categories.name: {
		{Keys: bson.D{{Key: "parent_category_id", Value: 1}}},
	},
	businesses.name: {
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	},
	items.name: {
		{Keys: bson.D{{Key: "business_id", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	},
	orders.name: {
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "business_id", Value: 1}}},
	},
	orderItems.name: {
		{Keys: bson.D{{Key: "order_id", Value: 1}}},
	},
	reviews.name: {
		{Keys: bson.D{{Key: "business_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	},
}

// itemRepository adds stock bookkeeping to the generic repository.
type itemRepository struct {
	*mongoRepository[entity.Item, itemDoc]
}

// DecrementStock applies a guarded $inc so stock never drops below zero.
func (repo *itemRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res, err := repo.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id.String()},
			{Key: "stock_quantity", Value: bson.D{{Key: "$gte", Value: qty}}},
		},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "stock_quantity", Value: -qty}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: repo.stamp()}}},
		},
	)
	if err != nil {
		return false, translateError(err, "failed to decrement stock")
	}

	return res.ModifiedCount == 1, nil
}

// tokenRepository adds expiry cleanup to the generic repository.
type tokenRepository struct {
	*mongoRepository[entity.Token, tokenDoc]
}

func (repo *tokenRepository) DeleteExpired(ctx context.Context, now, cutoff time.Time) (int64, error) {
	res, err := repo.coll.DeleteMany(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "expires_at", Value: bson.D{{Key: "$lte", Value: now.UTC()}}}},
		bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: cutoff.UTC()}}}},
	}}})
	if err != nil {
		return 0, translateError(err, "failed to delete expired tokens")
	}

	return res.DeletedCount, nil
}
