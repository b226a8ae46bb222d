package postgres

import (
	"context"
	"time"

	"market/internal/domain/entity"
	"market/internal/infra/persistence"
	"market/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	userTable = &table[entity.User, model.UserModel]{
		name:       "user",
		fields:     persistence.UserFields,
		fromEntity: model.FromUser,
		toEntity:   (*model.UserModel).ToEntity,
		base:       func(u *entity.User) *entity.Base { return &u.Base },
	}
	businessTable = &table[entity.Business, model.BusinessModel]{
		name:       "business",
		fields:     persistence.BusinessFields,
		fromEntity: model.FromBusiness,
		toEntity:   (*model.BusinessModel).ToEntity,
		base:       func(b *entity.Business) *entity.Base { return &b.Base },
	}
	categoryTable = &table[entity.Category, model.CategoryModel]{
		name:       "category",
		fields:     persistence.CategoryFields,
		fromEntity: model.FromCategory,
		toEntity:   (*model.CategoryModel).ToEntity,
		base:       func(c *entity.Category) *entity.Base { return &c.Base },
	}
	itemTable = &table[entity.Item, model.ItemModel]{
		name:       "item",
		fields:     persistence.ItemFields,
		fromEntity: model.FromItem,
		toEntity:   (*model.ItemModel).ToEntity,
		base:       func(i *entity.Item) *entity.Base { return &i.Base },
	}
	orderTable = &table[entity.Order, model.OrderModel]{
		name:       "order",
		fields:     persistence.OrderFields,
		fromEntity: model.FromOrder,
		toEntity:   (*model.OrderModel).ToEntity,
		base:       func(o *entity.Order) *entity.Base { return &o.Base },
	}
	orderItemTable = &table[entity.OrderItem, model.OrderItemModel]{
		name:       "order item",
		fields:     persistence.OrderItemFields,
		fromEntity: model.FromOrderItem,
		toEntity:   (*model.OrderItemModel).ToEntity,
		base:       func(oi *entity.OrderItem) *entity.Base { return &oi.Base },
	}
	reviewTable = &table[entity.Review, model.ReviewModel]{
		name:       "review",
		fields:     persistence.ReviewFields,
		fromEntity: model.FromReview,
		toEntity:   (*model.ReviewModel).ToEntity,
		base:       func(r *entity.Review) *entity.Base { return &r.Base },
	}
	tokenTable = &table[entity.Token, model.TokenModel]{
		name:       "token",
		fields:     persistence.TokenFields,
		fromEntity: model.FromToken,
		toEntity:   (*model.TokenModel).ToEntity,
		base:       func(t *entity.Token) *entity.Base { return &t.Base },
	}
)

// itemRepository adds stock bookkeeping to the generic repository.
type itemRepository struct {
	*gormRepository[entity.Item, model.ItemModel]
}

// DecrementStock subtracts qty in a single conditional UPDATE so concurrent
// orders cannot drive stock negative.
func (repo *itemRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.ItemModel{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"updated_at":     repo.now().UTC(),
		})
	if result.Error != nil {
		return false, translateError(result.Error, "failed to decrement stock")
	}

	return result.RowsAffected == 1, nil
}

// tokenRepository adds expiry cleanup to the generic repository.
type tokenRepository struct {
	*gormRepository[entity.Token, model.TokenModel]
}

func (repo *tokenRepository) DeleteExpired(ctx context.Context, now, cutoff time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at <= ? OR created_at < ?", now.UTC(), cutoff.UTC()).
		Delete(&model.TokenModel{})
	if result.Error != nil {
		return 0, translateError(result.Error, "failed to delete expired tokens")
	}

	return result.RowsAffected, nil
}
