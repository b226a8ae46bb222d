package usecase

import (
	"context"

	"market/internal/domain/entity"
	"market/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCategoryInput defines a new category.
type CreateCategoryInput struct {
	Name             string  `validate:"required,max=100"`
	Description      *string `validate:"omitempty,max=2000"`
	ParentCategoryID *uuid.UUID
}

// UpdateCategoryInput is a partial update. ClearParent detaches the category
// from its parent and takes precedence over ParentCategoryID.
type UpdateCategoryInput struct {
	Name             *string `validate:"omitempty,min=1,max=100"`
	Description      *string `validate:"omitempty,max=2000"`
	ParentCategoryID *uuid.UUID
	ClearParent      bool
	IsActive         *bool
}

// CategoryUsecase manages the category tree. Writes require category:write.
type CategoryUsecase interface {
	Create(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error)
	Update(ctx context.Context, id uuid.UUID, input *UpdateCategoryInput) (*entity.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Category, error)

	// ListActive returns every active category.
	ListActive(ctx context.Context) ([]*entity.Category, error)
}

// CreateBusinessInput defines a new business owned by the caller.
type CreateBusinessInput struct {
	Name        string  `validate:"required,max=255"`
	Description *string `validate:"omitempty,max=5000"`
	Address     *string `validate:"omitempty,max=500"`
	Phone       *string `validate:"omitempty,max=20"`
	Email       *string `validate:"omitempty,email,max=255"`
	Website     *string `validate:"omitempty,url,max=255"`
}

// UpdateBusinessInput is a partial update.
type UpdateBusinessInput struct {
	Name        *string `validate:"omitempty,min=1,max=255"`
	Description *string `validate:"omitempty,max=5000"`
	Address     *string `validate:"omitempty,max=500"`
	Phone       *string `validate:"omitempty,max=20"`
	Email       *string `validate:"omitempty,email,max=255"`
	Website     *string `validate:"omitempty,url,max=255"`
	IsActive    *bool
}

// BusinessUsecase manages storefronts. Only the owner or a holder of
// business:manage may change one.
type BusinessUsecase interface {
	Create(ctx context.Context, input *CreateBusinessInput) (*entity.Business, error)
	Update(ctx context.Context, id uuid.UUID, input *UpdateBusinessInput) (*entity.Business, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Business, error)
	List(ctx context.Context, page repository.Page) (*PageResult[entity.Business], error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page repository.Page) (*PageResult[entity.Business], error)

	// StorefrontQRCode renders a PNG QR code linking to an active business.
	StorefrontQRCode(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// CreateItemInput defines a new item of a business.
type CreateItemInput struct {
	BusinessID      uuid.UUID       `validate:"required"`
	Name            string          `validate:"required,max=255"`
	Description     *string         `validate:"omitempty,max=5000"`
	Type            entity.ItemType `validate:"required"`
	CategoryID      *uuid.UUID
	Price           decimal.Decimal
	StockQuantity   int      `validate:"gte=0"`
	ServiceDuration *int     `validate:"omitempty,gt=0"`
	Images          []string `validate:"omitempty,dive,required,max=500"`
	Tags            []string `validate:"omitempty,dive,required,max=50"`
}

// UpdateItemInput is a partial update.
type UpdateItemInput struct {
	Name            *string          `validate:"omitempty,min=1,max=255"`
	Description     *string          `validate:"omitempty,max=5000"`
	Type            *entity.ItemType `validate:"omitempty"`
	CategoryID      *uuid.UUID
	Price           *decimal.Decimal
	StockQuantity   *int     `validate:"omitempty,gte=0"`
	ServiceDuration *int     `validate:"omitempty,gt=0"`
	Images          []string `validate:"omitempty,dive,required,max=500"`
	Tags            []string `validate:"omitempty,dive,required,max=50"`
	IsActive        *bool
}

// ItemBulkUpdate is one entry of ItemUsecase.BulkUpdate.
type ItemBulkUpdate struct {
	ID    uuid.UUID
	Input *UpdateItemInput
}

// ItemUsecase manages the items a business sells.
type ItemUsecase interface {
	Create(ctx context.Context, input *CreateItemInput) (*entity.Item, error)
	Update(ctx context.Context, id uuid.UUID, input *UpdateItemInput) (*entity.Item, error)
	// BulkUpdate applies updates to items of one business, all or none.
	BulkUpdate(ctx context.Context, businessID uuid.UUID, updates []ItemBulkUpdate) ([]*entity.Item, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	List(ctx context.Context, page repository.Page) (*PageResult[entity.Item], error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, page repository.Page) (*PageResult[entity.Item], error)

	// Search matches query against item names and descriptions.
	Search(ctx context.Context, query string, page repository.Page) ([]*entity.Item, error)
}
