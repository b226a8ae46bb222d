package usecase

import (
	"context"

	"market/internal/domain/entity"
	"market/internal/domain/repository"

	"github.com/google/uuid"
)

// OrderLineInput is one requested line of a new order.
type OrderLineInput struct {
	ItemID   uuid.UUID `validate:"required"`
	Quantity int       `validate:"gt=0"`
}

// CreateOrderInput defines an order placed by the caller at one business.
type CreateOrderInput struct {
	BusinessID          uuid.UUID        `validate:"required"`
	Lines               []OrderLineInput `validate:"required,min=1,dive"`
	DeliveryAddress     *string          `validate:"omitempty,max=500"`
	SpecialInstructions *string          `validate:"omitempty,max=2000"`
}

// OrderUsecase places orders and moves them through their status machine.
type OrderUsecase interface {
	// Create writes the order, its lines and the stock changes in one
	// transaction. The returned order has its lines loaded.
	Create(ctx context.Context, input *CreateOrderInput) (*entity.Order, error)

	// Get is allowed for the customer, the business owner and order:manage.
	Get(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	ListMine(ctx context.Context, page repository.Page) (*PageResult[entity.Order], error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, page repository.Page) (*PageResult[entity.Order], error)
	ListAll(ctx context.Context, page repository.Page) (*PageResult[entity.Order], error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus) (*entity.Order, error)
}
