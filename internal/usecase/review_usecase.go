package usecase

import (
	"context"

	"market/internal/domain/entity"
	"market/internal/domain/repository"

	"github.com/google/uuid"
)

// CreateReviewInput defines a review written by the caller.
type CreateReviewInput struct {
	BusinessID uuid.UUID `validate:"required"`
	Rating     int
	Comment    *string `validate:"omitempty,max=5000"`
}

// ReviewUsecase manages business reviews.
type ReviewUsecase interface {
	Create(ctx context.Context, input *CreateReviewInput) (*entity.Review, error)

	// Delete is allowed for the author and review:moderate.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	Get(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	List(ctx context.Context, page repository.Page) (*PageResult[entity.Review], error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, page repository.Page) (*PageResult[entity.Review], error)
}
