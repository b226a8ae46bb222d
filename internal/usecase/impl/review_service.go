package impl

import (
	"context"
	"log/slog"

	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/errors"
	"market/internal/usecase"

	"github.com/google/uuid"
)

type reviewService struct {
	reviews usecase.Service[entity.Review]
	limits  func(repository.Page) repository.Page
	logger  *slog.Logger
}

// NewReviewService is the constructor for reviewService.
func NewReviewService(params CatalogParams) usecase.ReviewUsecase {
	pagination := params.Config.Pagination

	return &reviewService{
		reviews: NewService(params.Store, "review", reviewsOf, pagination, params.Logger, Hooks[entity.Review]{
			BeforeCreate: func(ctx context.Context, tx repository.Store, r *entity.Review) error {
				_, err := tx.Businesses().FindByID(ctx, r.BusinessID)
				if errors.Is(err, repository.ErrNotFound) {
					return invalid("business %s does not exist", r.BusinessID)
				}

				return err
			},
		}),
		limits: func(p repository.Page) repository.Page {
			return p.Normalize(pagination.DefaultLimit, pagination.MaxLimit)
		},
		logger: params.Logger,
	}
}

func (srv *reviewService) Create(ctx context.Context, input *usecase.CreateReviewInput) (*entity.Review, error) {
	callerID, err := deliverycontext.PrincipalFromContext(ctx).RequirePermission(entity.PermissionReviewWrite)
	if err != nil {
		return nil, err
	}
	if input == nil {
		return nil, invalid("input is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !entity.ValidRating(input.Rating) {
		return nil, invalid("rating must be between %d and %d", entity.MinRating, entity.MaxRating)
	}

	review := &entity.Review{
		UserID:     callerID,
		BusinessID: input.BusinessID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}
	if err := srv.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Info("Review created",
		slog.Any("reviewID", review.ID),
		slog.Any("businessID", review.BusinessID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

func (srv *reviewService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	principal := deliverycontext.PrincipalFromContext(ctx)
	callerID, err := principal.RequireAuthenticated()
	if err != nil {
		return false, err
	}

	review, err := srv.reviews.GetByID(ctx, id)
	if err != nil || review == nil {
		return false, err
	}
	if review.UserID != callerID && !principal.HasPermission(entity.PermissionReviewModerate) {
		return false, domainerrors.ErrAuthorizationDenied
	}

	return srv.reviews.Delete(ctx, id)
}

func (srv *reviewService) Get(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	return srv.reviews.GetByID(ctx, id)
}

func (srv *reviewService) List(ctx context.Context, page repository.Page) (*usecase.PageResult[entity.Review], error) {
	return srv.reviews.List(ctx, page)
}

func (srv *reviewService) ListByBusiness(ctx context.Context, businessID uuid.UUID, page repository.Page) (*usecase.PageResult[entity.Review], error) {
	all, err := srv.reviews.FilterBy(ctx, repository.Fields{"business_id": businessID})
	if err != nil {
		return nil, err
	}

	return paginate(all, srv.limits(page)), nil
}
