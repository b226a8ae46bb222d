package impl

import (
	"context"

	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/domain/tagging"
	"market/internal/usecase"

	"github.com/google/uuid"
)

// taggingService recomputes tags from the stored records on every call.
type taggingService struct {
	items      usecase.Service[entity.Item]
	businesses usecase.Service[entity.Business]
	categories usecase.Service[entity.Category]
}

// NewTaggingService is the constructor for taggingService.
func NewTaggingService(params CatalogParams) usecase.TaggingUsecase {
	return &taggingService{
		items:      NewService(params.Store, "item", itemsOf, params.Config.Pagination, params.Logger, Hooks[entity.Item]{}),
		businesses: NewService(params.Store, "business", businessesOf, params.Config.Pagination, params.Logger, Hooks[entity.Business]{}),
		categories: NewService(params.Store, "category", categoriesOf, params.Config.Pagination, params.Logger, Hooks[entity.Category]{}),
	}
}

func (srv *taggingService) categoryName(ctx context.Context, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}

	category, err := srv.categories.GetByID(ctx, *id)
	if err != nil || category == nil {
		return "", err
	}

	return category.Name, nil
}

// TagItem is restricted to whoever may edit the item.
func (srv *taggingService) TagItem(ctx context.Context, itemID uuid.UUID, custom []string) (*entity.Item, error) {
	item, err := srv.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domainerrors.ErrNotFound.WithDetails("item " + itemID.String())
	}
	if _, err := loadManagedBusiness(ctx, srv.businesses, item.BusinessID); err != nil {
		return nil, err
	}

	categoryName, err := srv.categoryName(ctx, item.CategoryID)
	if err != nil {
		return nil, err
	}

	tags := tagging.ForItem(item, categoryName, custom...)

	return srv.items.Update(ctx, itemID, repository.Fields{"tags": tags})
}

func (srv *taggingService) TagBusiness(ctx context.Context, businessID uuid.UUID, custom []string) ([]string, error) {
	business, err := srv.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domainerrors.ErrNotFound.WithDetails("business " + businessID.String())
	}

	return tagging.ForBusiness(business, custom...), nil
}

// SearchByTags scans every active record of the requested kind.
func (srv *taggingService) SearchByTags(ctx context.Context, tags []string, kind usecase.TagKind) (*usecase.TagSearchResult, error) {
	result := &usecase.TagSearchResult{}
	if len(tags) == 0 {
		return result, nil
	}

	switch kind {
	case usecase.TagKindItems, "":
		items, err := srv.items.FilterBy(ctx, repository.Fields{"is_active": true})
		if err != nil {
			return nil, err
		}
		result.Items = make([]*entity.Item, 0)
		for _, item := range items {
			if tagging.MatchesAny(tagging.ForItem(item, ""), tags) {
				result.Items = append(result.Items, item)
			}
		}
	case usecase.TagKindBusinesses:
		businesses, err := srv.businesses.FilterBy(ctx, repository.Fields{"is_active": true})
		if err != nil {
			return nil, err
		}
		result.Businesses = make([]*entity.Business, 0)
		for _, business := range businesses {
			if tagging.MatchesAny(tagging.ForBusiness(business), tags) {
				result.Businesses = append(result.Businesses, business)
			}
		}
	default:
		return nil, invalid("unknown tag kind %q", kind)
	}

	return result, nil
}

// PopularTags counts tags over all active items.
func (srv *taggingService) PopularTags(ctx context.Context, limit int) ([]tagging.TagCount, error) {
	items, err := srv.items.FilterBy(ctx, repository.Fields{"is_active": true})
	if err != nil {
		return nil, err
	}

	tagSets := make([][]string, 0, len(items))
	for _, item := range items {
		tagSets = append(tagSets, tagging.ForItem(item, ""))
	}

	return tagging.Popular(tagSets, limit), nil
}

func (srv *taggingService) SuggestTags(_ context.Context, text string) []string {
	return tagging.Extract(text)
}
