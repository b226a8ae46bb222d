package usecase

import (
	"context"

	"market/internal/domain/entity"
	"market/internal/domain/tagging"

	"github.com/google/uuid"
)

// TagKind selects which records a tag search scans.
type TagKind string

const (
	TagKindItems      TagKind = "items"
	TagKindBusinesses TagKind = "businesses"
)

// TagSearchResult holds the records matching a tag search. Only the slice for
// the requested kind is filled.
type TagSearchResult struct {
	Items      []*entity.Item
	Businesses []*entity.Business
}

// TaggingUsecase derives tags on demand; nothing is indexed.
type TaggingUsecase interface {
	// TagItem recomputes and stores the tags of an item.
	TagItem(ctx context.Context, itemID uuid.UUID, custom []string) (*entity.Item, error)

	// TagBusiness returns the tags of a business without storing them.
	TagBusiness(ctx context.Context, businessID uuid.UUID, custom []string) ([]string, error)

	SearchByTags(ctx context.Context, tags []string, kind TagKind) (*TagSearchResult, error)
	PopularTags(ctx context.Context, limit int) ([]tagging.TagCount, error)
	SuggestTags(ctx context.Context, text string) []string
}
