// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"market/internal/domain/repository"

	"github.com/google/uuid"
)

// PageResult is one window of an ordered list together with the total size.
type PageResult[T any] struct {
	Items  []*T
	Offset int
	Limit  int
	Total  int64
}

// HasNext reports whether records exist after this window.
func (p *PageResult[T]) HasNext() bool {
	return int64(p.Offset+len(p.Items)) < p.Total
}

// HasPrevious reports whether records exist before this window.
func (p *PageResult[T]) HasPrevious() bool {
	return p.Offset > 0
}

// BulkUpdate is one entry of Service.BulkUpdate.
type BulkUpdate struct {
	ID     uuid.UUID
	Fields repository.Fields
}

// Service is the generic CRUD contract every entity service exposes. Storage
// failures are logged before being returned.
type Service[T any] interface {
	Create(ctx context.Context, entity *T) error

	// GetByID returns nil without error when the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)

	// List clamps page to the configured pagination bounds.
	List(ctx context.Context, page repository.Page) (*PageResult[T], error)

	// Update returns ErrNotFound when the record does not exist.
	Update(ctx context.Context, id uuid.UUID, fields repository.Fields) (*T, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FilterBy(ctx context.Context, fields repository.Fields) ([]*T, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, query string, fields []string, page repository.Page) ([]*T, error)

	// BulkCreate inserts all entities or none.
	BulkCreate(ctx context.Context, entities []*T) error

	// BulkUpdate applies all updates or none.
	BulkUpdate(ctx context.Context, updates []BulkUpdate) ([]*T, error)
}
