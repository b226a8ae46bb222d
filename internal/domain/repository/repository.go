// Package repository defines the storage port used by the use case layer.
// Adapters for relational and document stores implement it.
package repository

import (
	"context"

	"market/internal/errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record with the requested identifier does not exist.
var ErrNotFound = errors.New("record not found")

// Fields maps storage-neutral snake_case field names to values. It is used
// both for partial updates and for exact-match filters. Adapters reject keys
// that are not declared for the entity.
type Fields map[string]any

// Page selects a window of an ordered result set.
type Page struct {
	Offset int
	Limit  int
}

// Normalize clamps the page into [0, max] using def when no limit was requested.
func (p Page) Normalize(def, max int) Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = def
	}
	if max > 0 && p.Limit > max {
		p.Limit = max
	}

	return p
}

// Repository is the generic data-access contract shared by every entity.
// Results are ordered by creation time then identifier.
type Repository[T any] interface {
	// Create inserts the entity, assigning its identifier and timestamps.
	Create(ctx context.Context, entity *T) error

	// FindByID returns ErrNotFound when no record exists.
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)

	List(ctx context.Context, page Page) ([]*T, error)

	// Update merges fields into the record and returns the stored result.
	// It returns ErrNotFound when no record exists.
	Update(ctx context.Context, id uuid.UUID, fields Fields) (*T, error)

	// Delete reports whether a record existed and was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// FilterBy returns every record matching all fields exactly.
	FilterBy(ctx context.Context, fields Fields) ([]*T, error)

	Count(ctx context.Context) (int64, error)

	// Search performs a case-insensitive substring match of query against the
	// given text fields, any of which may match.
	Search(ctx context.Context, query string, fields []string, page Page) ([]*T, error)
}
