package repository

import (
	"context"
	"time"

	"market/internal/domain/entity"

	"github.com/google/uuid"
)

// TransactionManager defines the interface for managing storage transactions.
// This allows the use case layer to handle transactions without depending on a specific driver.
type TransactionManager interface {
	// Execute runs fn within a single transaction. The ctx and Store handed to
	// fn are bound to that transaction and must be used for every call inside it.
	// If fn returns an error, the transaction is rolled back. Otherwise, it's committed.
	Execute(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// ItemRepository adds stock bookkeeping to the generic item repository.
type ItemRepository interface {
	Repository[entity.Item]

	// DecrementStock lowers stock by qty only if enough remains. It reports
	// false when the item is missing or stock is insufficient. A negative
	// qty puts stock back.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
}

// TokenRepository adds lifecycle queries to the generic token repository.
type TokenRepository interface {
	Repository[entity.Token]

	// DeleteExpired removes tokens expired at now or created before cutoff.
	DeleteExpired(ctx context.Context, now, cutoff time.Time) (int64, error)
}

// Store is the single storage port. One adapter is chosen per deployment.
type Store interface {
	TransactionManager

	Users() Repository[entity.User]
	Businesses() Repository[entity.Business]
	Categories() Repository[entity.Category]
	Items() ItemRepository
	Orders() Repository[entity.Order]
	OrderItems() Repository[entity.OrderItem]
	Reviews() Repository[entity.Review]
	Tokens() TokenRepository

	// Ping checks connectivity.
	Ping(ctx context.Context) error
}
