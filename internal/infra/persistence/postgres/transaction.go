// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/errors"

	"gorm.io/gorm"
)

// gormStore implements repository.Store. Every repository it hands out shares
// the same *gorm.DB, which is a transaction inside Execute.
type gormStore struct {
	db   *gorm.DB
	inTx bool
	now  func() time.Time

	users      repository.Repository[entity.User]
	businesses repository.Repository[entity.Business]
	categories repository.Repository[entity.Category]
	items      repository.ItemRepository
	orders     repository.Repository[entity.Order]
	orderItems repository.Repository[entity.OrderItem]
	reviews    repository.Repository[entity.Review]
	tokens     repository.TokenRepository
}

// NewStore is the constructor for the relational store.
// This function will be used as an Fx provider.
func NewStore(db *gorm.DB) repository.Store {
	return newGormStore(db, false, time.Now)
}

func newGormStore(db *gorm.DB, inTx bool, now func() time.Time) *gormStore {
	return &gormStore{
		db:         db,
		inTx:       inTx,
		now:        now,
		users:      newGormRepository(db, userTable, now),
		businesses: newGormRepository(db, businessTable, now),
		categories: newGormRepository(db, categoryTable, now),
		items:      &itemRepository{newGormRepository(db, itemTable, now)},
		orders:     newGormRepository(db, orderTable, now),
		orderItems: newGormRepository(db, orderItemTable, now),
		reviews:    newGormRepository(db, reviewTable, now),
		tokens:     &tokenRepository{newGormRepository(db, tokenTable, now)},
	}
}

func (s *gormStore) Users() repository.Repository[entity.User] { return s.users }
func (s *gormStore) Businesses() repository.Repository[entity.Business] { return s.businesses }
func (s *gormStore) Categories() repository.Repository[entity.Category] { return s.categories }
func (s *gormStore) Items() repository.ItemRepository { return s.items }
func (s *gormStore) Orders() repository.Repository[entity.Order] { return s.orders }
func (s *gormStore) OrderItems() repository.Repository[entity.OrderItem] { return s.orderItems }
func (s *gormStore) Reviews() repository.Repository[entity.Review] { return s.reviews }
func (s *gormStore) Tokens() repository.TokenRepository { return s.tokens }

// Ping checks the underlying connection pool.
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}

	return errors.WithStack(sqlDB.PingContext(ctx))
}

// Execute runs the given function within a single database transaction.
// Calls made on a store that is already transactional join the outer transaction.
func (s *gormStore) Execute(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	// Begin a new transaction
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return domainerrors.NewDatabaseExecuteError(tx.Error, "failed to begin transaction")
	}

	// A panic inside fn must not leave the transaction open.
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, newGormStore(tx, true, s.now)); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			// Keep the business error; the rollback failure is secondary.
			return errors.Wrapf(err, "transaction rollback failed: %v", rbErr)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		return domainerrors.ErrTransactionFailed.WithDetails(err.Error())
	}

	return nil
}
