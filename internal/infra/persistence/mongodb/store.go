package mongodb

import (
	"context"
	"time"

	"market/internal/domain/entity"
	"market/internal/domain/repository"
	"market/internal/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoStore implements repository.Store on one database. Transactions need a
// replica set or sharded cluster.
type mongoStore struct {
	db   *mongo.Database
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

// NewStore is the constructor for the document store.
func NewStore(db *mongo.Database) repository.Store {
	return newMongoStore(db, false, time.Now)
}

func newMongoStore(db *mongo.Database, inTx bool, now func() time.Time) *mongoStore {
	return &mongoStore{
		db:         db,
		inTx:       inTx,
		now:        now,
		users:      newMongoRepository(db, users, inTx, now),
		businesses: newMongoRepository(db, businesses, inTx, now),
		categories: newMongoRepository(db, categories, inTx, now),
		items:      &itemRepository{newMongoRepository(db, items, inTx, now)},
		orders:     newMongoRepository(db, orders, inTx, now),
		orderItems: newMongoRepository(db, orderItems, inTx, now),
		reviews:    newMongoRepository(db, reviews, inTx, now),
		tokens:     &tokenRepository{newMongoRepository(db, tokens, inTx, now)},
	}
}

func (s *mongoStore) Users() repository.Repository[entity.User] { return s.users }
func (s *mongoStore) Businesses() repository.Repository[entity.Business] { return s.businesses }
func (s *mongoStore) Categories() repository.Repository[entity.Category] { return s.categories }
func (s *mongoStore) Items() repository.ItemRepository { return s.items }
func (s *mongoStore) Orders() repository.Repository[entity.Order] { return s.orders }
func (s *mongoStore) OrderItems() repository.Repository[entity.OrderItem] { return s.orderItems }
func (s *mongoStore) Reviews() repository.Repository[entity.Review] { return s.reviews }
func (s *mongoStore) Tokens() repository.TokenRepository { return s.tokens }

func (s *mongoStore) Ping(ctx context.Context) error {
	return errors.WithStack(s.db.Client().Ping(ctx, readpref.Primary()))
}

// Execute runs fn inside a multi-document transaction. The session context is
// passed on as ctx so every repository call joins the transaction. The driver
// may run fn more than once on transient errors.
func (s *mongoStore) Execute(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	session, err := s.db.Client().StartSession()
	if err != nil {
		return errors.Wrap(err, "failed to start session")
	}
	defer session.EndSession(ctx)

	tx := newMongoStore(s.db, true, s.now)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc, tx)
	})

	return err
}
