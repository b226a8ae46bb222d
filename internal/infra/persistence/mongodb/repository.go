package mongodb

import (
	"context"
	"reflect"
	"regexp"
	"time"

	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/errors"
	"market/internal/infra/persistence"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collectionDef describes how one entity maps onto its document type.
type collectionDef[T any, D any] struct {
	name       string
	label      string
	fields     *persistence.FieldSet
	fromEntity func(*T) *D
	toEntity   func(*D) (*T, error)
	base       func(*T) *entity.Base
}

// mongoRepository implements repository.Repository over a single collection.
// Calls made with a session context join that session's transaction.
type mongoRepository[T any, D any] struct {
	coll *mongo.Collection
	def  *collectionDef[T, D]
	inTx bool
	now  func() time.Time
}

func newMongoRepository[T any, D any](db *mongo.Database, def *collectionDef[T, D], inTx bool, now func() time.Time) *mongoRepository[T, D] {
	return &mongoRepository[T, D]{coll: db.Collection(def.name), def: def, inTx: inTx, now: now}
}

// stamp returns the current time at the precision BSON dates keep.
func (repo *mongoRepository[T, D]) stamp() time.Time {
	return repo.now().UTC().Truncate(time.Millisecond)
}

func (repo *mongoRepository[T, D]) Create(ctx context.Context, e *T) error {
	repo.def.base(e).Stamp(repo.stamp())

	if _, err := repo.coll.InsertOne(ctx, repo.def.fromEntity(e)); err != nil {
		return translateError(err, "failed to create "+repo.def.label)
	}

	return nil
}

func (repo *mongoRepository[T, D]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var doc D
	if err := repo.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}

		return nil, translateError(err, "failed to find "+repo.def.label)
	}

	return repo.def.toEntity(&doc)
}

func (repo *mongoRepository[T, D]) List(ctx context.Context, page repository.Page) ([]*T, error) {
	return repo.find(ctx, bson.D{}, page)
}

// Update applies a $set of the given fields and returns the document after the update.
func (repo *mongoRepository[T, D]) Update(ctx context.Context, id uuid.UUID, fields repository.Fields) (*T, error) {
	keys, err := repo.def.fields.CheckWritable(fields)
	if err != nil {
		return nil, err
	}

	set := make(bson.D, 0, len(keys)+1)
	for _, k := range keys {
		set = append(set, bson.E{Key: k, Value: documentValue(fields[k])})
	}
	set = append(set, bson.E{Key: "updated_at", Value: repo.stamp()})

	var doc D
	err = repo.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}

		return nil, translateError(err, "failed to update "+repo.def.label)
	}

	return repo.def.toEntity(&doc)
}

// Delete removes the document and applies the shared reference rules to the
// documents pointing at it. A restricting reference fails with ErrResourceInUse
// and nothing is removed. Outside a store transaction the work runs in its own.
func (repo *mongoRepository[T, D]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if len(persistence.ReferencesTo(repo.def.name)) == 0 {
		return repo.deleteOne(ctx, id)
	}
	if repo.inTx || mongo.SessionFromContext(ctx) != nil {
		return repo.deleteReferenced(ctx, id)
	}

	session, err := repo.coll.Database().Client().StartSession()
	if err != nil {
		return false, errors.Wrap(err, "failed to start session")
	}
	defer session.EndSession(ctx)

	deleted, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return repo.deleteReferenced(sc, id)
	})
	if err != nil {
		return false, err
	}

	return deleted.(bool), nil
}

func (repo *mongoRepository[T, D]) deleteReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	db := repo.coll.Database()
	plan, err := planDelete(ctx, db, repo.def.name, []string{id.String()})
	if err != nil {
		return false, err
	}
	if err := plan.apply(ctx, db); err != nil {
		return false, err
	}

	return repo.deleteOne(ctx, id)
}

func (repo *mongoRepository[T, D]) deleteOne(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := repo.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return false, translateError(err, "failed to delete "+repo.def.label)
	}

	return res.DeletedCount > 0, nil
}

// FilterBy matches every field exactly. A nil value matches null or a missing field.
func (repo *mongoRepository[T, D]) FilterBy(ctx context.Context, fields repository.Fields) ([]*T, error) {
	keys, err := repo.def.fields.CheckWritable(fields)
	if err != nil {
		return nil, err
	}

	filter := make(bson.D, 0, len(keys))
	for _, k := range keys {
		filter = append(filter, bson.E{Key: k, Value: documentValue(fields[k])})
	}

	return repo.find(ctx, filter, repository.Page{})
}

func (repo *mongoRepository[T, D]) Count(ctx context.Context) (int64, error) {
	n, err := repo.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, translateError(err, "failed to count "+repo.def.label)
	}

	return n, nil
}

// Search matches query as a case-insensitive literal substring of any of the fields.
func (repo *mongoRepository[T, D]) Search(ctx context.Context, query string, fields []string, page repository.Page) ([]*T, error) {
	if err := repo.def.fields.CheckSearchable(fields); err != nil {
		return nil, err
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.D{{Key: f, Value: pattern}})
	}

	return repo.find(ctx, bson.D{{Key: "$or", Value: or}}, page)
}

func (repo *mongoRepository[T, D]) find(ctx context.Context, filter bson.D, page repository.Page) ([]*T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if page.Offset > 0 {
		opts.SetSkip(int64(page.Offset))
	}
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}

	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError(err, "failed to query "+repo.def.label)
	}

	var docs []*D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateError(err, "failed to decode "+repo.def.label)
	}

	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		e, err := repo.def.toEntity(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

// documentValue converts domain values into their stored BSON form.
func documentValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case uuid.UUID:
		return val.String()
	case decimal.Decimal:
		return toDecimal128(val)
	case time.Time:
		return val.UTC().Truncate(time.Millisecond)
	case []string:
		return nonNil(val)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}

		return documentValue(rv.Elem().Interface())
	}
	// Named string types such as entity.OrderStatus.
	if rv.Kind() == reflect.String && rv.Type() != reflect.TypeOf("") {
		return rv.String()
	}

	return v
}

func translateError(err error, action string) error {
	if mongo.IsDuplicateKeyError(err) {
		return domainerrors.ErrDuplicateResource.WrapMessage(action)
	}

	return domainerrors.NewDatabaseExecuteError(err, action)
}
