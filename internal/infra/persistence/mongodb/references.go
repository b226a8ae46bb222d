package mongodb

import (
	"context"
	"fmt"

	domainerrors "market/internal/domain/errors"
	"market/internal/infra/persistence"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cascadeDelete struct {
	collection string
	ids        []string
}

type clearReference struct {
	collection string
	column     string
	targets    []string
}

// deletePlan is the work a delete implies for referencing documents.
// Cascades are recorded parents first.
type deletePlan struct {
	cascades []cascadeDelete
	clears   []clearReference
}

// planDelete walks the references to ids in collection, following cascades,
// and fails on the first restricting reference it finds.
func planDelete(ctx context.Context, db *mongo.Database, collection string, ids []string) (*deletePlan, error) {
	plan := &deletePlan{}
	if err := plan.walk(ctx, db, collection, ids); err != nil {
		return nil, err
	}

	return plan, nil
}

func (p *deletePlan) walk(ctx context.Context, db *mongo.Database, collection string, ids []string) error {
	for _, ref := range persistence.ReferencesTo(collection) {
		filter := bson.D{{Key: ref.Column, Value: bson.D{{Key: "$in", Value: ids}}}}
		coll := db.Collection(ref.Table)

		switch ref.OnDelete {
		case persistence.Restrict:
			n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
			if err != nil {
				return translateError(err, "failed to check references in "+ref.Table)
			}
			if n > 0 {
				return domainerrors.ErrResourceInUse.WithDetails(fmt.Sprintf("referenced by %s.%s", ref.Table, ref.Column))
			}
		case persistence.Cascade:
			childIDs, err := distinctIDs(ctx, coll, filter)
			if err != nil {
				return err
			}
			if len(childIDs) == 0 {
				continue
			}
			p.cascades = append(p.cascades, cascadeDelete{collection: ref.Table, ids: childIDs})
			if err := p.walk(ctx, db, ref.Table, childIDs); err != nil {
				return err
			}
		case persistence.SetNull:
			p.clears = append(p.clears, clearReference{collection: ref.Table, column: ref.Column, targets: ids})
		}
	}

	return nil
}

// apply clears references first, then deletes cascaded documents children first.
func (p *deletePlan) apply(ctx context.Context, db *mongo.Database) error {
	for _, c := range p.clears {
		_, err := db.Collection(c.collection).UpdateMany(ctx,
			bson.D{{Key: c.column, Value: bson.D{{Key: "$in", Value: c.targets}}}},
			bson.D{{Key: "$set", Value: bson.D{{Key: c.column, Value: nil}}}},
		)
		if err != nil {
			return translateError(err, "failed to clear references in "+c.collection)
		}
	}

	for i := len(p.cascades) - 1; i >= 0; i-- {
		c := p.cascades[i]
		_, err := db.Collection(c.collection).DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: c.ids}}}})
		if err != nil {
			return translateError(err, "failed to delete from "+c.collection)
		}
	}

	return nil
}

func distinctIDs(ctx context.Context, coll *mongo.Collection, filter bson.D) ([]string, error) {
	values, err := coll.Distinct(ctx, "_id", filter)
	if err != nil {
		return nil, translateError(err, "failed to collect references in "+coll.Name())
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}
