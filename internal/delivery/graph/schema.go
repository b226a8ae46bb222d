package graph

import (
	"market/internal/errors"

	"github.com/graphql-go/graphql"
)

// NewSchema builds the executable schema served at /graphql.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	t := newTypes()

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: r.requireCaller(r.queryFields(t), func(name string) bool { return callerQueries[name] }),
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: r.requireCaller(r.mutationFields(t), func(name string) bool { return !anonymousMutations[name] }),
		}),
	})
	if err != nil {
		return graphql.Schema{}, errors.Wrap(err, "failed to build GraphQL schema")
	}

	return schema, nil
}
