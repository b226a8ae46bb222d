// Package graph exposes the use cases as a GraphQL schema built with graphql-go.
package graph

import (
	"log/slog"
	"strings"

	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/repository"
	"market/internal/usecase"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// ResolverParams holds the use cases the resolvers call, injected by Fx.
type ResolverParams struct {
	fx.In

	Accounts   usecase.AccountUsecase
	Categories usecase.CategoryUsecase
	Businesses usecase.BusinessUsecase
	Items      usecase.ItemUsecase
	Orders     usecase.OrderUsecase
	Reviews    usecase.ReviewUsecase
	Tagging    usecase.TaggingUsecase
	Logger     *slog.Logger
}

// Resolver implements every query and mutation field. Each resolver reads the
// principal from the request context, so authorization happens in the use
// cases it calls.
type Resolver struct {
	accounts   usecase.AccountUsecase
	categories usecase.CategoryUsecase
	businesses usecase.BusinessUsecase
	items      usecase.ItemUsecase
	orders     usecase.OrderUsecase
	reviews    usecase.ReviewUsecase
	tagging    usecase.TaggingUsecase
	logger     *slog.Logger
}

// NewResolver is the constructor for Resolver.
func NewResolver(params ResolverParams) *Resolver {
	return &Resolver{
		accounts:   params.Accounts,
		categories: params.Categories,
		businesses: params.Businesses,
		items:      params.Items,
		orders:     params.Orders,
		reviews:    params.Reviews,
		tagging:    params.Tagging,
		logger:     params.Logger,
	}
}

// wrap turns use case errors into GraphQL error entries carrying a code.
func (r *Resolver) wrap(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		result, err := fn(p)
		if err != nil {
			return nil, toGraphError(p.Context, r.logger, err)
		}

		return result, nil
	}
}

// anonymousMutations are the only mutations open to callers without a token.
var anonymousMutations = map[string]bool{
	"accountRegister": true,
	"accountLogin":    true,
}

// callerQueries are the queries that only answer an authenticated caller.
var callerQueries = map[string]bool{
	"me":               true,
	"accountGet":       true,
	"accountList":      true,
	"order":            true,
	"orders":           true,
	"myOrders":         true,
	"ordersByBusiness": true,
}

// requireCaller rejects anonymous callers of the gated fields before any
// argument is parsed.
func (r *Resolver) requireCaller(fields graphql.Fields, gated func(name string) bool) graphql.Fields {
	for name, field := range fields {
		if !gated(name) {
			continue
		}
		resolve := field.Resolve
		field.Resolve = func(p graphql.ResolveParams) (any, error) {
			if _, err := deliverycontext.PrincipalFromContext(p.Context).RequireAuthenticated(); err != nil {
				return nil, toGraphError(p.Context, r.logger, err)
			}

			return resolve(p)
		}
	}

	return fields
}

// --- Argument helpers ---

// args reads resolver arguments and input objects. graphql-go has already
// coerced them to the declared types, so only presence is checked here.
type args map[string]any

func (a args) object(name string) args {
	m, _ := a[name].(map[string]any)

	return m
}

func (a args) has(name string) bool {
	v, ok := a[name]

	return ok && v != nil
}

func (a args) str(name string) string {
	s, _ := a[name].(string)

	return s
}

func (a args) optStr(name string) *string {
	if !a.has(name) {
		return nil
	}
	s := a.str(name)

	return &s
}

func (a args) integer(name string) int {
	n, _ := a[name].(int)

	return n
}

func (a args) optInt(name string) *int {
	n, ok := a[name].(int)
	if !ok {
		return nil
	}

	return &n
}

func (a args) optBool(name string) *bool {
	b, ok := a[name].(bool)
	if !ok {
		return nil
	}

	return &b
}

func (a args) strs(name string) []string {
	raw, ok := a[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func (a args) objects(name string) []args {
	raw, _ := a[name].([]any)
	out := make([]args, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}

	return out
}

func (a args) id(name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(a.str(name)))
	if err != nil {
		return uuid.Nil, invalidArg(name, "not a valid id")
	}

	return id, nil
}

func (a args) optID(name string) (*uuid.UUID, error) {
	if !a.has(name) {
		return nil, nil
	}
	id, err := a.id(name)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

func (a args) decimal(name string) (*decimal.Decimal, error) {
	if !a.has(name) {
		return nil, nil
	}
	d, ok := a[name].(decimal.Decimal)
	if !ok {
		return nil, invalidArg(name, "not a valid decimal")
	}

	return &d, nil
}

// page reads offset, limit and an optional after cursor. A cursor takes
// precedence over offset and starts right after the record it names.
func (a args) page() (repository.Page, error) {
	page := repository.Page{Offset: a.integer("offset"), Limit: a.integer("limit")}
	if after := a.str("after"); after != "" {
		offset, ok := decodeCursor(after)
		if !ok {
			return page, invalidArg("after", "malformed cursor")
		}
		page.Offset = offset + 1
	}

	return page, nil
}

func enumPtr[T ~string](a args, name string) *T {
	if !a.has(name) {
		return nil
	}
	v := T(a.str(name))

	return &v
}

var pageArgs = graphql.FieldConfigArgument{
	"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
	"limit":  &graphql.ArgumentConfig{Type: graphql.Int, Description: "Defaults to 20, at most 100."},
	"after":  &graphql.ArgumentConfig{Type: graphql.String, Description: "Cursor of the last edge already seen."},
}

func withPageArgs(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	merged := graphql.FieldConfigArgument{}
	for k, v := range pageArgs {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}

	return merged
}

func idArg(name string) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{name: &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}}
}
