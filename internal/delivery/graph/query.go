package graph

import (
	"encoding/base64"

	"market/internal/usecase"

	"github.com/graphql-go/graphql"
)

func (r *Resolver) queryFields(t *types) graphql.Fields {
	return graphql.Fields{
		// --- Accounts ---
		"me": &graphql.Field{
			Type:        graphql.NewNonNull(t.user),
			Description: "The authenticated caller.",
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				user, err := r.accounts.Me(p.Context)
				if err != nil {
					return nil, err
				}

				return toUserView(user), nil
			}),
		},
		"accountGet": &graphql.Field{
			Type: t.user,
			Args: idArg("userId"),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				id, err := args(p.Args).id("userId")
				if err != nil {
					return nil, err
				}
				user, err := r.accounts.Get(p.Context, id)
				if err != nil {
					return nil, err
				}

				return toUserView(user), nil
			}),
		},
		"accountList": &graphql.Field{
			Type: graphql.NewNonNull(t.userConnection),
			Args: pageArgs,
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				page, err := args(p.Args).page()
				if err != nil {
					return nil, err
				}
				result, err := r.accounts.List(p.Context, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toUserView), nil
			}),
		},

		// --- Categories ---
		"categoryList": &graphql.Field{
			Type:        listOf(t.category),
			Description: "Every active category.",
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				categories, err := r.categories.ListActive(p.Context)
				if err != nil {
					return nil, err
				}

				return mapAll(categories, toCategoryView), nil
			}),
		},
		"category": &graphql.Field{
			Type: t.category,
			Args: idArg("id"),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				id, err := args(p.Args).id("id")
				if err != nil {
					return nil, err
				}
				category, err := r.categories.Get(p.Context, id)
				if err != nil {
					return nil, err
				}

				return toCategoryView(category), nil
			}),
		},

		// --- Businesses ---
		"business": &graphql.Field{
			Type: t.business,
			Args: idArg("id"),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				id, err := args(p.Args).id("id")
				if err != nil {
					return nil, err
				}
				business, err := r.businesses.Get(p.Context, id)
				if err != nil {
					return nil, err
				}

				return toBusinessView(business), nil
			}),
		},
		"businesses": &graphql.Field{
			Type: graphql.NewNonNull(t.businessConnection),
			Args: pageArgs,
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				page, err := args(p.Args).page()
				if err != nil {
					return nil, err
				}
				result, err := r.businesses.List(p.Context, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toBusinessView), nil
			}),
		},
		"businessesByOwner": &graphql.Field{
			Type: graphql.NewNonNull(t.businessConnection),
			Args: withPageArgs(idArg("ownerId")),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				ownerID, err := a.id("ownerId")
				if err != nil {
					return nil, err
				}
				page, err := a.page()
				if err != nil {
					return nil, err
				}
				result, err := r.businesses.ListByOwner(p.Context, ownerID, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toBusinessView), nil
			}),
		},
		"businessQRCode": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.String),
			Description: "PNG QR code of the storefront link, as a data URL.",
			Args:        idArg("id"),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				id, err := args(p.Args).id("id")
				if err != nil {
					return nil, err
				}
				png, err := r.businesses.StorefrontQRCode(p.Context, id)
				if err != nil {
					return nil, err
				}

				return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
			}),
		},

		// --- Items ---
		"item": &graphql.Field{
			Type: t.item,
			Args: idArg("id"),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				id, err := args(p.Args).id("id")
				if err != nil {
					return nil, err
				}
				item, err := r.items.Get(p.Context, id)
				if err != nil {
					return nil, err
				}

				return toItemView(item), nil
			}),
		},
		"items": &graphql.Field{
			Type: graphql.NewNonNull(t.itemConnection),
			Args: pageArgs,
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				page, err := args(p.Args).page()
				if err != nil {
					return nil, err
				}
				result, err := r.items.List(p.Context, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toItemView), nil
			}),
		},
		"itemsByBusiness": &graphql.Field{
			Type: graphql.NewNonNull(t.itemConnection),
			Args: withPageArgs(idArg("businessId")),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				businessID, err := a.id("businessId")
				if err != nil {
					return nil, err
				}
				page, err := a.page()
				if err != nil {
					return nil, err
				}
				result, err := r.items.ListByBusiness(p.Context, businessID, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toItemView), nil
			}),
		},
		"searchItems": &graphql.Field{
			Type: listOf(t.item),
			Args: withPageArgs(graphql.FieldConfigArgument{
				"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			}),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				page, err := a.page()
				if err != nil {
					return nil, err
				}
				items, err := r.items.Search(p.Context, a.str("query"), page)
				if err != nil {
					return nil, err
				}

				return mapAll(items, toItemView), nil
			}),
		},

		// --- Tags ---
		"searchByTags": &graphql.Field{
			Type: graphql.NewNonNull(t.tagSearch),
			Args: graphql.FieldConfigArgument{
				"tags": &graphql.ArgumentConfig{Type: listOf(graphql.String)},
				"kind": &graphql.ArgumentConfig{Type: t.tagKind, DefaultValue: string(usecase.TagKindItems)},
			},
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				result, err := r.tagging.SearchByTags(p.Context, a.strs("tags"), usecase.TagKind(a.str("kind")))
				if err != nil {
					return nil, err
				}

				view := &tagSearchView{}
				if result.Items != nil {
					view.Items = mapAll(result.Items, toItemView)
				}
				if result.Businesses != nil {
					view.Businesses = mapAll(result.Businesses, toBusinessView)
				}

				return view, nil
			}),
		},
		"popularTags": &graphql.Field{
			Type: listOf(t.tagCount),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
			},
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				return r.tagging.PopularTags(p.Context, args(p.Args).integer("limit"))
			}),
		},
		"suggestTags": &graphql.Field{
			Type: listOf(graphql.String),
			Args: graphql.FieldConfigArgument{
				"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				return r.tagging.SuggestTags(p.Context, args(p.Args).str("text")), nil
			}),
		},
		"businessTags": &graphql.Field{
			Type:        listOf(graphql.String),
			Description: "Tags derived from a business, merged with the given extra tags.",
			Args: graphql.FieldConfigArgument{
				"businessId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"tags":       &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
			},
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				businessID, err := a.id("businessId")
				if err != nil {
					return nil, err
				}

				return r.tagging.TagBusiness(p.Context, businessID, a.strs("tags"))
			}),
		},

		// --- Orders ---
		"order": &graphql.Field{
			Type: t.order,
			Args: idArg("id"),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				id, err := args(p.Args).id("id")
				if err != nil {
					return nil, err
				}
				order, err := r.orders.Get(p.Context, id)
				if err != nil {
					return nil, err
				}

				return toOrderView(order), nil
			}),
		},
		"orders": &graphql.Field{
			Type:        graphql.NewNonNull(t.orderConnection),
			Description: "Every order. Requires order:manage.",
			Args:        pageArgs,
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				page, err := args(p.Args).page()
				if err != nil {
					return nil, err
				}
				result, err := r.orders.ListAll(p.Context, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toOrderView), nil
			}),
		},
		"myOrders": &graphql.Field{
			Type: graphql.NewNonNull(t.orderConnection),
			Args: pageArgs,
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				page, err := args(p.Args).page()
				if err != nil {
					return nil, err
				}
				result, err := r.orders.ListMine(p.Context, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toOrderView), nil
			}),
		},
		"ordersByBusiness": &graphql.Field{
			Type: graphql.NewNonNull(t.orderConnection),
			Args: withPageArgs(idArg("businessId")),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				businessID, err := a.id("businessId")
				if err != nil {
					return nil, err
				}
				page, err := a.page()
				if err != nil {
					return nil, err
				}
				result, err := r.orders.ListByBusiness(p.Context, businessID, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toOrderView), nil
			}),
		},

		// --- Reviews ---
		"review": &graphql.Field{
			Type: t.review,
			Args: idArg("id"),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				id, err := args(p.Args).id("id")
				if err != nil {
					return nil, err
				}
				review, err := r.reviews.Get(p.Context, id)
				if err != nil {
					return nil, err
				}

				return toReviewView(review), nil
			}),
		},
		"reviews": &graphql.Field{
			Type: graphql.NewNonNull(t.reviewConnection),
			Args: pageArgs,
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				page, err := args(p.Args).page()
				if err != nil {
					return nil, err
				}
				result, err := r.reviews.List(p.Context, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toReviewView), nil
			}),
		},
		"reviewsByBusiness": &graphql.Field{
			Type: graphql.NewNonNull(t.reviewConnection),
			Args: withPageArgs(idArg("businessId")),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				businessID, err := a.id("businessId")
				if err != nil {
					return nil, err
				}
				page, err := a.page()
				if err != nil {
					return nil, err
				}
				result, err := r.reviews.ListByBusiness(p.Context, businessID, page)
				if err != nil {
					return nil, err
				}

				return newConnection(result, toReviewView), nil
			}),
		},
	}
}
