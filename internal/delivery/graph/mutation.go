package graph

import (
	"market/internal/domain/entity"
	"market/internal/usecase"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
)

func inputArg(t *graphql.InputObject) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)}}
}

func idAndInputArgs(idName string, t *graphql.InputObject) graphql.FieldConfigArgument {
	a := inputArg(t)
	a[idName] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}

	return a
}

// deleteField builds a mutation that removes a record by id and reports
// whether it existed.
func (r *Resolver) deleteField(idName string, del func(p graphql.ResolveParams, a args) (bool, error)) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Args: idArg(idName),
		Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
			return del(p, args(p.Args))
		}),
	}
}

func updateItemInput(in args) (*usecase.UpdateItemInput, error) {
	categoryID, err := in.optID("categoryId")
	if err != nil {
		return nil, err
	}
	price, err := in.decimal("price")
	if err != nil {
		return nil, err
	}

	return &usecase.UpdateItemInput{
		Name:            in.optStr("name"),
		Description:     in.optStr("description"),
		Type:            enumPtr[entity.ItemType](in, "type"),
		CategoryID:      categoryID,
		Price:           price,
		StockQuantity:   in.optInt("stockQuantity"),
		ServiceDuration: in.optInt("serviceDuration"),
		Images:          in.strs("images"),
		Tags:            in.strs("tags"),
		IsActive:        in.optBool("isActive"),
	}, nil
}

func (r *Resolver) mutationFields(t *types) graphql.Fields {
	return graphql.Fields{
		// --- Accounts ---
		"accountRegister": &graphql.Field{
			Type: graphql.NewNonNull(t.authPayload),
			Args: inputArg(t.registerInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				in := args(p.Args).object("input")
				payload, err := r.accounts.Register(p.Context, &usecase.RegisterInput{
					Email:             in.str("email"),
					Password:          in.str("password"),
					FullName:          in.str("fullName"),
					Phone:             in.optStr("phone"),
					Role:              entity.Role(in.str("role")),
					CustomerCategory:  enumPtr[entity.CustomerCategory](in, "customerCategory"),
					SellerType:        enumPtr[entity.SellerType](in, "sellerType"),
					DeliveryAddresses: in.strs("deliveryAddresses"),
				})
				if err != nil {
					return nil, err
				}

				return toAuthPayloadView(payload), nil
			}),
		},
		"accountLogin": &graphql.Field{
			Type: graphql.NewNonNull(t.authPayload),
			Args: graphql.FieldConfigArgument{
				"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				payload, err := r.accounts.Login(p.Context, &usecase.LoginInput{
					Email:    a.str("email"),
					Password: a.str("password"),
				})
				if err != nil {
					return nil, err
				}

				return toAuthPayloadView(payload), nil
			}),
		},
		"accountLogout": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.Boolean),
			Description: "Revokes the credential used for this request.",
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				return r.accounts.Logout(p.Context)
			}),
		},
		"accountUpdate": &graphql.Field{
			Type: graphql.NewNonNull(t.user),
			Args: idAndInputArgs("userId", t.updateAccountInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				id, err := a.id("userId")
				if err != nil {
					return nil, err
				}
				in := a.object("input")
				user, err := r.accounts.Update(p.Context, id, &usecase.UpdateAccountInput{
					Email:             in.optStr("email"),
					Password:          in.optStr("password"),
					FullName:          in.optStr("fullName"),
					Phone:             in.optStr("phone"),
					CustomerCategory:  enumPtr[entity.CustomerCategory](in, "customerCategory"),
					SellerType:        enumPtr[entity.SellerType](in, "sellerType"),
					DeliveryAddresses: in.strs("deliveryAddresses"),
					Role:              enumPtr[entity.Role](in, "role"),
					AdminRole:         enumPtr[entity.AdminRole](in, "adminRole"),
					IsActive:          in.optBool("isActive"),
				})
				if err != nil {
					return nil, err
				}

				return toUserView(user), nil
			}),
		},
		"accountDelete": r.deleteField("userId", func(p graphql.ResolveParams, a args) (bool, error) {
			id, err := a.id("userId")
			if err != nil {
				return false, err
			}

			return r.accounts.Delete(p.Context, id)
		}),

		// --- Categories ---
		"categoryCreate": &graphql.Field{
			Type: graphql.NewNonNull(t.category),
			Args: inputArg(t.createCategoryInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				in := args(p.Args).object("input")
				parentID, err := in.optID("parentCategoryId")
				if err != nil {
					return nil, err
				}
				category, err := r.categories.Create(p.Context, &usecase.CreateCategoryInput{
					Name:             in.str("name"),
					Description:      in.optStr("description"),
					ParentCategoryID: parentID,
				})
				if err != nil {
					return nil, err
				}

				return toCategoryView(category), nil
			}),
		},
		"categoryUpdate": &graphql.Field{
			Type: graphql.NewNonNull(t.category),
			Args: idAndInputArgs("id", t.updateCategoryInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				id, err := a.id("id")
				if err != nil {
					return nil, err
				}
				in := a.object("input")
				parentID, err := in.optID("parentCategoryId")
				if err != nil {
					return nil, err
				}
				clearParent := in.optBool("clearParent")
				category, err := r.categories.Update(p.Context, id, &usecase.UpdateCategoryInput{
					Name:             in.optStr("name"),
					Description:      in.optStr("description"),
					ParentCategoryID: parentID,
					ClearParent:      clearParent != nil && *clearParent,
					IsActive:         in.optBool("isActive"),
				})
				if err != nil {
					return nil, err
				}

				return toCategoryView(category), nil
			}),
		},
		"categoryDelete": r.deleteField("id", func(p graphql.ResolveParams, a args) (bool, error) {
			id, err := a.id("id")
			if err != nil {
				return false, err
			}

			return r.categories.Delete(p.Context, id)
		}),

		// --- Businesses ---
		"businessCreate": &graphql.Field{
			Type: graphql.NewNonNull(t.business),
			Args: inputArg(t.createBusinessInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				in := args(p.Args).object("input")
				business, err := r.businesses.Create(p.Context, &usecase.CreateBusinessInput{
					Name:        in.str("name"),
					Description: in.optStr("description"),
					Address:     in.optStr("address"),
					Phone:       in.optStr("phone"),
					Email:       in.optStr("email"),
					Website:     in.optStr("website"),
				})
				if err != nil {
					return nil, err
				}

				return toBusinessView(business), nil
			}),
		},
		"businessUpdate": &graphql.Field{
			Type: graphql.NewNonNull(t.business),
			Args: idAndInputArgs("id", t.updateBusinessInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				id, err := a.id("id")
				if err != nil {
					return nil, err
				}
				in := a.object("input")
				business, err := r.businesses.Update(p.Context, id, &usecase.UpdateBusinessInput{
					Name:        in.optStr("name"),
					Description: in.optStr("description"),
					Address:     in.optStr("address"),
					Phone:       in.optStr("phone"),
					Email:       in.optStr("email"),
					Website:     in.optStr("website"),
					IsActive:    in.optBool("isActive"),
				})
				if err != nil {
					return nil, err
				}

				return toBusinessView(business), nil
			}),
		},
		"businessDelete": r.deleteField("id", func(p graphql.ResolveParams, a args) (bool, error) {
			id, err := a.id("id")
			if err != nil {
				return false, err
			}

			return r.businesses.Delete(p.Context, id)
		}),

		// --- Items ---
		"itemCreate": &graphql.Field{
			Type: graphql.NewNonNull(t.item),
			Args: inputArg(t.createItemInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				in := args(p.Args).object("input")
				businessID, err := in.id("businessId")
				if err != nil {
					return nil, err
				}
				categoryID, err := in.optID("categoryId")
				if err != nil {
					return nil, err
				}
				price, err := in.decimal("price")
				if err != nil {
					return nil, err
				}
				if price == nil {
					price = &decimal.Zero
				}
				item, err := r.items.Create(p.Context, &usecase.CreateItemInput{
					BusinessID:      businessID,
					Name:            in.str("name"),
					Description:     in.optStr("description"),
					Type:            entity.ItemType(in.str("type")),
					CategoryID:      categoryID,
					Price:           *price,
					StockQuantity:   in.integer("stockQuantity"),
					ServiceDuration: in.optInt("serviceDuration"),
					Images:          in.strs("images"),
					Tags:            in.strs("tags"),
				})
				if err != nil {
					return nil, err
				}

				return toItemView(item), nil
			}),
		},
		"itemUpdate": &graphql.Field{
			Type: graphql.NewNonNull(t.item),
			Args: idAndInputArgs("id", t.updateItemInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				id, err := a.id("id")
				if err != nil {
					return nil, err
				}
				input, err := updateItemInput(a.object("input"))
				if err != nil {
					return nil, err
				}
				item, err := r.items.Update(p.Context, id, input)
				if err != nil {
					return nil, err
				}

				return toItemView(item), nil
			}),
		},
		"itemBulkUpdate": &graphql.Field{
			Type:        listOf(t.item),
			Description: "Updates several items of one business. Either all updates apply or none.",
			Args: graphql.FieldConfigArgument{
				"businessId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"updates":    &graphql.ArgumentConfig{Type: listOf(t.itemBulkUpdateInput)},
			},
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				businessID, err := a.id("businessId")
				if err != nil {
					return nil, err
				}
				entries := a.objects("updates")
				updates := make([]usecase.ItemBulkUpdate, 0, len(entries))
				for _, entry := range entries {
					id, err := entry.id("id")
					if err != nil {
						return nil, err
					}
					input, err := updateItemInput(entry.object("input"))
					if err != nil {
						return nil, err
					}
					updates = append(updates, usecase.ItemBulkUpdate{ID: id, Input: input})
				}
				items, err := r.items.BulkUpdate(p.Context, businessID, updates)
				if err != nil {
					return nil, err
				}

				return mapAll(items, toItemView), nil
			}),
		},
		"itemDelete": r.deleteField("id", func(p graphql.ResolveParams, a args) (bool, error) {
			id, err := a.id("id")
			if err != nil {
				return false, err
			}

			return r.items.Delete(p.Context, id)
		}),
		"itemTag": &graphql.Field{
			Type:        graphql.NewNonNull(t.item),
			Description: "Recomputes the stored tags of an item, adding the given extra tags.",
			Args: graphql.FieldConfigArgument{
				"itemId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"tags":   &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
			},
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				itemID, err := a.id("itemId")
				if err != nil {
					return nil, err
				}
				item, err := r.tagging.TagItem(p.Context, itemID, a.strs("tags"))
				if err != nil {
					return nil, err
				}

				return toItemView(item), nil
			}),
		},

		// --- Orders ---
		"orderCreate": &graphql.Field{
			Type: graphql.NewNonNull(t.order),
			Args: inputArg(t.createOrderInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				in := args(p.Args).object("input")
				businessID, err := in.id("businessId")
				if err != nil {
					return nil, err
				}
				lineArgs := in.objects("items")
				lines := make([]usecase.OrderLineInput, 0, len(lineArgs))
				for _, line := range lineArgs {
					itemID, err := line.id("itemId")
					if err != nil {
						return nil, err
					}
					lines = append(lines, usecase.OrderLineInput{ItemID: itemID, Quantity: line.integer("quantity")})
				}
				order, err := r.orders.Create(p.Context, &usecase.CreateOrderInput{
					BusinessID:          businessID,
					Lines:               lines,
					DeliveryAddress:     in.optStr("deliveryAddress"),
					SpecialInstructions: in.optStr("specialInstructions"),
				})
				if err != nil {
					return nil, err
				}

				return toOrderView(order), nil
			}),
		},
		"orderUpdateStatus": &graphql.Field{
			Type: graphql.NewNonNull(t.order),
			Args: graphql.FieldConfigArgument{
				"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(t.orderStatus)},
			},
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				a := args(p.Args)
				id, err := a.id("id")
				if err != nil {
					return nil, err
				}
				order, err := r.orders.UpdateStatus(p.Context, id, entity.OrderStatus(a.str("status")))
				if err != nil {
					return nil, err
				}

				return toOrderView(order), nil
			}),
		},

		// --- Reviews ---
		"reviewCreate": &graphql.Field{
			Type: graphql.NewNonNull(t.review),
			Args: inputArg(t.createReviewInput),
			Resolve: r.wrap(func(p graphql.ResolveParams) (any, error) {
				in := args(p.Args).object("input")
				businessID, err := in.id("businessId")
				if err != nil {
					return nil, err
				}
				review, err := r.reviews.Create(p.Context, &usecase.CreateReviewInput{
					BusinessID: businessID,
					Rating:     in.integer("rating"),
					Comment:    in.optStr("comment"),
				})
				if err != nil {
					return nil, err
				}

				return toReviewView(review), nil
			}),
		},
		"reviewDelete": r.deleteField("id", func(p graphql.ResolveParams, a args) (bool, error) {
			id, err := a.id("id")
			if err != nil {
				return false, err
			}

			return r.reviews.Delete(p.Context, id)
		}),
	}
}
