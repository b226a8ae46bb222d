package graph

import (
	"encoding/base64"
	"strconv"
	"strings"

	"market/internal/domain/entity"
	"market/internal/usecase"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/shopspring/decimal"
)

// Decimal carries money amounts as strings so no precision is lost in JSON.
var Decimal = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Decimal",
	Description: "An exact decimal number serialized as a string, e.g. \"12.50\".",
	Serialize: func(value any) any {
		switch v := value.(type) {
		case decimal.Decimal:
			return v.String()
		case *decimal.Decimal:
			if v == nil {
				return nil
			}

			return v.String()
		default:
			return nil
		}
	},
	ParseValue: func(value any) any {
		switch v := value.(type) {
		case string:
			return parseDecimal(v)
		case float64:
			return decimal.NewFromFloat(v)
		case int:
			return decimal.NewFromInt(int64(v))
		default:
			return nil
		}
	},
	ParseLiteral: func(valueAST ast.Value) any {
		switch v := valueAST.(type) {
		case *ast.StringValue:
			return parseDecimal(v.Value)
		case *ast.FloatValue:
			return parseDecimal(v.Value)
		case *ast.IntValue:
			return parseDecimal(v.Value)
		default:
			return nil
		}
	},
})

func parseDecimal(s string) any {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil
	}

	return d
}

func enumOf[T ~string](name, description string, values ...T) *graphql.Enum {
	config := graphql.EnumValueConfigMap{}
	for _, v := range values {
		config[strings.ToUpper(string(v))] = &graphql.EnumValueConfig{Value: string(v)}
	}

	return graphql.NewEnum(graphql.EnumConfig{
		Name:        name,
		Description: description,
		Values:      config,
	})
}

// --- Connections ---

const cursorPrefix = "offset:"

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, bool) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, false
	}
	offset, err := strconv.Atoi(strings.TrimPrefix(string(raw), cursorPrefix))
	if err != nil || !strings.HasPrefix(string(raw), cursorPrefix) || offset < 0 {
		return 0, false
	}

	return offset, true
}

type edge struct {
	Node   any
	Cursor string
}

type pageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     *string
	EndCursor       *string
}

type connection struct {
	Edges      []*edge
	PageInfo   *pageInfo
	TotalCount int
}

func newConnection[T, V any](page *usecase.PageResult[T], view func(*T) V) *connection {
	conn := &connection{
		Edges: make([]*edge, 0, len(page.Items)),
		PageInfo: &pageInfo{
			HasNextPage:     page.HasNext(),
			HasPreviousPage: page.HasPrevious(),
		},
		TotalCount: int(page.Total),
	}
	for i, item := range page.Items {
		conn.Edges = append(conn.Edges, &edge{Node: view(item), Cursor: encodeCursor(page.Offset + i)})
	}
	if n := len(conn.Edges); n > 0 {
		conn.PageInfo.StartCursor = &conn.Edges[0].Cursor
		conn.PageInfo.EndCursor = &conn.Edges[n-1].Cursor
	}

	return conn
}

// types holds every named type of one schema.
type types struct {
	role             *graphql.Enum
	adminRole        *graphql.Enum
	customerCategory *graphql.Enum
	sellerType       *graphql.Enum
	itemType         *graphql.Enum
	orderStatus      *graphql.Enum
	tagKind          *graphql.Enum

	pageInfo    *graphql.Object
	user        *graphql.Object
	authPayload *graphql.Object
	category    *graphql.Object
	business    *graphql.Object
	item        *graphql.Object
	orderLine   *graphql.Object
	order       *graphql.Object
	review      *graphql.Object
	tagCount    *graphql.Object
	tagSearch   *graphql.Object

	userConnection     *graphql.Object
	businessConnection *graphql.Object
	itemConnection     *graphql.Object
	orderConnection    *graphql.Object
	reviewConnection   *graphql.Object

	registerInput       *graphql.InputObject
	updateAccountInput  *graphql.InputObject
	createCategoryInput *graphql.InputObject
	updateCategoryInput *graphql.InputObject
	createBusinessInput *graphql.InputObject
	updateBusinessInput *graphql.InputObject
	createItemInput     *graphql.InputObject
	updateItemInput     *graphql.InputObject
	itemBulkUpdateInput *graphql.InputObject
	orderLineInput      *graphql.InputObject
	createOrderInput    *graphql.InputObject
	createReviewInput   *graphql.InputObject
}

func nonNull(t graphql.Type) graphql.Type {
	return graphql.NewNonNull(t)
}

func listOf(t graphql.Type) graphql.Type {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t)))
}

func timestamps(fields graphql.Fields) graphql.Fields {
	fields["createdAt"] = &graphql.Field{Type: nonNull(graphql.DateTime)}
	fields["updatedAt"] = &graphql.Field{Type: nonNull(graphql.DateTime)}

	return fields
}

func newTypes() *types {
	t := &types{
		role:      enumOf("Role", "Account role.", entity.RoleAdmin, entity.RoleSeller, entity.RoleCustomer),
		adminRole: enumOf("AdminRole", "Scope of an administrator.", entity.AdminRoleSuper, entity.AdminRoleCategoryManager, entity.AdminRoleUserManager, entity.AdminRoleOrderManager),
		customerCategory: enumOf("CustomerCategory", "What a customer mostly buys.",
			entity.CustomerCategoryFoodBuyer, entity.CustomerCategoryServiceSeeker, entity.CustomerCategoryGroceryBuyer, entity.CustomerCategoryGeneral),
		sellerType: enumOf("SellerType", "Kind of seller.",
			entity.SellerTypeRestaurant, entity.SellerTypeGroceryStore, entity.SellerTypeServiceProvider, entity.SellerTypeGeneral),
		itemType: enumOf("ItemType", "Product or bookable service.", entity.ItemTypeProduct, entity.ItemTypeService),
		orderStatus: enumOf("OrderStatus", "Order lifecycle state.",
			entity.OrderStatusPending, entity.OrderStatusConfirmed, entity.OrderStatusPreparing,
			entity.OrderStatusReady, entity.OrderStatusDelivered, entity.OrderStatusCancelled),
		tagKind: enumOf("TagKind", "Records scanned by a tag search.", usecase.TagKindItems, usecase.TagKindBusinesses),
	}

	t.pageInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage":     &graphql.Field{Type: nonNull(graphql.Boolean)},
			"hasPreviousPage": &graphql.Field{Type: nonNull(graphql.Boolean)},
			"startCursor":     &graphql.Field{Type: graphql.String},
			"endCursor":       &graphql.Field{Type: graphql.String},
		},
	})

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: timestamps(graphql.Fields{
			"id":                &graphql.Field{Type: nonNull(graphql.ID)},
			"email":             &graphql.Field{Type: nonNull(graphql.String)},
			"fullName":          &graphql.Field{Type: nonNull(graphql.String)},
			"phone":             &graphql.Field{Type: graphql.String},
			"role":              &graphql.Field{Type: nonNull(t.role)},
			"customerCategory":  &graphql.Field{Type: t.customerCategory},
			"adminRole":         &graphql.Field{Type: t.adminRole},
			"sellerType":        &graphql.Field{Type: t.sellerType},
			"deliveryAddresses": &graphql.Field{Type: listOf(graphql.String)},
			"permissions":       &graphql.Field{Type: listOf(graphql.String)},
			"isActive":          &graphql.Field{Type: nonNull(graphql.Boolean)},
		}),
	})

	t.authPayload = graphql.NewObject(graphql.ObjectConfig{
		Name:        "AuthPayload",
		Description: "Result of registration and login. Expected failures set success to false and carry a code.",
		Fields: graphql.Fields{
			"success":   &graphql.Field{Type: nonNull(graphql.Boolean)},
			"code":      &graphql.Field{Type: graphql.String},
			"message":   &graphql.Field{Type: nonNull(graphql.String)},
			"token":     &graphql.Field{Type: graphql.String},
			"expiresAt": &graphql.Field{Type: graphql.DateTime},
			"user":      &graphql.Field{Type: t.user},
		},
	})

	t.category = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: timestamps(graphql.Fields{
			"id":               &graphql.Field{Type: nonNull(graphql.ID)},
			"name":             &graphql.Field{Type: nonNull(graphql.String)},
			"description":      &graphql.Field{Type: graphql.String},
			"parentCategoryId": &graphql.Field{Type: graphql.ID},
			"isActive":         &graphql.Field{Type: nonNull(graphql.Boolean)},
			"createdBy":        &graphql.Field{Type: nonNull(graphql.ID)},
		}),
	})

	t.business = graphql.NewObject(graphql.ObjectConfig{
		Name: "Business",
		Fields: timestamps(graphql.Fields{
			"id":          &graphql.Field{Type: nonNull(graphql.ID)},
			"name":        &graphql.Field{Type: nonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.String},
			"address":     &graphql.Field{Type: graphql.String},
			"phone":       &graphql.Field{Type: graphql.String},
			"email":       &graphql.Field{Type: graphql.String},
			"website":     &graphql.Field{Type: graphql.String},
			"isActive":    &graphql.Field{Type: nonNull(graphql.Boolean)},
			"ownerId":     &graphql.Field{Type: nonNull(graphql.ID)},
		}),
	})

	t.item = graphql.NewObject(graphql.ObjectConfig{
		Name: "Item",
		Fields: timestamps(graphql.Fields{
			"id":              &graphql.Field{Type: nonNull(graphql.ID)},
			"name":            &graphql.Field{Type: nonNull(graphql.String)},
			"description":     &graphql.Field{Type: graphql.String},
			"type":            &graphql.Field{Type: nonNull(t.itemType)},
			"categoryId":      &graphql.Field{Type: graphql.ID},
			"businessId":      &graphql.Field{Type: nonNull(graphql.ID)},
			"price":           &graphql.Field{Type: nonNull(Decimal)},
			"stockQuantity":   &graphql.Field{Type: nonNull(graphql.Int)},
			"serviceDuration": &graphql.Field{Type: graphql.Int, Description: "Minutes, services only."},
			"images":          &graphql.Field{Type: listOf(graphql.String)},
			"tags":            &graphql.Field{Type: listOf(graphql.String)},
			"isActive":        &graphql.Field{Type: nonNull(graphql.Boolean)},
		}),
	})

	t.orderLine = graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderItem",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: nonNull(graphql.ID)},
			"itemId":   &graphql.Field{Type: nonNull(graphql.ID)},
			"quantity": &graphql.Field{Type: nonNull(graphql.Int)},
			"price":    &graphql.Field{Type: nonNull(Decimal), Description: "Unit price when the order was placed."},
			"subtotal": &graphql.Field{Type: nonNull(Decimal)},
		},
	})

	t.order = graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: timestamps(graphql.Fields{
			"id":                  &graphql.Field{Type: nonNull(graphql.ID)},
			"status":              &graphql.Field{Type: nonNull(t.orderStatus)},
			"totalAmount":         &graphql.Field{Type: nonNull(Decimal)},
			"customerId":          &graphql.Field{Type: nonNull(graphql.ID)},
			"businessId":          &graphql.Field{Type: nonNull(graphql.ID)},
			"deliveryAddress":     &graphql.Field{Type: graphql.String},
			"specialInstructions": &graphql.Field{Type: graphql.String},
			"items": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(t.orderLine)),
				Description: "Loaded when a single order is fetched or created.",
			},
		}),
	})

	t.review = graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: timestamps(graphql.Fields{
			"id":         &graphql.Field{Type: nonNull(graphql.ID)},
			"userId":     &graphql.Field{Type: nonNull(graphql.ID)},
			"businessId": &graphql.Field{Type: nonNull(graphql.ID)},
			"rating":     &graphql.Field{Type: nonNull(graphql.Int)},
			"comment":    &graphql.Field{Type: graphql.String},
		}),
	})

	t.tagCount = graphql.NewObject(graphql.ObjectConfig{
		Name: "TagCount",
		Fields: graphql.Fields{
			"tag":   &graphql.Field{Type: nonNull(graphql.String)},
			"count": &graphql.Field{Type: nonNull(graphql.Int)},
		},
	})

	t.tagSearch = graphql.NewObject(graphql.ObjectConfig{
		Name: "TagSearchResult",
		Fields: graphql.Fields{
			"items":      &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(t.item))},
			"businesses": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(t.business))},
		},
	})

	t.userConnection = t.connectionOf(t.user)
	t.businessConnection = t.connectionOf(t.business)
	t.itemConnection = t.connectionOf(t.item)
	t.orderConnection = t.connectionOf(t.order)
	t.reviewConnection = t.connectionOf(t.review)

	t.buildInputs()

	return t
}

func (t *types) connectionOf(node *graphql.Object) *graphql.Object {
	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: node.Name() + "Edge",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: nonNull(node)},
			"cursor": &graphql.Field{Type: nonNull(graphql.String)},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: node.Name() + "Connection",
		Fields: graphql.Fields{
			"edges":      &graphql.Field{Type: listOf(edgeType)},
			"pageInfo":   &graphql.Field{Type: nonNull(t.pageInfo)},
			"totalCount": &graphql.Field{Type: nonNull(graphql.Int)},
		},
	})
}

func (t *types) buildInputs() {
	input := func(name string, fields graphql.InputObjectConfigFieldMap) *graphql.InputObject {
		return graphql.NewInputObject(graphql.InputObjectConfig{Name: name, Fields: fields})
	}
	field := func(typ graphql.Input) *graphql.InputObjectFieldConfig {
		return &graphql.InputObjectFieldConfig{Type: typ}
	}
	stringList := graphql.NewList(graphql.NewNonNull(graphql.String))

	t.registerInput = input("RegisterInput", graphql.InputObjectConfigFieldMap{
		"email":             field(graphql.NewNonNull(graphql.String)),
		"password":          field(graphql.NewNonNull(graphql.String)),
		"fullName":          field(graphql.NewNonNull(graphql.String)),
		"phone":             field(graphql.String),
		"role":              field(graphql.NewNonNull(t.role)),
		"customerCategory":  field(t.customerCategory),
		"sellerType":        field(t.sellerType),
		"deliveryAddresses": field(stringList),
	})

	t.updateAccountInput = input("UpdateAccountInput", graphql.InputObjectConfigFieldMap{
		"email":             field(graphql.String),
		"password":          field(graphql.String),
		"fullName":          field(graphql.String),
		"phone":             field(graphql.String),
		"customerCategory":  field(t.customerCategory),
		"sellerType":        field(t.sellerType),
		"deliveryAddresses": field(stringList),
		"role":              field(t.role),
		"adminRole":         field(t.adminRole),
		"isActive":          field(graphql.Boolean),
	})

	t.createCategoryInput = input("CreateCategoryInput", graphql.InputObjectConfigFieldMap{
		"name":             field(graphql.NewNonNull(graphql.String)),
		"description":      field(graphql.String),
		"parentCategoryId": field(graphql.ID),
	})

	t.updateCategoryInput = input("UpdateCategoryInput", graphql.InputObjectConfigFieldMap{
		"name":             field(graphql.String),
		"description":      field(graphql.String),
		"parentCategoryId": field(graphql.ID),
		"clearParent":      field(graphql.Boolean),
		"isActive":         field(graphql.Boolean),
	})

	businessFields := func(nameType graphql.Input) graphql.InputObjectConfigFieldMap {
		return graphql.InputObjectConfigFieldMap{
			"name":        field(nameType),
			"description": field(graphql.String),
			"address":     field(graphql.String),
			"phone":       field(graphql.String),
			"email":       field(graphql.String),
			"website":     field(graphql.String),
		}
	}
	t.createBusinessInput = input("CreateBusinessInput", businessFields(graphql.NewNonNull(graphql.String)))
	update := businessFields(graphql.String)
	update["isActive"] = field(graphql.Boolean)
	t.updateBusinessInput = input("UpdateBusinessInput", update)

	t.createItemInput = input("CreateItemInput", graphql.InputObjectConfigFieldMap{
		"businessId":      field(graphql.NewNonNull(graphql.ID)),
		"name":            field(graphql.NewNonNull(graphql.String)),
		"description":     field(graphql.String),
		"type":            field(graphql.NewNonNull(t.itemType)),
		"categoryId":      field(graphql.ID),
		"price":           field(graphql.NewNonNull(Decimal)),
		"stockQuantity":   field(graphql.Int),
		"serviceDuration": field(graphql.Int),
		"images":          field(stringList),
		"tags":            field(stringList),
	})

	t.updateItemInput = input("UpdateItemInput", graphql.InputObjectConfigFieldMap{
		"name":            field(graphql.String),
		"description":     field(graphql.String),
		"type":            field(t.itemType),
		"categoryId":      field(graphql.ID),
		"price":           field(Decimal),
		"stockQuantity":   field(graphql.Int),
		"serviceDuration": field(graphql.Int),
		"images":          field(stringList),
		"tags":            field(stringList),
		"isActive":        field(graphql.Boolean),
	})

	t.itemBulkUpdateInput = input("ItemBulkUpdateInput", graphql.InputObjectConfigFieldMap{
		"id":    field(graphql.NewNonNull(graphql.ID)),
		"input": field(graphql.NewNonNull(t.updateItemInput)),
	})

	t.orderLineInput = input("OrderLineInput", graphql.InputObjectConfigFieldMap{
		"itemId":   field(graphql.NewNonNull(graphql.ID)),
		"quantity": field(graphql.NewNonNull(graphql.Int)),
	})

	t.createOrderInput = input("CreateOrderInput", graphql.InputObjectConfigFieldMap{
		"businessId":          field(graphql.NewNonNull(graphql.ID)),
		"items":               field(graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t.orderLineInput)))),
		"deliveryAddress":     field(graphql.String),
		"specialInstructions": field(graphql.String),
	})

	t.createReviewInput = input("CreateReviewInput", graphql.InputObjectConfigFieldMap{
		"businessId": field(graphql.NewNonNull(graphql.ID)),
		"rating":     field(graphql.NewNonNull(graphql.Int)),
		"comment":    field(graphql.String),
	})
}
