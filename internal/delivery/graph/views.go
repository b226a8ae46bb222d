package graph

import (
	"time"

	"market/internal/domain/entity"
	"market/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Views are flat copies of the entities in the shape the schema exposes.
// Field names match the camelCase schema fields case-insensitively so the
// default resolver can read them.

type userView struct {
	ID                string
	Email             string
	FullName          string
	Phone             *string
	Role              string
	CustomerCategory  *string
	AdminRole         *string
	SellerType        *string
	DeliveryAddresses []string
	Permissions       []string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type authPayloadView struct {
	Success   bool
	Code      *string
	Message   string
	Token     *string
	ExpiresAt *time.Time
	User      *userView
}

type categoryView struct {
	ID               string
	Name             string
	Description      *string
	ParentCategoryID *string
	IsActive         bool
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type businessView struct {
	ID          string
	Name        string
	Description *string
	Address     *string
	Phone       *string
	Email       *string
	Website     *string
	IsActive    bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type itemView struct {
	ID              string
	Name            string
	Description     *string
	Type            string
	CategoryID      *string
	BusinessID      string
	Price           decimal.Decimal
	StockQuantity   int
	ServiceDuration *int
	Images          []string
	Tags            []string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type orderLineView struct {
	ID       string
	ItemID   string
	Quantity int
	Price    decimal.Decimal
	Subtotal decimal.Decimal
}

type orderView struct {
	ID                  string
	Status              string
	TotalAmount         decimal.Decimal
	CustomerID          string
	BusinessID          string
	DeliveryAddress     *string
	SpecialInstructions *string
	Items               []*orderLineView
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type reviewView struct {
	ID         string
	UserID     string
	BusinessID string
	Rating     int
	Comment    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type tagSearchView struct {
	Items      []*itemView
	Businesses []*businessView
}

func optString[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)

	return &s
}

func optID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()

	return &s
}

func toUserView(u *entity.User) *userView {
	if u == nil {
		return nil
	}

	return &userView{
		ID:                u.ID.String(),
		Email:             u.Email,
		FullName:          u.FullName,
		Phone:             u.Phone,
		Role:              string(u.Role),
		CustomerCategory:  optString(u.CustomerCategory),
		AdminRole:         optString(u.AdminRole),
		SellerType:        optString(u.SellerType),
		DeliveryAddresses: nonNil(u.DeliveryAddresses),
		Permissions:       u.Permissions().ToStrings(),
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func toAuthPayloadView(p *usecase.AuthPayload) *authPayloadView {
	view := &authPayloadView{
		Success: p.Success,
		Message: p.Message,
		User:    toUserView(p.User),
	}
	if p.Code != "" {
		view.Code = &p.Code
	}
	if p.Token != "" {
		view.Token = &p.Token
		view.ExpiresAt = &p.ExpiresAt
	}

	return view
}

func toCategoryView(c *entity.Category) *categoryView {
	if c == nil {
		return nil
	}

	return &categoryView{
		ID:               c.ID.String(),
		Name:             c.Name,
		Description:      c.Description,
		ParentCategoryID: optID(c.ParentCategoryID),
		IsActive:         c.IsActive,
		CreatedBy:        c.CreatedBy.String(),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func toBusinessView(b *entity.Business) *businessView {
	if b == nil {
		return nil
	}

	return &businessView{
		ID:          b.ID.String(),
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		Phone:       b.Phone,
		Email:       b.Email,
		Website:     b.Website,
		IsActive:    b.IsActive,
		OwnerID:     b.OwnerID.String(),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toItemView(i *entity.Item) *itemView {
	if i == nil {
		return nil
	}

	return &itemView{
		ID:              i.ID.String(),
		Name:            i.Name,
		Description:     i.Description,
		Type:            string(i.Type),
		CategoryID:      optID(i.CategoryID),
		BusinessID:      i.BusinessID.String(),
		Price:           i.Price,
		StockQuantity:   i.StockQuantity,
		ServiceDuration: i.ServiceDuration,
		Images:          nonNil(i.Images),
		Tags:            nonNil(i.Tags),
		IsActive:        i.IsActive,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

func toOrderView(o *entity.Order) *orderView {
	if o == nil {
		return nil
	}

	view := &orderView{
		ID:                  o.ID.String(),
		Status:              string(o.Status),
		TotalAmount:         o.TotalAmount,
		CustomerID:          o.CustomerID.String(),
		BusinessID:          o.BusinessID.String(),
		DeliveryAddress:     o.DeliveryAddress,
		SpecialInstructions: o.SpecialInstructions,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	if o.Items != nil {
		view.Items = mapAll(o.Items, func(line *entity.OrderItem) *orderLineView {
			return &orderLineView{
				ID:       line.ID.String(),
				ItemID:   line.ItemID.String(),
				Quantity: line.Quantity,
				Price:    line.Price,
				Subtotal: line.Subtotal(),
			}
		})
	}

	return view
}

func toReviewView(r *entity.Review) *reviewView {
	if r == nil {
		return nil
	}

	return &reviewView{
		ID:         r.ID.String(),
		UserID:     r.UserID.String(),
		BusinessID: r.BusinessID.String(),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func mapAll[T, V any](in []*T, fn func(*T) V) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}

	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
