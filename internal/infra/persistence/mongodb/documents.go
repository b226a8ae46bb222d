package mongodb

import (
	"time"

	"market/internal/domain/entity"
	"market/internal/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base holds the fields shared by every document. It is exported so the bson
// codec inlines it. Identifiers are canonical UUID strings.
type Base struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func fromBase(b entity.Base) Base {
	return Base{ID: b.ID.String(), CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
}

// decoder collects the first parse failure while mapping a document back to an entity.
type decoder struct {
	err error
}

func (d *decoder) id(s string) uuid.UUID {
	if d.err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		d.err = errors.Wrapf(err, "invalid identifier %q", s)
	}

	return id
}

func (d *decoder) optionalID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id := d.id(*s)

	return &id
}

func (d *decoder) decimal(v primitive.Decimal128) decimal.Decimal {
	if d.err != nil {
		return decimal.Zero
	}
	dec, err := decimal.NewFromString(v.String())
	if err != nil {
		d.err = errors.Wrapf(err, "invalid decimal %q", v.String())
	}

	return dec
}

func (d *decoder) base(b Base) entity.Base {
	return entity.Base{ID: d.id(b.ID), CreatedAt: b.CreatedAt.UTC(), UpdatedAt: b.UpdatedAt.UTC()}
}

func optionalIDString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()

	return &s
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	// decimal.String never produces input ParseDecimal128 rejects within its range.
	v, _ := primitive.ParseDecimal128(d.String())

	return v
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}

type userDoc struct {
	Base              `bson:",inline"`
	Email             string   `bson:"email"`
	PasswordHash      string   `bson:"password_hash"`
	FullName          string   `bson:"full_name"`
	Phone             *string  `bson:"phone"`
	Role              string   `bson:"role"`
	CustomerCategory  *string  `bson:"customer_category"`
	AdminRole         *string  `bson:"admin_role"`
	SellerType        *string  `bson:"seller_type"`
	DeliveryAddresses []string `bson:"delivery_addresses"`
	IsActive          bool     `bson:"is_active"`
}

func fromUser(u *entity.User) *userDoc {
	return &userDoc{
		Base:              fromBase(u.Base),
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		FullName:          u.FullName,
		Phone:             u.Phone,
		Role:              string(u.Role),
		CustomerCategory:  (*string)(u.CustomerCategory),
		AdminRole:         (*string)(u.AdminRole),
		SellerType:        (*string)(u.SellerType),
		DeliveryAddresses: nonNil(u.DeliveryAddresses),
		IsActive:          u.IsActive,
	}
}

func (doc *userDoc) toEntity() (*entity.User, error) {
	var d decoder
	u := &entity.User{
		Base:              d.base(doc.Base),
		Email:             doc.Email,
		PasswordHash:      doc.PasswordHash,
		FullName:          doc.FullName,
		Phone:             doc.Phone,
		Role:              entity.Role(doc.Role),
		CustomerCategory:  (*entity.CustomerCategory)(doc.CustomerCategory),
		AdminRole:         (*entity.AdminRole)(doc.AdminRole),
		SellerType:        (*entity.SellerType)(doc.SellerType),
		DeliveryAddresses: nonNil(doc.DeliveryAddresses),
		IsActive:          doc.IsActive,
	}

	return u, d.err
}

type businessDoc struct {
	Base        `bson:",inline"`
	Name        string  `bson:"name"`
	Description *string `bson:"description"`
	Address     *string `bson:"address"`
	Phone       *string `bson:"phone"`
	Email       *string `bson:"email"`
	Website     *string `bson:"website"`
	IsActive    bool    `bson:"is_active"`
	OwnerID     string  `bson:"owner_id"`
}

func fromBusiness(b *entity.Business) *businessDoc {
	return &businessDoc{
		Base:        fromBase(b.Base),
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		Phone:       b.Phone,
		Email:       b.Email,
		Website:     b.Website,
		IsActive:    b.IsActive,
		OwnerID:     b.OwnerID.String(),
	}
}

func (doc *businessDoc) toEntity() (*entity.Business, error) {
	var d decoder
	b := &entity.Business{
		Base:        d.base(doc.Base),
		Name:        doc.Name,
		Description: doc.Description,
		Address:     doc.Address,
		Phone:       doc.Phone,
		Email:       doc.Email,
		Website:     doc.Website,
		IsActive:    doc.IsActive,
		OwnerID:     d.id(doc.OwnerID),
	}

	return b, d.err
}

type categoryDoc struct {
	Base             `bson:",inline"`
	Name             string  `bson:"name"`
	Description      *string `bson:"description"`
	ParentCategoryID *string `bson:"parent_category_id"`
	IsActive         bool    `bson:"is_active"`
	CreatedBy        string  `bson:"created_by"`
}

func fromCategory(c *entity.Category) *categoryDoc {
	return &categoryDoc{
		Base:             fromBase(c.Base),
		Name:             c.Name,
		Description:      c.Description,
		ParentCategoryID: optionalIDString(c.ParentCategoryID),
		IsActive:         c.IsActive,
		CreatedBy:        c.CreatedBy.String(),
	}
}

func (doc *categoryDoc) toEntity() (*entity.Category, error) {
	var d decoder
	c := &entity.Category{
		Base:             d.base(doc.Base),
		Name:             doc.Name,
		Description:      doc.Description,
		ParentCategoryID: d.optionalID(doc.ParentCategoryID),
		IsActive:         doc.IsActive,
		CreatedBy:        d.id(doc.CreatedBy),
	}

	return c, d.err
}

type itemDoc struct {
	Base            `bson:",inline"`
	Name            string               `bson:"name"`
	Description     *string              `bson:"description"`
	Type            string               `bson:"type"`
	CategoryID      *string              `bson:"category_id"`
	BusinessID      string               `bson:"business_id"`
	Price           primitive.Decimal128 `bson:"price"`
	StockQuantity   int                  `bson:"stock_quantity"`
	ServiceDuration *int                 `bson:"service_duration"`
	Images          []string             `bson:"images"`
	Tags            []string             `bson:"tags"`
	IsActive        bool                 `bson:"is_active"`
}

func fromItem(i *entity.Item) *itemDoc {
	return &itemDoc{
		Base:            fromBase(i.Base),
		Name:            i.Name,
		Description:     i.Description,
		Type:            string(i.Type),
		CategoryID:      optionalIDString(i.CategoryID),
		BusinessID:      i.BusinessID.String(),
		Price:           toDecimal128(i.Price),
		StockQuantity:   i.StockQuantity,
		ServiceDuration: i.ServiceDuration,
		Images:          nonNil(i.Images),
		Tags:            nonNil(i.Tags),
		IsActive:        i.IsActive,
	}
}

func (doc *itemDoc) toEntity() (*entity.Item, error) {
	var d decoder
	i := &entity.Item{
		Base:            d.base(doc.Base),
		Name:            doc.Name,
		Description:     doc.Description,
		Type:            entity.ItemType(doc.Type),
		CategoryID:      d.optionalID(doc.CategoryID),
		BusinessID:      d.id(doc.BusinessID),
		Price:           d.decimal(doc.Price),
		StockQuantity:   doc.StockQuantity,
		ServiceDuration: doc.ServiceDuration,
		Images:          nonNil(doc.Images),
		Tags:            nonNil(doc.Tags),
		IsActive:        doc.IsActive,
	}

	return i, d.err
}

type orderDoc struct {
	Base                `bson:",inline"`
	Status              string               `bson:"status"`
	TotalAmount         primitive.Decimal128 `bson:"total_amount"`
	CustomerID          string               `bson:"customer_id"`
	BusinessID          string               `bson:"business_id"`
	DeliveryAddress     *string              `bson:"delivery_address"`
	SpecialInstructions *string              `bson:"special_instructions"`
}

func fromOrder(o *entity.Order) *orderDoc {
	return &orderDoc{
		Base:                fromBase(o.Base),
		Status:              string(o.Status),
		TotalAmount:         toDecimal128(o.TotalAmount),
		CustomerID:          o.CustomerID.String(),
		BusinessID:          o.BusinessID.String(),
		DeliveryAddress:     o.DeliveryAddress,
		SpecialInstructions: o.SpecialInstructions,
	}
}

func (doc *orderDoc) toEntity() (*entity.Order, error) {
	var d decoder
	o := &entity.Order{
		Base:                d.base(doc.Base),
		Status:              entity.OrderStatus(doc.Status),
		TotalAmount:         d.decimal(doc.TotalAmount),
		CustomerID:          d.id(doc.CustomerID),
		BusinessID:          d.id(doc.BusinessID),
		DeliveryAddress:     doc.DeliveryAddress,
		SpecialInstructions: doc.SpecialInstructions,
	}

	return o, d.err
}

type orderItemDoc struct {
	Base     `bson:",inline"`
	OrderID  string               `bson:"order_id"`
	ItemID   string               `bson:"item_id"`
	Quantity int                  `bson:"quantity"`
	Price    primitive.Decimal128 `bson:"price"`
}

func fromOrderItem(oi *entity.OrderItem) *orderItemDoc {
	return &orderItemDoc{
		Base:     fromBase(oi.Base),
		OrderID:  oi.OrderID.String(),
		ItemID:   oi.ItemID.String(),
		Quantity: oi.Quantity,
		Price:    toDecimal128(oi.Price),
	}
}

func (doc *orderItemDoc) toEntity() (*entity.OrderItem, error) {
	var d decoder
	oi := &entity.OrderItem{
		Base:     d.base(doc.Base),
		OrderID:  d.id(doc.OrderID),
		ItemID:   d.id(doc.ItemID),
		Quantity: doc.Quantity,
		Price:    d.decimal(doc.Price),
	}

	return oi, d.err
}

type reviewDoc struct {
	Base       `bson:",inline"`
	UserID     string  `bson:"user_id"`
	BusinessID string  `bson:"business_id"`
	Rating     int     `bson:"rating"`
	Comment    *string `bson:"comment"`
}

func fromReview(r *entity.Review) *reviewDoc {
	return &reviewDoc{
		Base:       fromBase(r.Base),
		UserID:     r.UserID.String(),
		BusinessID: r.BusinessID.String(),
		Rating:     r.Rating,
		Comment:    r.Comment,
	}
}

func (doc *reviewDoc) toEntity() (*entity.Review, error) {
	var d decoder
	r := &entity.Review{
		Base:       d.base(doc.Base),
		UserID:     d.id(doc.UserID),
		BusinessID: d.id(doc.BusinessID),
		Rating:     doc.Rating,
		Comment:    doc.Comment,
	}

	return r, d.err
}

type tokenDoc struct {
	Base      `bson:",inline"`
	TokenHash string    `bson:"token_hash"`
	UserID    string    `bson:"user_id"`
	IsActive  bool      `bson:"is_active"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func fromToken(t *entity.Token) *tokenDoc {
	return &tokenDoc{
		Base:      fromBase(t.Base),
		TokenHash: t.TokenHash,
		UserID:    t.UserID.String(),
		IsActive:  t.IsActive,
		ExpiresAt: t.ExpiresAt,
	}
}

func (doc *tokenDoc) toEntity() (*entity.Token, error) {
	var d decoder
	t := &entity.Token{
		Base:      d.base(doc.Base),
		TokenHash: doc.TokenHash,
		UserID:    d.id(doc.UserID),
		IsActive:  doc.IsActive,
		ExpiresAt: doc.ExpiresAt.UTC(),
	}

	return t, d.err
}
