package model

import (
	"market/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel mirrors the 'orders' table. Line items live in 'order_items'.
type OrderModel struct {
	Base
	Status              string          `gorm:"type:varchar(20);not null;index"`
	TotalAmount         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CustomerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	BusinessID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeliveryAddress     *string         `gorm:"type:text"`
	SpecialInstructions *string         `gorm:"type:text"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

func FromOrder(o *entity.Order) *OrderModel {
	return &OrderModel{
		Base:                fromBase(o.Base),
		Status:              string(o.Status),
		TotalAmount:         o.TotalAmount,
		CustomerID:          o.CustomerID,
		BusinessID:          o.BusinessID,
		DeliveryAddress:     o.DeliveryAddress,
		SpecialInstructions: o.SpecialInstructions,
	}
}

func (m *OrderModel) ToEntity() *entity.Order {
	return &entity.Order{
		Base:                m.Base.toEntity(),
		Status:              entity.OrderStatus(m.Status),
		TotalAmount:         m.TotalAmount,
		CustomerID:          m.CustomerID,
		BusinessID:          m.BusinessID,
		DeliveryAddress:     m.DeliveryAddress,
		SpecialInstructions: m.SpecialInstructions,
	}
}

// OrderItemModel mirrors the 'order_items' table. Price is the unit price at purchase time.
type OrderItemModel struct {
	Base
	OrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity int             `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName explicitly sets the table name for GORM.
func (OrderItemModel) TableName() string {
	return "order_items"
}

func FromOrderItem(oi *entity.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		Base:     fromBase(oi.Base),
		OrderID:  oi.OrderID,
		ItemID:   oi.ItemID,
		Quantity: oi.Quantity,
		Price:    oi.Price,
	}
}

func (m *OrderItemModel) ToEntity() *entity.OrderItem {
	return &entity.OrderItem{
		Base:     m.Base.toEntity(),
		OrderID:  m.OrderID,
		ItemID:   m.ItemID,
		Quantity: m.Quantity,
		Price:    m.Price,
	}
}

// All lists every model, in dependency order, for schema creation in tests.
func All() []any {
	return []any{
		&UserModel{}, &TokenModel{}, &CategoryModel{}, &BusinessModel{},
		&ItemModel{}, &OrderModel{}, &OrderItemModel{}, &ReviewModel{},
	}
}
