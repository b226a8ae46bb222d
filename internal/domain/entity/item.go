package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemType distinguishes physical goods from bookable services.
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// IsValid checks if the ItemType is a valid value.
func (t ItemType) IsValid() bool {
	return t == ItemTypeProduct || t == ItemTypeService
}

// Item is a product or service sold by a business.
// Price and StockQuantity are never negative.
type Item struct {
	Base
	Name            string
	Description     *string
	Type            ItemType
	CategoryID      *uuid.UUID
	BusinessID      uuid.UUID
	Price           decimal.Decimal
	StockQuantity   int
	ServiceDuration *int // minutes
	Images          []string
	Tags            []string
	IsActive        bool
}

// TracksStock reports whether ordering the item consumes stock.
func (i *Item) TracksStock() bool {
	return i.Type == ItemTypeProduct
}
