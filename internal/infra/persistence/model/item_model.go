package model

import (
	"market/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ItemModel mirrors the 'items' table. Images and tags are stored as JSON arrays.
type ItemModel struct {
	Base
	Name            string                      `gorm:"type:varchar(255);not null"`
	Description     *string                     `gorm:"type:text"`
	Type            string                      `gorm:"type:varchar(20);not null"`
	CategoryID      *uuid.UUID                  `gorm:"type:uuid;index"`
	BusinessID      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Price           decimal.Decimal             `gorm:"type:numeric(12,2);not null"`
	StockQuantity   int                         `gorm:"not null"`
	ServiceDuration *int
	Images          datatypes.JSONSlice[string] `gorm:"not null"`
	Tags            datatypes.JSONSlice[string] `gorm:"not null"`
	IsActive        bool                        `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (ItemModel) TableName() string {
	return "items"
}

func FromItem(i *entity.Item) *ItemModel {
	return &ItemModel{
		Base:            fromBase(i.Base),
		Name:            i.Name,
		Description:     i.Description,
		Type:            string(i.Type),
		CategoryID:      i.CategoryID,
		BusinessID:      i.BusinessID,
		Price:           i.Price,
		StockQuantity:   i.StockQuantity,
		ServiceDuration: i.ServiceDuration,
		Images:          jsonStrings(i.Images),
		Tags:            jsonStrings(i.Tags),
		IsActive:        i.IsActive,
	}
}

func (m *ItemModel) ToEntity() *entity.Item {
	return &entity.Item{
		Base:            m.Base.toEntity(),
		Name:            m.Name,
		Description:     m.Description,
		Type:            entity.ItemType(m.Type),
		CategoryID:      m.CategoryID,
		BusinessID:      m.BusinessID,
		Price:           m.Price,
		StockQuantity:   m.StockQuantity,
		ServiceDuration: m.ServiceDuration,
		Images:          plainStrings(m.Images),
		Tags:            plainStrings(m.Tags),
		IsActive:        m.IsActive,
	}
}
