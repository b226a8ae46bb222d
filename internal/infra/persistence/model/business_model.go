package model

import (
	"market/internal/domain/entity"

	"github.com/google/uuid"
)

// BusinessModel mirrors the 'businesses' table.
type BusinessModel struct {
	Base
	Name        string    `gorm:"type:varchar(255);not null"`
	Description *string   `gorm:"type:text"`
	Address     *string   `gorm:"type:text"`
	Phone       *string   `gorm:"type:varchar(50)"`
	Email       *string   `gorm:"type:varchar(255)"`
	Website     *string   `gorm:"type:varchar(255)"`
	IsActive    bool      `gorm:"not null"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (BusinessModel) TableName() string {
	return "businesses"
}

func FromBusiness(b *entity.Business) *BusinessModel {
	return &BusinessModel{
		Base:        fromBase(b.Base),
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		Phone:       b.Phone,
		Email:       b.Email,
		Website:     b.Website,
		IsActive:    b.IsActive,
		OwnerID:     b.OwnerID,
	}
}

func (m *BusinessModel) ToEntity() *entity.Business {
	return &entity.Business{
		Base:        m.Base.toEntity(),
		Name:        m.Name,
		Description: m.Description,
		Address:     m.Address,
		Phone:       m.Phone,
		Email:       m.Email,
		Website:     m.Website,
		IsActive:    m.IsActive,
		OwnerID:     m.OwnerID,
	}
}

// CategoryModel mirrors the 'categories' table. Parents form a tree.
type CategoryModel struct {
	Base
	Name             string     `gorm:"type:varchar(255);not null"`
	Description      *string    `gorm:"type:text"`
	ParentCategoryID *uuid.UUID `gorm:"type:uuid;index"`
	IsActive         bool       `gorm:"not null"`
	CreatedBy        uuid.UUID  `gorm:"type:uuid;not null"`
}

// TableName explicitly sets the table name for GORM.
func (CategoryModel) TableName() string {
	return "categories"
}

func FromCategory(c *entity.Category) *CategoryModel {
	return &CategoryModel{
		Base:             fromBase(c.Base),
		Name:             c.Name,
		Description:      c.Description,
		ParentCategoryID: c.ParentCategoryID,
		IsActive:         c.IsActive,
		CreatedBy:        c.CreatedBy,
	}
}

func (m *CategoryModel) ToEntity() *entity.Category {
	return &entity.Category{
		Base:             m.Base.toEntity(),
		Name:             m.Name,
		Description:      m.Description,
		ParentCategoryID: m.ParentCategoryID,
		IsActive:         m.IsActive,
		CreatedBy:        m.CreatedBy,
	}
}

// ReviewModel mirrors the 'reviews' table.
type ReviewModel struct {
	Base
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
	Rating     int       `gorm:"not null"`
	Comment    *string   `gorm:"type:text"`
}

// TableName explicitly sets the table name for GORM.
func (ReviewModel) TableName() string {
	return "reviews"
}

func FromReview(r *entity.Review) *ReviewModel {
	return &ReviewModel{
		Base:       fromBase(r.Base),
		UserID:     r.UserID,
		BusinessID: r.BusinessID,
		Rating:     r.Rating,
		Comment:    r.Comment,
	}
}

func (m *ReviewModel) ToEntity() *entity.Review {
	return &entity.Review{
		Base:       m.Base.toEntity(),
		UserID:     m.UserID,
		BusinessID: m.BusinessID,
		Rating:     m.Rating,
		Comment:    m.Comment,
	}
}
