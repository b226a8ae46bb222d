package entity

import "github.com/google/uuid"

// Business is a storefront owned by a seller account.
type Business struct {
	Base
	Name        string
	Description *string
	Address     *string
	Phone       *string
	Email       *string
	Website     *string
	IsActive    bool
	OwnerID     uuid.UUID
}

// Category groups items. Categories form a tree through ParentCategoryID.
type Category struct {
	Base
	Name             string
	Description      *string
	ParentCategoryID *uuid.UUID
	IsActive         bool
	CreatedBy        uuid.UUID
}

// Review is a rating left by a user for a business.
type Review struct {
	Base
	UserID     uuid.UUID
	BusinessID uuid.UUID
	Rating     int
	Comment    *string
}

const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is inside the accepted rating scale.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
