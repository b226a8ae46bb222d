// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the identity and timestamps shared by every stored record.
type Base struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewID returns a time-ordered identifier, falling back to a random one.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}

// Stamp assigns an identifier if missing and sets creation timestamps.
func (b *Base) Stamp(now time.Time) {
	if b.ID == uuid.Nil {
		b.ID = NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// User is an account of any role. Email is unique across all users.
type User struct {
	Base
	Email             string
	PasswordHash      string
	FullName          string
	Phone             *string
	Role              Role
	CustomerCategory  *CustomerCategory
	AdminRole         *AdminRole
	SellerType        *SellerType
	DeliveryAddresses []string
	IsActive          bool
}

// Permissions returns the capabilities granted by the user's role.
func (u *User) Permissions() Permissions {
	return PermissionsFor(u.Role, u.AdminRole)
}
