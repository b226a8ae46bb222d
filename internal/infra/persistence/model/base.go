// Package model holds the GORM persistence models and their mapping to domain entities.
package model

import (
	"time"

	"market/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Base carries the identifier and timestamps shared by every table.
// Identifiers are assigned by the application, never by the database.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

func fromBase(b entity.Base) Base {
	return Base{ID: b.ID, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
}

func (b Base) toEntity() entity.Base {
	return entity.Base{ID: b.ID, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
}

func jsonStrings(values []string) datatypes.JSONSlice[string] {
	if values == nil {
		return datatypes.JSONSlice[string]{}
	}

	return datatypes.JSONSlice[string](values)
}

func plainStrings(values datatypes.JSONSlice[string]) []string {
	if values == nil {
		return []string{}
	}

	return []string(values)
}
