package model

import (
	"time"

	"market/internal/domain/entity"

	"github.com/google/uuid"
)

// TokenModel mirrors the 'tokens' table. Only the hash of an issued token is stored.
type TokenModel struct {
	Base
	TokenHash string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	IsActive  bool      `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (TokenModel) TableName() string {
	return "tokens"
}

// FromToken maps a domain token onto its row.
func FromToken(t *entity.Token) *TokenModel {
	return &TokenModel{
		Base:      fromBase(t.Base),
		TokenHash: t.TokenHash,
		UserID:    t.UserID,
		IsActive:  t.IsActive,
		ExpiresAt: t.ExpiresAt,
	}
}

// ToEntity maps the row back to a domain token.
func (m *TokenModel) ToEntity() *entity.Token {
	return &entity.Token{
		Base:      m.Base.toEntity(),
		TokenHash: m.TokenHash,
		UserID:    m.UserID,
		IsActive:  m.IsActive,
		ExpiresAt: m.ExpiresAt,
	}
}
