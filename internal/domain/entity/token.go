package entity

import (
	"time"

	"github.com/google/uuid"
)

// Token records an issued access token by its hash so it can be revoked.
type Token struct {
	Base
	TokenHash string
	UserID    uuid.UUID
	IsActive  bool
	ExpiresAt time.Time
}

// IsUsable reports whether the token is active and not yet expired at now.
func (t *Token) IsUsable(now time.Time) bool {
	return t.IsActive && now.Before(t.ExpiresAt)
}
