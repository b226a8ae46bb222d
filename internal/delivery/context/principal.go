package context

import (
	"context"
	"slices"

	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"

	"github.com/google/uuid"
)

// Principal is the identity resolved from a request's bearer token. The zero
// value is the anonymous principal. It cannot be changed once built.
type Principal struct {
	userID      uuid.UUID
	role        entity.Role
	permissions entity.Permissions
	tokenHash   string
}

// NewPrincipal builds an authenticated principal. tokenHash identifies the
// credential the request was made with so it can be revoked.
func NewPrincipal(userID uuid.UUID, role entity.Role, permissions entity.Permissions, tokenHash string) Principal {
	return Principal{
		userID:      userID,
		role:        role,
		permissions: slices.Clone(permissions),
		tokenHash:   tokenHash,
	}
}

// IsAuthenticated reports whether the request carried a valid credential.
func (p Principal) IsAuthenticated() bool {
	return p.userID != uuid.Nil
}

// CurrentUserID returns the caller's user id; ok is false for anonymous callers.
func (p Principal) CurrentUserID() (id uuid.UUID, ok bool) {
	return p.userID, p.IsAuthenticated()
}

// Role returns the caller's role, empty when anonymous.
func (p Principal) Role() entity.Role {
	return p.role
}

// TokenHash returns the digest of the credential in use.
func (p Principal) TokenHash() string {
	return p.tokenHash
}

func (p Principal) HasRole(role entity.Role) bool {
	return p.IsAuthenticated() && p.role == role
}

func (p Principal) HasPermission(perm entity.Permission) bool {
	return p.IsAuthenticated() && p.permissions.Contains(perm)
}

// Permissions returns a copy of the granted permissions.
func (p Principal) Permissions() entity.Permissions {
	return slices.Clone(p.permissions)
}

// RequireAuthenticated fails with ErrAuthenticationRequired for anonymous callers.
func (p Principal) RequireAuthenticated() (uuid.UUID, error) {
	if !p.IsAuthenticated() {
		return uuid.Nil, domainerrors.ErrAuthenticationRequired
	}

	return p.userID, nil
}

// RequirePermission fails with ErrAuthenticationRequired for anonymous
// callers and ErrAuthorizationDenied when perm was not granted.
func (p Principal) RequirePermission(perm entity.Permission) (uuid.UUID, error) {
	if !p.IsAuthenticated() {
		return uuid.Nil, domainerrors.ErrAuthenticationRequired
	}
	if !p.permissions.Contains(perm) {
		return uuid.Nil, domainerrors.ErrAuthorizationDenied.WithDetails("missing permission " + string(perm))
	}

	return p.userID, nil
}

// WithPrincipal returns a new context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, KeyPrincipal, p)
}

// PrincipalFromContext returns the principal of the request, anonymous when unset.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(KeyPrincipal).(Principal)

	return p
}
