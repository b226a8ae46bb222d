package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/domain/service"
	"market/internal/errors"
	"market/internal/infra/auth"
	"market/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountService(t *testing.T, f *fixture) usecase.AccountUsecase {
	t.Helper()

	tokens, err := auth.NewJWTService(f.cfg)
	require.NoError(t, err)

	return NewAccountService(AccountServiceParams{
		Store:        f.store,
		Hasher:       auth.NewBcryptHasher(f.cfg),
		TokenService: tokens,
		Mailer:       f.mailer,
		Config:       f.cfg,
		Logger:       f.logger,
	})
}

func registerInput(email string) *usecase.RegisterInput {
	return &usecase.RegisterInput{
		Email:    email,
		Password: "secret123",
		FullName: "Ada Buyer",
		Role:     entity.RoleCustomer,
	}
}

func TestAccountService_Register(t *testing.T) {
	f := newFixture(t)
	srv := newAccountService(t, f)
	ctx := context.Background()

	payload, err := srv.Register(ctx, registerInput("Ada@Example.com"))
	require.NoError(t, err)
	require.True(t, payload.Success, payload.Message)
	assert.NotEmpty(t, payload.Token)
	assert.True(t, payload.ExpiresAt.After(time.Now()))
	require.NotNil(t, payload.User)
	assert.Equal(t, "ada@example.com", payload.User.Email)
	assert.Equal(t, entity.RoleCustomer, payload.User.Role)
	assert.NotEqual(t, "secret123", payload.User.PasswordHash)

	tokens, err := f.store.Tokens().FilterBy(ctx, repository.Fields{"user_id": payload.User.ID})
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.True(t, tokens[0].IsActive)

	assert.Eventually(t, func() bool { return len(f.mailer.Messages()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"ada@example.com"}, f.mailer.Messages()[0].To)
}

func TestAccountService_Register_Failures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(in *usecase.RegisterInput)
		wantCode string
	}{
		{
			name:     "invalid email",
			mutate:   func(in *usecase.RegisterInput) { in.Email = "not-an-email" },
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "short password",
			mutate:   func(in *usecase.RegisterInput) { in.Password = "ab" },
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "admin self registration",
			mutate:   func(in *usecase.RegisterInput) { in.Role = entity.RoleAdmin },
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "duplicate email",
			mutate:   func(in *usecase.RegisterInput) { in.Email = "TAKEN@example.com" },
			wantCode: "DUPLICATE_RESOURCE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			srv := newAccountService(t, f)
			ctx := context.Background()

			first, err := srv.Register(ctx, registerInput("taken@example.com"))
			require.NoError(t, err)
			require.True(t, first.Success)

			in := registerInput("fresh@example.com")
			tt.mutate(in)

			payload, err := srv.Register(ctx, in)
			require.NoError(t, err)
			assert.False(t, payload.Success)
			assert.Equal(t, tt.wantCode, payload.Code)
			assert.Empty(t, payload.Token)

			count, err := f.store.Users().Count(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 1, count)
		})
	}
}

func TestAccountService_Login(t *testing.T) {
	f := newFixture(t)
	srv := newAccountService(t, f)
	ctx := context.Background()

	registered, err := srv.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)
	require.True(t, registered.Success)

	payload, err := srv.Login(ctx, &usecase.LoginInput{Email: "ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, payload.Success)
	assert.NotEmpty(t, payload.Token)
	assert.NotEqual(t, registered.Token, payload.Token)
}

func TestAccountService_Login_FailsUniformly(t *testing.T) {
	f := newFixture(t)
	srv := newAccountService(t, f)
	ctx := context.Background()

	registered, err := srv.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)
	require.True(t, registered.Success)
	inactive, err := srv.Register(ctx, registerInput("gone@example.com"))
	require.NoError(t, err)
	_, err = f.store.Users().Update(ctx, inactive.User.ID, repository.Fields{"is_active": false})
	require.NoError(t, err)

	attempts := map[string]*usecase.LoginInput{
		"wrong password": {Email: "ada@example.com", Password: "wrong"},
		"unknown email":  {Email: "nobody@example.com", Password: "secret123"},
		"inactive":       {Email: "gone@example.com", Password: "secret123"},
	}

	var messages []string
	for name, in := range attempts {
		payload, err := srv.Login(ctx, in)
		require.NoError(t, err, name)
		assert.False(t, payload.Success, name)
		assert.Equal(t, "INVALID_CREDENTIALS", payload.Code, name)
		messages = append(messages, payload.Message)
	}
	assert.Equal(t, messages[0], messages[1])
	assert.Equal(t, messages[1], messages[2])
}

// countingHasher records every hash a password was checked against.
type countingHasher struct {
	service.PasswordHasher
	mu      sync.Mutex
	hashes  []string
	created int
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.mu.Lock()
	h.created++
	h.mu.Unlock()

	return h.PasswordHasher.Hash(password)
}

func (h *countingHasher) Check(password, hash string) bool {
	h.mu.Lock()
	h.hashes = append(h.hashes, hash)
	h.mu.Unlock()

	return h.PasswordHasher.Check(password, hash)
}

func TestAccountService_Login_AlwaysComparesPassword(t *testing.T) {
	f := newFixture(t)
	tokens, err := auth.NewJWTService(f.cfg)
	require.NoError(t, err)
	hasher := &countingHasher{PasswordHasher: auth.NewBcryptHasher(f.cfg)}
	srv := NewAccountService(AccountServiceParams{
		Store:        f.store,
		Hasher:       hasher,
		TokenService: tokens,
		Mailer:       f.mailer,
		Config:       f.cfg,
		Logger:       f.logger,
	})
	ctx := context.Background()

	inactive, err := srv.Register(ctx, registerInput("gone@example.com"))
	require.NoError(t, err)
	_, err = f.store.Users().Update(ctx, inactive.User.ID, repository.Fields{"is_active": false})
	require.NoError(t, err)
	hasher.created = 0

	for _, email := range []string{"nobody@example.com", "someone@example.com", "gone@example.com"} {
		payload, err := srv.Login(ctx, &usecase.LoginInput{Email: email, Password: "secret123"})
		require.NoError(t, err)
		assert.False(t, payload.Success, email)
	}

	require.Len(t, hasher.hashes, 3, "every attempt runs a comparison")
	assert.NotEmpty(t, hasher.hashes[0])
	assert.Equal(t, hasher.hashes[0], hasher.hashes[1], "unknown emails share one prepared hash")
	assert.Equal(t, inactive.User.PasswordHash, hasher.hashes[2])
	assert.Equal(t, 1, hasher.created, "the prepared hash is computed once")
}

func TestAccountService_AuthenticateAndLogout(t *testing.T) {
	f := newFixture(t)
	srv := newAccountService(t, f)
	ctx := context.Background()

	payload, err := srv.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)

	principal, err := srv.Authenticate(ctx, payload.Token)
	require.NoError(t, err)
	userID, ok := principal.CurrentUserID()
	require.True(t, ok)
	assert.Equal(t, payload.User.ID, userID)
	assert.True(t, principal.HasRole(entity.RoleCustomer))
	assert.True(t, principal.HasPermission(entity.PermissionOrderCreate))
	assert.False(t, principal.HasPermission(entity.PermissionUserRead))

	authed := deliverycontext.WithPrincipal(ctx, principal)
	me, err := srv.Me(authed)
	require.NoError(t, err)
	assert.Equal(t, payload.User.ID, me.ID)

	revoked, err := srv.Logout(authed)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = srv.Authenticate(ctx, payload.Token)
	assert.True(t, errors.Is(err, domainerrors.ErrAuthenticationRequired))

	again, err := srv.Logout(authed)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestAccountService_Authenticate_Rejects(t *testing.T) {
	f := newFixture(t)
	srv := newAccountService(t, f)
	ctx := context.Background()

	_, err := srv.Authenticate(ctx, "garbage")
	assert.True(t, errors.Is(err, domainerrors.ErrAuthenticationRequired))

	payload, err := srv.Register(ctx, registerInput("ada@example.com"))
	require.NoError(t, err)
	_, err = f.store.Users().Update(ctx, payload.User.ID, repository.Fields{"is_active": false})
	require.NoError(t, err)

	_, err = srv.Authenticate(ctx, payload.Token)
	assert.True(t, errors.Is(err, domainerrors.ErrAuthenticationRequired))
}

func TestAccountService_AnonymousCallers(t *testing.T) {
	f := newFixture(t)
	srv := newAccountService(t, f)
	ctx := context.Background()

	_, err := srv.Me(ctx)
	assert.True(t, errors.Is(err, domainerrors.ErrAuthenticationRequired))

	_, err = srv.Logout(ctx)
	assert.True(t, errors.Is(err, domainerrors.ErrAuthenticationRequired))

	_, err = srv.List(ctx, repository.Page{})
	assert.True(t, errors.Is(err, domainerrors.ErrAuthenticationRequired))
}

func TestAccountService_Update(t *testing.T) {
	f := newFixture(t)
	srv := newAccountService(t, f)

	customer := f.seedUser(t, entity.RoleCustomer, nil)
	other := f.seedUser(t, entity.RoleCustomer, nil)
	manager := f.seedUser(t, entity.RoleAdmin, adminRole(entity.AdminRoleUserManager))

	updated, err := srv.Update(as(customer), customer.ID, &usecase.UpdateAccountInput{FullName: ptr("  New Name ")})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)

	_, err = srv.Update(as(customer), customer.ID, &usecase.UpdateAccountInput{Role: ptr(entity.RoleSeller)})
	assert.True(t, errors.Is(err, domainerrors.ErrAuthorizationDenied))

	_, err = srv.Update(as(customer), other.ID, &usecase.UpdateAccountInput{FullName: ptr("Hijack")})
	assert.True(t, errors.Is(err, domainerrors.ErrAuthorizationDenied))

	_, err = srv.Update(as(customer), customer.ID, &usecase.UpdateAccountInput{})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	promoted, err := srv.Update(as(manager), other.ID, &usecase.UpdateAccountInput{
		Role:     ptr(entity.RoleSeller),
		IsActive: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSeller, promoted.Role)
	assert.False(t, promoted.IsActive)

	_, err = srv.Update(as(manager), uuid.New(), &usecase.UpdateAccountInput{FullName: ptr("x")})
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestAccountService_GetListDelete(t *testing.T) {
	f := newFixture(t)
	srv := newAccountService(t, f)

	customer := f.seedUser(t, entity.RoleCustomer, nil)
	other := f.seedUser(t, entity.RoleSeller, nil)
	reader := f.seedUser(t, entity.RoleAdmin, nil)
	super := f.seedUser(t, entity.RoleAdmin, adminRole(entity.AdminRoleSuper))

	self, err := srv.Get(as(customer), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, self.ID)

	_, err = srv.Get(as(customer), other.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrAuthorizationDenied))

	seen, err := srv.Get(as(reader), other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, seen.ID)

	page, err := srv.List(as(reader), repository.Page{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 4, page.Total)

	_, err = srv.Delete(as(reader), other.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrAuthorizationDenied))

	deleted, err := srv.Delete(as(super), other.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}
