package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"market/config"
	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/entity"
	"market/internal/domain/repository"
	"market/internal/domain/service"
	"market/internal/infra/persistence/postgres/postgrestest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:     bcrypt.MinCost,
			AccessTokenTTL: 30 * time.Minute,
			TokenRetention: 7 * 24 * time.Hour,
		},
		Pagination: config.PaginationConfig{DefaultLimit: 20, MaxLimit: 100},
	}
	cfg.Env.ServiceName = "market"
	cfg.SecretKey.Access = "test-secret"

	return cfg
}

// recordingMailer keeps every message it is asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	sent []*service.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg *service.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)

	return m.err
}

func (m *recordingMailer) Messages() []*service.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*service.Message(nil), m.sent...)
}

// mockMailer is a testify mock for service.Mailer.
type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg *service.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type fixture struct {
	store  repository.Store
	cfg    *config.Config
	mailer *recordingMailer
	logger *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	return &fixture{
		store:  postgrestest.NewStore(t),
		cfg:    newTestConfig(),
		mailer: &recordingMailer{},
		logger: newDiscardLogger(),
	}
}

func (f *fixture) catalogParams() CatalogParams {
	return CatalogParams{Store: f.store, Config: f.cfg, Logger: f.logger}
}

// seedUser writes an active user straight to the store.
func (f *fixture) seedUser(t *testing.T, role entity.Role, adminRole *entity.AdminRole) *entity.User {
	t.Helper()

	user := &entity.User{
		Email:        entity.NewID().String() + "@example.com",
		PasswordHash: "unused",
		FullName:     "Test " + string(role),
		Role:         role,
		AdminRole:    adminRole,
		IsActive:     true,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), user))

	return user
}

func (f *fixture) seedBusiness(t *testing.T, owner *entity.User) *entity.Business {
	t.Helper()

	business := &entity.Business{Name: "Corner Shop", OwnerID: owner.ID, IsActive: true}
	require.NoError(t, f.store.Businesses().Create(context.Background(), business))

	return business
}

func (f *fixture) seedItem(t *testing.T, business *entity.Business, price string, stock int, itemType entity.ItemType) *entity.Item {
	t.Helper()

	item := &entity.Item{
		Name:          "Item " + price,
		Type:          itemType,
		BusinessID:    business.ID,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, f.store.Items().Create(context.Background(), item))

	return item
}

// as returns a context carrying the user as the authenticated caller.
func as(user *entity.User) context.Context {
	principal := deliverycontext.NewPrincipal(user.ID, user.Role, user.Permissions(), "")

	return deliverycontext.WithPrincipal(context.Background(), principal)
}

func adminRole(r entity.AdminRole) *entity.AdminRole {
	return &r
}

func ptr[T any](v T) *T {
	return &v
}
