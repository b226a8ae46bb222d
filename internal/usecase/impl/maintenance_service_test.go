package impl

import (
	"context"
	"testing"
	"time"

	"market/internal/domain/entity"
	"market/internal/domain/repository"
	"market/internal/domain/service"
	"market/internal/errors"
	"market/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMaintenanceService(f *fixture, mailer service.Mailer) usecase.MaintenanceUsecase {
	return NewMaintenanceService(MaintenanceServiceParams{Store: f.store, Mailer: mailer, Config: f.cfg, Logger: f.logger})
}

func TestMaintenanceService_CleanupExpiredTokens(t *testing.T) {
	f := newFixture(t)
	srv := newMaintenanceService(f, f.mailer)
	user := f.seedUser(t, entity.RoleCustomer, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	tokens := []*entity.Token{
		{TokenHash: "expired", UserID: user.ID, IsActive: true, ExpiresAt: now.Add(-time.Minute)},
		{TokenHash: "ancient", UserID: user.ID, IsActive: true, ExpiresAt: now.Add(time.Hour), Base: entity.Base{CreatedAt: now.Add(-8 * 24 * time.Hour)}},
		{TokenHash: "fresh", UserID: user.ID, IsActive: true, ExpiresAt: now.Add(time.Hour)},
	}
	for _, token := range tokens {
		require.NoError(t, f.store.Tokens().Create(ctx, token))
	}

	removed, err := srv.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	left, err := f.store.Tokens().List(ctx, repository.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "fresh", left[0].TokenHash)
}

func TestMaintenanceService_SendDailyReports(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, entity.RoleAdmin, adminRole(entity.AdminRoleSuper))
	retired := f.seedUser(t, entity.RoleAdmin, nil)
	_, err := f.store.Users().Update(context.Background(), retired.ID, repository.Fields{"is_active": false})
	require.NoError(t, err)
	seller := f.seedUser(t, entity.RoleSeller, nil)
	business := f.seedBusiness(t, seller)
	f.seedItem(t, business, "1.00", 1, entity.ItemTypeProduct)

	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg *service.Message) bool {
		return len(msg.To) == 1 && msg.To[0] == admin.Email
	})).Return(nil).Once()

	report, err := newMaintenanceService(f, mailer).SendDailyReports(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, report.Users)
	assert.EqualValues(t, 1, report.Businesses)
	assert.EqualValues(t, 1, report.Items)
	assert.Zero(t, report.Orders)
	assert.Equal(t, 1, report.Recipients)
	mailer.AssertExpectations(t)
}

func TestMaintenanceService_SendDailyReports_MailFailure(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, entity.RoleAdmin, nil)

	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := newMaintenanceService(f, mailer).SendDailyReports(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestMaintenanceService_SendDailyReports_NoAdministrators(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, entity.RoleCustomer, nil)

	mailer := &mockMailer{}
	report, err := newMaintenanceService(f, mailer).SendDailyReports(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Recipients)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestMaintenanceService_ProcessPendingOrders(t *testing.T) {
	f := newFixture(t)
	srv := newMaintenanceService(f, f.mailer)
	customer := f.seedUser(t, entity.RoleCustomer, nil)
	business := f.seedBusiness(t, f.seedUser(t, entity.RoleSeller, nil))
	ctx := context.Background()
	old := time.Now().UTC().Add(-time.Hour)

	newOrder := func(status entity.OrderStatus, createdAt time.Time) *entity.Order {
		order := &entity.Order{
			Base:        entity.Base{CreatedAt: createdAt},
			Status:      status,
			TotalAmount: decimal.NewFromInt(5),
			CustomerID:  customer.ID,
			BusinessID:  business.ID,
		}
		require.NoError(t, f.store.Orders().Create(ctx, order))

		return order
	}
	stale := newOrder(entity.OrderStatusPending, old)
	recent := newOrder(entity.OrderStatusPending, time.Time{})
	cancelled := newOrder(entity.OrderStatusCancelled, old)

	confirmed, err := srv.ProcessPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, confirmed)

	for order, want := range map[*entity.Order]entity.OrderStatus{
		stale:     entity.OrderStatusConfirmed,
		recent:    entity.OrderStatusPending,
		cancelled: entity.OrderStatusCancelled,
	} {
		got, err := f.store.Orders().FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	again, err := srv.ProcessPendingOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)
}
